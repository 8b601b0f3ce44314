package commands

import (
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/portable"
	"tabula-backend/pkg/utils"
)

// UpdateBoardCommand represents a partial board update. Nil fields are
// left untouched; Nodes and Edges replace document content wholesale when
// present.
type UpdateBoardCommand struct {
	BoardID      string                 `json:"board_id" validate:"required"`
	UserID       string                 `json:"user_id" validate:"required"`
	Name         *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string                `json:"description" validate:"omitempty,max=2000"`
	ThumbnailURL *string                `json:"thumbnail_url" validate:"omitempty,max=2000"`
	Nodes        *[]portable.Node       `json:"nodes"`
	Edges        *[]portable.Edge       `json:"edges"`
	Viewport     *valueobjects.Viewport `json:"viewport"`
}

// Validate checks the command's fields
func (c UpdateBoardCommand) Validate() error {
	return utils.ValidateStruct(c)
}
