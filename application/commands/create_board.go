package commands

import (
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/portable"
	"tabula-backend/pkg/utils"
)

// CreateBoardCommand represents the command to create a new board.
// Nodes and Edges optionally seed the board from a template or import.
type CreateBoardCommand struct {
	BoardID     string                 `json:"board_id" validate:"required"`
	UserID      string                 `json:"user_id" validate:"required"`
	Name        string                 `json:"name" validate:"required,min=1,max=200"`
	Description string                 `json:"description" validate:"max=2000"`
	Nodes       []portable.Node        `json:"nodes"`
	Edges       []portable.Edge        `json:"edges"`
	Viewport    *valueobjects.Viewport `json:"viewport"`
}

// Validate checks the command's fields
func (c CreateBoardCommand) Validate() error {
	return utils.ValidateStruct(c)
}
