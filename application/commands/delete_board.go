package commands

import "tabula-backend/pkg/utils"

// DeleteBoardCommand represents the command to delete a board
type DeleteBoardCommand struct {
	BoardID string `json:"board_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// Validate checks the command's fields
func (c DeleteBoardCommand) Validate() error {
	return utils.ValidateStruct(c)
}
