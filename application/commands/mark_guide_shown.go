package commands

import "tabula-backend/pkg/utils"

// MarkGuideShownCommand records that an onboarding guide was shown to the
// user for a board, so it is never shown twice
type MarkGuideShownCommand struct {
	BoardID string `json:"board_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	Guide   string `json:"guide" validate:"required,max=100"`
}

// Validate checks the command's fields
func (c MarkGuideShownCommand) Validate() error {
	return utils.ValidateStruct(c)
}
