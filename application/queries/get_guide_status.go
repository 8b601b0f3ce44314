package queries

import "tabula-backend/pkg/utils"

// GetGuideStatusQuery reports whether an onboarding guide was already
// shown to the user for a board
type GetGuideStatusQuery struct {
	UserID  string `json:"user_id" validate:"required"`
	BoardID string `json:"board_id" validate:"required"`
	Guide   string `json:"guide" validate:"required,max=100"`
}

// Validate checks the query's fields
func (q GetGuideStatusQuery) Validate() error {
	return utils.ValidateStruct(q)
}
