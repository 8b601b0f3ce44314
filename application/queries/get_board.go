package queries

import "tabula-backend/pkg/utils"

// GetBoardQuery fetches a single board with its full document content
type GetBoardQuery struct {
	UserID  string `json:"user_id" validate:"required"`
	BoardID string `json:"board_id" validate:"required"`
}

// Validate checks the query's fields
func (q GetBoardQuery) Validate() error {
	return utils.ValidateStruct(q)
}
