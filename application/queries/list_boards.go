package queries

import "tabula-backend/pkg/utils"

// ListBoardsQuery lists a user's boards ordered by most recently updated
type ListBoardsQuery struct {
	UserID string `json:"user_id" validate:"required"`
	Limit  int    `json:"limit" validate:"min=0,max=200"`
	Offset int    `json:"offset" validate:"min=0"`
}

// Validate checks the query's fields
func (q ListBoardsQuery) Validate() error {
	return utils.ValidateStruct(q)
}
