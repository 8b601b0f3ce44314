package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tabula-backend/application/ports"
	"tabula-backend/application/queries"
	"tabula-backend/application/queries/bus"
)

// ListBoardsResult is the paginated result of a board listing
type ListBoardsResult struct {
	Boards []ports.BoardListItem `json:"boards"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ListBoardsHandler handles board listing queries
type ListBoardsHandler struct {
	boardRepo ports.BoardRepository
	logger    *zap.Logger
}

// NewListBoardsHandler creates a new list boards handler
func NewListBoardsHandler(boardRepo ports.BoardRepository, logger *zap.Logger) *ListBoardsHandler {
	return &ListBoardsHandler{
		boardRepo: boardRepo,
		logger:    logger,
	}
}

// Handle executes the list boards query
func (h *ListBoardsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListBoardsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	items, total, err := h.boardRepo.List(ctx, query.UserID, ports.ListOptions{
		Limit:  limit,
		Offset: query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	return &ListBoardsResult{
		Boards: items,
		Total:  total,
		Limit:  limit,
		Offset: query.Offset,
	}, nil
}
