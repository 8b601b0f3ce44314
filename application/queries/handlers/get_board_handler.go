package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tabula-backend/application/ports"
	"tabula-backend/application/queries"
	"tabula-backend/application/queries/bus"
	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/portable"
)

// BoardResult is the full board returned to clients: metadata plus the
// interchange form of the document
type BoardResult struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Document     portable.Document `json:"document"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// GetBoardHandler handles single board queries
type GetBoardHandler struct {
	boardRepo ports.BoardRepository
	logger    *zap.Logger
}

// NewGetBoardHandler creates a new get board handler
func NewGetBoardHandler(boardRepo ports.BoardRepository, logger *zap.Logger) *GetBoardHandler {
	return &GetBoardHandler{
		boardRepo: boardRepo,
		logger:    logger,
	}
}

// Handle executes the get board query
func (h *GetBoardHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetBoardQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}

	doc, err := h.boardRepo.GetByID(ctx, query.UserID, aggregates.BoardID(query.BoardID))
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return &BoardResult{
		ID:           doc.ID().String(),
		Name:         doc.Name(),
		Description:  doc.Description(),
		ThumbnailURL: doc.ThumbnailURL(),
		Document:     portable.ExportDocument(doc),
		CreatedAt:    doc.CreatedAt(),
		UpdatedAt:    doc.UpdatedAt(),
	}, nil
}
