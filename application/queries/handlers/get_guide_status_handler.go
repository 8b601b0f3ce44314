package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tabula-backend/application/ports"
	"tabula-backend/application/queries"
	"tabula-backend/application/queries/bus"
)

// GuideStatusResult reports onboarding guide progress for a board
type GuideStatusResult struct {
	Guide string `json:"guide"`
	Shown bool   `json:"shown"`
}

// GetGuideStatusHandler handles guide status queries
type GetGuideStatusHandler struct {
	guideRepo ports.GuideMarkerRepository
	logger    *zap.Logger
}

// NewGetGuideStatusHandler creates a new guide status handler
func NewGetGuideStatusHandler(guideRepo ports.GuideMarkerRepository, logger *zap.Logger) *GetGuideStatusHandler {
	return &GetGuideStatusHandler{
		guideRepo: guideRepo,
		logger:    logger,
	}
}

// Handle executes the guide status query
func (h *GetGuideStatusHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetGuideStatusQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}

	shown, err := h.guideRepo.IsShown(ctx, query.UserID, query.BoardID, query.Guide)
	if err != nil {
		return nil, fmt.Errorf("failed to get guide status: %w", err)
	}

	return &GuideStatusResult{Guide: query.Guide, Shown: shown}, nil
}
