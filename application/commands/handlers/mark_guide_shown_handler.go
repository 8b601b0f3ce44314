package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tabula-backend/application/commands"
	"tabula-backend/application/commands/bus"
	"tabula-backend/application/ports"
)

// MarkGuideShownHandler records onboarding guide progress
type MarkGuideShownHandler struct {
	guideRepo ports.GuideMarkerRepository
	logger    *zap.Logger
}

// NewMarkGuideShownHandler creates a new mark guide shown handler
func NewMarkGuideShownHandler(guideRepo ports.GuideMarkerRepository, logger *zap.Logger) *MarkGuideShownHandler {
	return &MarkGuideShownHandler{
		guideRepo: guideRepo,
		logger:    logger,
	}
}

// Handle executes the mark guide shown command
func (h *MarkGuideShownHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.MarkGuideShownCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", c)
	}

	if err := h.guideRepo.MarkShown(ctx, cmd.UserID, cmd.BoardID, cmd.Guide); err != nil {
		return fmt.Errorf("failed to mark guide shown: %w", err)
	}

	h.logger.Debug("Guide marked shown",
		zap.String("boardID", cmd.BoardID),
		zap.String("guide", cmd.Guide),
	)
	return nil
}
