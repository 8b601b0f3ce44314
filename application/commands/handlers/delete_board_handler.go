package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tabula-backend/application/commands"
	"tabula-backend/application/commands/bus"
	"tabula-backend/application/ports"
	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/events"
	"tabula-backend/pkg/observability"
)

// DeleteBoardHandler handles board deletion commands
type DeleteBoardHandler struct {
	boardRepo ports.BoardRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDeleteBoardHandler creates a new delete board handler
func NewDeleteBoardHandler(
	boardRepo ports.BoardRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DeleteBoardHandler {
	return &DeleteBoardHandler{
		boardRepo: boardRepo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the delete board command
func (h *DeleteBoardHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.DeleteBoardCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", c)
	}

	if err := h.boardRepo.Delete(ctx, cmd.UserID, aggregates.BoardID(cmd.BoardID)); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	h.metrics.IncrementBoardsDeleted(ctx)

	event := events.BoardDeleted{
		BaseEvent: events.BaseEvent{
			AggregateID: cmd.BoardID,
			EventType:   "board.deleted",
			Timestamp:   time.Now(),
			Version:     1,
		},
		BoardID: cmd.BoardID,
		UserID:  cmd.UserID,
	}
	if err := h.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		h.logger.Warn("Failed to publish board deleted event",
			zap.String("boardID", cmd.BoardID),
			zap.Error(err),
		)
	}

	h.logger.Info("Board deleted",
		zap.String("boardID", cmd.BoardID),
		zap.String("userID", cmd.UserID),
	)
	return nil
}
