package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tabula-backend/application/commands"
	"tabula-backend/application/commands/bus"
	"tabula-backend/application/ports"
	"tabula-backend/domain/config"
	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/events"
	"tabula-backend/domain/portable"
	"tabula-backend/pkg/observability"
)

// CreateBoardHandler handles board creation commands
type CreateBoardHandler struct {
	boardRepo ports.BoardRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	registry  *nodetypes.Registry
	limits    *config.DomainConfig
	logger    *zap.Logger
}

// NewCreateBoardHandler creates a new create board handler
func NewCreateBoardHandler(
	boardRepo ports.BoardRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	registry *nodetypes.Registry,
	limits *config.DomainConfig,
	logger *zap.Logger,
) *CreateBoardHandler {
	return &CreateBoardHandler{
		boardRepo: boardRepo,
		publisher: publisher,
		metrics:   metrics,
		registry:  registry,
		limits:    limits,
		logger:    logger,
	}
}

// Handle executes the create board command
func (h *CreateBoardHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.CreateBoardCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", c)
	}

	nodes, edges, err := portable.MaterializeContent(cmd.Nodes, cmd.Edges, h.registry)
	if err != nil {
		return err
	}

	viewport := valueobjects.DefaultViewport()
	if cmd.Viewport != nil {
		viewport = *cmd.Viewport
	}

	now := time.Now()
	doc, err := aggregates.ReconstructDocument(
		cmd.BoardID, cmd.UserID, cmd.Name, cmd.Description, "",
		nodes, edges, viewport, now, now, h.registry, h.limits,
	)
	if err != nil {
		return err
	}

	if err := h.boardRepo.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}

	h.metrics.IncrementBoardsCreated(ctx)
	h.publishCreated(ctx, cmd, now)

	h.logger.Info("Board created",
		zap.String("boardID", cmd.BoardID),
		zap.String("userID", cmd.UserID),
		zap.Int("nodes", len(nodes)),
	)
	return nil
}

func (h *CreateBoardHandler) publishCreated(ctx context.Context, cmd commands.CreateBoardCommand, at time.Time) {
	event := events.BoardCreated{
		BaseEvent: events.BaseEvent{
			AggregateID: cmd.BoardID,
			EventType:   "board.created",
			Timestamp:   at,
			Version:     1,
		},
		BoardID: cmd.BoardID,
		UserID:  cmd.UserID,
		Name:    cmd.Name,
	}
	if err := h.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		// Event delivery is best effort; the board itself is already saved
		h.logger.Warn("Failed to publish board created event",
			zap.String("boardID", cmd.BoardID),
			zap.Error(err),
		)
	}
}
