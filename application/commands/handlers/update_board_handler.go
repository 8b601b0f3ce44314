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
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/events"
	"tabula-backend/domain/portable"
	"tabula-backend/pkg/observability"
)

// UpdateBoardHandler handles partial board updates, including wholesale
// document replacement from autosave flushes
type UpdateBoardHandler struct {
	boardRepo ports.BoardRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	registry  *nodetypes.Registry
	logger    *zap.Logger
}

// NewUpdateBoardHandler creates a new update board handler
func NewUpdateBoardHandler(
	boardRepo ports.BoardRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	registry *nodetypes.Registry,
	logger *zap.Logger,
) *UpdateBoardHandler {
	return &UpdateBoardHandler{
		boardRepo: boardRepo,
		publisher: publisher,
		metrics:   metrics,
		registry:  registry,
		logger:    logger,
	}
}

// Handle executes the update board command
func (h *UpdateBoardHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.UpdateBoardCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", c)
	}

	doc, err := h.boardRepo.GetByID(ctx, cmd.UserID, aggregates.BoardID(cmd.BoardID))
	if err != nil {
		return fmt.Errorf("failed to get board: %w", err)
	}

	if cmd.Name != nil {
		if err := doc.Rename(*cmd.Name); err != nil {
			return err
		}
	}
	if cmd.Description != nil {
		if err := doc.SetDescription(*cmd.Description); err != nil {
			return err
		}
	}
	if cmd.ThumbnailURL != nil {
		doc.SetThumbnailURL(*cmd.ThumbnailURL)
	}

	if cmd.Nodes != nil || cmd.Edges != nil {
		if err := h.replaceContent(doc, cmd); err != nil {
			return err
		}
	}

	if cmd.Viewport != nil {
		doc.SetViewport(*cmd.Viewport)
	}

	start := time.Now()
	if err := h.boardRepo.Save(ctx, doc); err != nil {
		h.metrics.IncrementSaveFailures(ctx, cmd.BoardID)
		return fmt.Errorf("failed to save board: %w", err)
	}
	h.metrics.RecordSaveDuration(ctx, cmd.BoardID, time.Since(start))

	h.publishSaved(ctx, cmd.UserID, doc)
	return nil
}

// replaceContent swaps in the command's node and edge sets. When only one
// of the two is present the current set of the other is kept, and the
// combined result must still satisfy the document invariants.
func (h *UpdateBoardHandler) replaceContent(doc *aggregates.Document, cmd commands.UpdateBoardCommand) error {
	current := portable.ExportDocument(doc)

	wireNodes := current.Nodes
	if cmd.Nodes != nil {
		wireNodes = *cmd.Nodes
	}
	wireEdges := current.Edges
	if cmd.Edges != nil {
		wireEdges = *cmd.Edges
	}

	nodes, edges, err := portable.MaterializeContent(wireNodes, wireEdges, h.registry)
	if err != nil {
		return err
	}

	nodeMap := make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	for _, node := range nodes {
		nodeMap[node.ID()] = node
	}
	edgeMap := make(map[string]*entities.Edge, len(edges))
	for _, edge := range edges {
		edgeMap[edge.ID()] = edge
	}

	doc.ReplaceContent(nodeMap, edgeMap)
	return doc.Validate()
}

func (h *UpdateBoardHandler) publishSaved(ctx context.Context, userID string, doc *aggregates.Document) {
	event := events.BoardSaved{
		BaseEvent: events.BaseEvent{
			AggregateID: doc.ID().String(),
			EventType:   "board.saved",
			Timestamp:   time.Now(),
			Version:     1,
		},
		BoardID:   doc.ID().String(),
		UserID:    userID,
		NodeCount: doc.NodeCount(),
		EdgeCount: doc.EdgeCount(),
		Revision:  doc.Revision(),
	}
	if err := h.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		h.logger.Warn("Failed to publish board saved event",
			zap.String("boardID", doc.ID().String()),
			zap.Error(err),
		)
	}
}
