package ports

import (
	"context"
	"time"

	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/events"
)

// BoardListItem is the projection returned by board listings. It carries
// enough for a board picker without loading document content.
type BoardListItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	NodeCount    int       `json:"nodeCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListOptions bounds a board listing
type ListOptions struct {
	Limit  int
	Offset int
}

// BoardRepository defines the interface for board persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type BoardRepository interface {
	// Save persists a board document (create or update)
	Save(ctx context.Context, doc *aggregates.Document) error

	// GetByID retrieves a board by its ID
	GetByID(ctx context.Context, userID string, id aggregates.BoardID) (*aggregates.Document, error)

	// List returns the user's boards ordered by most recently updated
	List(ctx context.Context, userID string, opts ListOptions) ([]BoardListItem, int, error)

	// Delete removes a board
	Delete(ctx context.Context, userID string, id aggregates.BoardID) error
}

// GuideMarkerRepository tracks which onboarding guides a user has seen
type GuideMarkerRepository interface {
	// IsShown reports whether the guide was already shown for the board
	IsShown(ctx context.Context, userID, boardID, guide string) (bool, error)

	// MarkShown records that the guide was shown for the board
	MarkShown(ctx context.Context, userID, boardID, guide string) error
}

// EventPublisher publishes domain events to the outside world
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines a simple cache abstraction for query results
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
