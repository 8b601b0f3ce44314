package events

import (
	"time"

	"tabula-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Board Events

// BoardCreated is raised when a new board is created
type BoardCreated struct {
	BaseEvent
	BoardID string `json:"board_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
}

// BoardSaved is raised when a board's document is persisted
type BoardSaved struct {
	BaseEvent
	BoardID   string `json:"board_id"`
	UserID    string `json:"user_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Revision  int64  `json:"revision"`
}

// BoardDeleted is raised when a board is deleted
type BoardDeleted struct {
	BaseEvent
	BoardID string `json:"board_id"`
	UserID  string `json:"user_id"`
}

// Document Events

// NodeAdded is raised when a node is added to a board
type NodeAdded struct {
	BaseEvent
	BoardID  string              `json:"board_id"`
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType string              `json:"node_type"`
}

// NodesRemoved is raised when nodes (and their incident edges) are removed
type NodesRemoved struct {
	BaseEvent
	BoardID      string                `json:"board_id"`
	NodeIDs      []valueobjects.NodeID `json:"node_ids"`
	RemovedEdges []string              `json:"removed_edges"`
}

// EdgeAdded is raised when an edge is created between two nodes
type EdgeAdded struct {
	BaseEvent
	BoardID  string              `json:"board_id"`
	EdgeID   string              `json:"edge_id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// EdgesRemoved is raised when edges are removed
type EdgesRemoved struct {
	BaseEvent
	BoardID string   `json:"board_id"`
	EdgeIDs []string `json:"edge_ids"`
}

// TemplateApplied is raised when a template batch is stamped onto a board
type TemplateApplied struct {
	BaseEvent
	BoardID   string `json:"board_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}
