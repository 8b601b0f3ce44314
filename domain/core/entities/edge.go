package entities

import (
	"github.com/google/uuid"

	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

// Edge connects two nodes on a board by id. Endpoint validity against the
// owning document is enforced by the aggregate, not here.
type Edge struct {
	id       string
	source   valueobjects.NodeID
	target   valueobjects.NodeID
	edgeType string
	animated bool
	label    string
}

// EdgeOptions carries the optional attributes of an edge
type EdgeOptions struct {
	Type     string
	Animated bool
	Label    string
}

// NewEdge creates an edge with a fresh id
func NewEdge(source, target valueobjects.NodeID, opts EdgeOptions) (*Edge, error) {
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}

	return &Edge{
		id:       uuid.New().String(),
		source:   source,
		target:   target,
		edgeType: opts.Type,
		animated: opts.Animated,
		label:    opts.Label,
	}, nil
}

// ReconstructEdge recreates an edge from persisted or imported data
func ReconstructEdge(id string, source, target valueobjects.NodeID, opts EdgeOptions) (*Edge, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("edge id cannot be empty")
	}
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}

	return &Edge{
		id:       id,
		source:   source,
		target:   target,
		edgeType: opts.Type,
		animated: opts.Animated,
		label:    opts.Label,
	}, nil
}

// ID returns the edge's unique identifier
func (e *Edge) ID() string {
	return e.id
}

// Source returns the source node id
func (e *Edge) Source() valueobjects.NodeID {
	return e.source
}

// Target returns the target node id
func (e *Edge) Target() valueobjects.NodeID {
	return e.target
}

// Type returns the edge's type tag
func (e *Edge) Type() string {
	return e.edgeType
}

// Animated reports whether the edge renders animated
func (e *Edge) Animated() bool {
	return e.animated
}

// Label returns the edge's label
func (e *Edge) Label() string {
	return e.label
}

// Touches reports whether the edge references the given node id
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.source.Equals(nodeID) || e.target.Equals(nodeID)
}

// Clone returns an independent copy of the edge
func (e *Edge) Clone() *Edge {
	copy := *e
	return &copy
}

// Equals compares two edges by value
func (e *Edge) Equals(other *Edge) bool {
	if other == nil {
		return false
	}
	return e.id == other.id &&
		e.source.Equals(other.source) &&
		e.target.Equals(other.target) &&
		e.edgeType == other.edgeType &&
		e.animated == other.animated &&
		e.label == other.label
}
