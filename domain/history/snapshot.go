// Package history implements bounded undo/redo over board document
// snapshots. A snapshot is a deep copy of the document's nodes and edges;
// viewport state is deliberately excluded.
package history

import (
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/valueobjects"
)

// Snapshot is an immutable deep copy of a document's content
type Snapshot struct {
	nodes map[valueobjects.NodeID]*entities.Node
	edges map[string]*entities.Edge
}

// NewSnapshot captures the given content. The maps are deep-copied, so
// later mutation of the source leaves the snapshot untouched.
func NewSnapshot(nodes map[valueobjects.NodeID]*entities.Node, edges map[string]*entities.Edge) Snapshot {
	s := Snapshot{
		nodes: make(map[valueobjects.NodeID]*entities.Node, len(nodes)),
		edges: make(map[string]*entities.Edge, len(edges)),
	}
	for k, v := range nodes {
		s.nodes[k] = v.Clone()
	}
	for k, v := range edges {
		s.edges[k] = v.Clone()
	}
	return s
}

// Nodes returns the snapshot's node map. Callers must treat it as
// read-only; Restore paths deep-copy before applying.
func (s Snapshot) Nodes() map[valueobjects.NodeID]*entities.Node {
	return s.nodes
}

// Edges returns the snapshot's edge map
func (s Snapshot) Edges() map[string]*entities.Edge {
	return s.edges
}

// NodeCount returns the number of nodes captured
func (s Snapshot) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges captured
func (s Snapshot) EdgeCount() int {
	return len(s.edges)
}

// Equals compares two snapshots structurally, payloads included
func (s Snapshot) Equals(other Snapshot) bool {
	if len(s.nodes) != len(other.nodes) || len(s.edges) != len(other.edges) {
		return false
	}
	for id, node := range s.nodes {
		otherNode, exists := other.nodes[id]
		if !exists || !node.Equals(otherNode) {
			return false
		}
	}
	for id, edge := range s.edges {
		otherEdge, exists := other.edges[id]
		if !exists || !edge.Equals(otherEdge) {
			return false
		}
	}
	return true
}
