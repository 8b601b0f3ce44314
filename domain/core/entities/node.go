package entities

import (
	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

// Node is a single element on a board: a sticky note, task card, text block
// or image. Its data payload is plain JSON-compatible values whose shape is
// determined by the node type via the type registry; it never embeds
// behavior.
type Node struct {
	id       valueobjects.NodeID
	nodeType string
	position valueobjects.Position
	data     map[string]interface{}
	width    *float64
	height   *float64
}

// NewNode creates a node of the given type with its default payload
func NewNode(nodeType string, position valueobjects.Position, data map[string]interface{}) (*Node, error) {
	if nodeType == "" {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	return &Node{
		id:       valueobjects.NewNodeID(),
		nodeType: nodeType,
		position: position,
		data:     data,
	}, nil
}

// ReconstructNode recreates a node from persisted or imported data with a
// preserved id
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType string,
	position valueobjects.Position,
	data map[string]interface{},
	width, height *float64,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if nodeType == "" {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	return &Node{
		id:       id,
		nodeType: nodeType,
		position: position,
		data:     data,
		width:    width,
		height:   height,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's type tag
func (n *Node) Type() string {
	return n.nodeType
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Width returns the node's explicit width, if any
func (n *Node) Width() *float64 {
	return n.width
}

// Height returns the node's explicit height, if any
func (n *Node) Height() *float64 {
	return n.height
}

// Data returns a copy of the node's payload
func (n *Node) Data() map[string]interface{} {
	// Return a copy to maintain encapsulation
	return deepCopyMap(n.data)
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// Resize sets the node's explicit dimensions
func (n *Node) Resize(width, height float64) {
	n.width = &width
	n.height = &height
}

// MergeData merges a partial payload into the node's data. Keys present in
// the patch overwrite existing keys; other keys are left untouched.
func (n *Node) MergeData(patch map[string]interface{}) {
	for k, v := range patch {
		n.data[k] = deepCopyValue(v)
	}
}

// Clone returns a deep, independent copy of the node
func (n *Node) Clone() *Node {
	clone := &Node{
		id:       n.id,
		nodeType: n.nodeType,
		position: n.position,
		data:     deepCopyMap(n.data),
	}
	if n.width != nil {
		w := *n.width
		clone.width = &w
	}
	if n.height != nil {
		h := *n.height
		clone.height = &h
	}
	return clone
}

// Equals compares two nodes by value, payload included
func (n *Node) Equals(other *Node) bool {
	if other == nil {
		return false
	}
	if !n.id.Equals(other.id) || n.nodeType != other.nodeType || !n.position.Equals(other.position) {
		return false
	}
	if !floatPtrEqual(n.width, other.width) || !floatPtrEqual(n.height, other.height) {
		return false
	}
	return valueEqual(n.data, other.data)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// deepCopyMap copies a JSON-compatible map recursively
func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue copies a JSON-compatible value recursively
func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		// Scalars (string, float64, bool, nil) are immutable
		return val
	}
}

// valueEqual compares two JSON-compatible values structurally
func valueEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, exists := bv[k]
			if !exists || !valueEqual(v, bval) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
