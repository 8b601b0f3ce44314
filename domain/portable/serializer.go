// Package portable implements the interchange JSON format for board
// documents: the shape stored at rest, sent over the REST API, and used by
// clipboard export/import.
package portable

import (
	"encoding/json"
	"sort"

	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

// Node is the wire representation of a board node
type Node struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Position valueobjects.Position  `json:"position"`
	Data     map[string]interface{} `json:"data"`
	Width    *float64               `json:"width,omitempty"`
	Height   *float64               `json:"height,omitempty"`
}

// Edge is the wire representation of a board edge
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type,omitempty"`
	Animated bool   `json:"animated,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Document is the wire representation of a full board document
type Document struct {
	Nodes    []Node                `json:"nodes"`
	Edges    []Edge                `json:"edges"`
	Viewport valueobjects.Viewport `json:"viewport"`
}

// Export renders a board document into its interchange form. The output is
// deterministic: nodes and edges are ordered by id.
func Export(doc *aggregates.Document) ([]byte, error) {
	return json.Marshal(ExportDocument(doc))
}

// ExportDocument builds the interchange struct without marshaling it
func ExportDocument(doc *aggregates.Document) Document {
	out := Document{
		Nodes:    make([]Node, 0, doc.NodeCount()),
		Edges:    make([]Edge, 0, doc.EdgeCount()),
		Viewport: doc.Viewport(),
	}

	for _, node := range doc.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:       node.ID().String(),
			Type:     node.Type(),
			Position: node.Position(),
			Data:     node.Data(),
			Width:    node.Width(),
			Height:   node.Height(),
		})
	}
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })

	for _, edge := range doc.Edges() {
		out.Edges = append(out.Edges, Edge{
			ID:       edge.ID(),
			Source:   edge.Source().String(),
			Target:   edge.Target().String(),
			Type:     edge.Type(),
			Animated: edge.Animated(),
			Label:    edge.Label(),
		})
	}
	sort.Slice(out.Edges, func(i, j int) bool { return out.Edges[i].ID < out.Edges[j].ID })

	return out
}

// Import parses interchange JSON into document content. It validates
// structure and referential integrity but never touches a live document;
// on any failure nothing is returned.
func Import(data []byte, registry *nodetypes.Registry) ([]*entities.Node, []*entities.Edge, valueobjects.Viewport, error) {
	var envelope struct {
		Nodes    json.RawMessage       `json:"nodes"`
		Edges    []Edge                `json:"edges"`
		Viewport valueobjects.Viewport `json:"viewport"`
	}
	envelope.Viewport = valueobjects.DefaultViewport()
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, valueobjects.Viewport{}, pkgerrors.NewSchemaError("invalid document JSON: " + err.Error())
	}
	if len(envelope.Nodes) == 0 || string(envelope.Nodes) == "null" {
		return nil, nil, valueobjects.Viewport{}, pkgerrors.NewSchemaError("document is missing a nodes array")
	}
	var wireNodes []Node
	if err := json.Unmarshal(envelope.Nodes, &wireNodes); err != nil {
		return nil, nil, valueobjects.Viewport{}, pkgerrors.NewSchemaError("nodes must be an array: " + err.Error())
	}
	if envelope.Viewport.Zoom == 0 {
		envelope.Viewport = valueobjects.DefaultViewport()
	}
	nodes, edges, err := MaterializeContent(wireNodes, envelope.Edges, registry)
	if err != nil {
		return nil, nil, valueobjects.Viewport{}, err
	}
	return nodes, edges, envelope.Viewport, nil
}

// MaterializeContent converts wire nodes and edges into domain entities,
// enforcing unique ids, known node types and resolvable edge endpoints
func MaterializeContent(wireNodes []Node, wireEdges []Edge, registry *nodetypes.Registry) ([]*entities.Node, []*entities.Edge, error) {
	if registry == nil {
		registry = nodetypes.Builtin()
	}

	nodes := make([]*entities.Node, 0, len(wireNodes))
	seen := make(map[string]bool, len(wireNodes))
	for _, wn := range wireNodes {
		if wn.ID == "" {
			return nil, nil, pkgerrors.NewSchemaError("node is missing an id")
		}
		if seen[wn.ID] {
			return nil, nil, pkgerrors.NewSchemaError("duplicate node id " + wn.ID)
		}
		seen[wn.ID] = true

		if !registry.IsKnown(wn.Type) {
			return nil, nil, pkgerrors.NewUnknownNodeTypeError(wn.Type)
		}

		id, err := valueobjects.NewNodeIDFromString(wn.ID)
		if err != nil {
			return nil, nil, pkgerrors.NewSchemaError(err.Error())
		}
		node, err := entities.ReconstructNode(id, wn.Type, wn.Position, wn.Data, wn.Width, wn.Height)
		if err != nil {
			return nil, nil, pkgerrors.NewSchemaError(err.Error())
		}
		nodes = append(nodes, node)
	}

	edges := make([]*entities.Edge, 0, len(wireEdges))
	seenEdges := make(map[string]bool, len(wireEdges))
	for _, we := range wireEdges {
		if we.ID == "" {
			return nil, nil, pkgerrors.NewSchemaError("edge is missing an id")
		}
		if seenEdges[we.ID] {
			return nil, nil, pkgerrors.NewSchemaError("duplicate edge id " + we.ID)
		}
		seenEdges[we.ID] = true

		if !seen[we.Source] {
			return nil, nil, pkgerrors.NewSchemaError("edge " + we.ID + " references missing node " + we.Source)
		}
		if !seen[we.Target] {
			return nil, nil, pkgerrors.NewSchemaError("edge " + we.ID + " references missing node " + we.Target)
		}

		source, err := valueobjects.NewNodeIDFromString(we.Source)
		if err != nil {
			return nil, nil, pkgerrors.NewSchemaError(err.Error())
		}
		target, err := valueobjects.NewNodeIDFromString(we.Target)
		if err != nil {
			return nil, nil, pkgerrors.NewSchemaError(err.Error())
		}
		edge, err := entities.ReconstructEdge(we.ID, source, target, entities.EdgeOptions{
			Type:     we.Type,
			Animated: we.Animated,
			Label:    we.Label,
		})
		if err != nil {
			return nil, nil, pkgerrors.NewSchemaError(err.Error())
		}
		edges = append(edges, edge)
	}

	return nodes, edges, nil
}
