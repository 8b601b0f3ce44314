package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := NewDocument("user123", "Test Board", nodetypes.Builtin(), nil)
	require.NoError(t, err)
	return doc
}

func TestNewDocument_Defaults(t *testing.T) {
	doc := newTestDocument(t)

	assert.NotEmpty(t, doc.ID().String())
	assert.Equal(t, "user123", doc.UserID())
	assert.Equal(t, 0, doc.NodeCount())
	assert.Equal(t, 0, doc.EdgeCount())
	assert.Equal(t, valueobjects.DefaultViewport(), doc.Viewport())
	assert.NoError(t, doc.Validate())
}

func TestAddNode_SeedsTypeDefaults(t *testing.T) {
	doc := newTestDocument(t)

	id, err := doc.AddNode("sticky", valueobjects.NewPosition(10, 20))

	require.NoError(t, err)
	node, ok := doc.Node(id)
	require.True(t, ok)
	assert.Equal(t, "sticky", node.Type())
	assert.Equal(t, valueobjects.NewPosition(10, 20), node.Position())
	assert.Equal(t, "#FFEB3B", node.Data()["color"])
}

func TestAddNode_UnknownTypeRejected(t *testing.T) {
	doc := newTestDocument(t)

	_, err := doc.AddNode("hologram", valueobjects.NewPosition(0, 0))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownNodeType(err))
	assert.Equal(t, 0, doc.NodeCount())
}

func TestAddNodeWithData_OverlaysDefaults(t *testing.T) {
	doc := newTestDocument(t)

	id, err := doc.AddNodeWithData("task", valueobjects.NewPosition(0, 0), map[string]interface{}{
		"title": "Ship it",
	})

	require.NoError(t, err)
	node, _ := doc.Node(id)
	assert.Equal(t, "Ship it", node.Data()["title"])
	assert.Equal(t, "medium", node.Data()["priority"])
}

func TestAddEdge_ConnectsExistingNodes(t *testing.T) {
	doc := newTestDocument(t)
	source, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))
	target, _ := doc.AddNode("task", valueobjects.NewPosition(100, 0))

	edgeID, err := doc.AddEdge(source, target, entities.EdgeOptions{Label: "blocks"})

	require.NoError(t, err)
	edge, ok := doc.Edge(edgeID)
	require.True(t, ok)
	assert.Equal(t, "blocks", edge.Label())
	assert.NoError(t, doc.Validate())
}

func TestAddEdge_InvalidEndpointRejected(t *testing.T) {
	doc := newTestDocument(t)
	source, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))
	missing := valueobjects.NewNodeID()

	_, err := doc.AddEdge(source, missing, entities.EdgeOptions{})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidEndpoint(err))
	assert.Equal(t, 0, doc.EdgeCount())
}

func TestAddEdge_SelfLoopRejected(t *testing.T) {
	doc := newTestDocument(t)
	id, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))

	_, err := doc.AddEdge(id, id, entities.EdgeOptions{})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidEndpoint(err))
}

func TestRemoveNodes_CascadesIncidentEdges(t *testing.T) {
	doc := newTestDocument(t)
	a, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))
	b, _ := doc.AddNode("sticky", valueobjects.NewPosition(100, 0))
	c, _ := doc.AddNode("sticky", valueobjects.NewPosition(200, 0))
	_, err := doc.AddEdge(a, b, entities.EdgeOptions{})
	require.NoError(t, err)
	survivorEdge, err := doc.AddEdge(b, c, entities.EdgeOptions{})
	require.NoError(t, err)

	removed := doc.RemoveNodes(a)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, doc.NodeCount())
	assert.Equal(t, 1, doc.EdgeCount())
	_, ok := doc.Edge(survivorEdge)
	assert.True(t, ok)
	assert.NoError(t, doc.Validate())
}

func TestRemoveNodes_UnknownIDIsNoOp(t *testing.T) {
	doc := newTestDocument(t)
	rev := doc.Revision()

	removed := doc.RemoveNodes(valueobjects.NewNodeID())

	assert.Equal(t, 0, removed)
	assert.Equal(t, rev, doc.Revision())
}

func TestUpdateNodeData_MergesPatch(t *testing.T) {
	doc := newTestDocument(t)
	id, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))

	doc.UpdateNodeData(id, map[string]interface{}{"text": "hello"})

	node, _ := doc.Node(id)
	assert.Equal(t, "hello", node.Data()["text"])
	assert.Equal(t, "#FFEB3B", node.Data()["color"])
}

func TestUpdateNodeData_MissingNodeIsSilent(t *testing.T) {
	doc := newTestDocument(t)
	rev := doc.Revision()

	doc.UpdateNodeData(valueobjects.NewNodeID(), map[string]interface{}{"text": "lost"})

	assert.Equal(t, rev, doc.Revision())
}

func TestMoveNode_SamePositionDoesNotBumpRevision(t *testing.T) {
	doc := newTestDocument(t)
	id, _ := doc.AddNode("sticky", valueobjects.NewPosition(5, 5))
	rev := doc.Revision()

	doc.MoveNode(id, valueobjects.NewPosition(5, 5))

	assert.Equal(t, rev, doc.Revision())
}

func TestApplyTemplate_AllOrNothing(t *testing.T) {
	doc := newTestDocument(t)
	existing, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))

	n1ID, _ := valueobjects.NewNodeIDFromString("n1")
	n1, err := entities.ReconstructNode(n1ID, "task", valueobjects.NewPosition(10, 10), nil, nil, nil)
	require.NoError(t, err)
	edgeToExisting, err := entities.ReconstructEdge("e1", n1ID, existing, entities.EdgeOptions{})
	require.NoError(t, err)
	danglingEdge, err := entities.ReconstructEdge("e2", n1ID, valueobjects.NewNodeID(), entities.EdgeOptions{})
	require.NoError(t, err)

	// A template referencing a missing endpoint leaves the document untouched
	err = doc.ApplyTemplate([]*entities.Node{n1}, []*entities.Edge{edgeToExisting, danglingEdge})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidEndpoint(err))
	assert.Equal(t, 1, doc.NodeCount())
	assert.Equal(t, 0, doc.EdgeCount())

	// Without the dangling edge the batch applies atomically
	err = doc.ApplyTemplate([]*entities.Node{n1}, []*entities.Edge{edgeToExisting})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.NodeCount())
	assert.Equal(t, 1, doc.EdgeCount())
}

func TestApplyTemplate_UnknownTypeRejected(t *testing.T) {
	doc := newTestDocument(t)
	id, _ := valueobjects.NewNodeIDFromString("n1")
	node, err := entities.ReconstructNode(id, "hologram", valueobjects.NewPosition(0, 0), nil, nil, nil)
	require.NoError(t, err)

	err = doc.ApplyTemplate([]*entities.Node{node}, nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownNodeType(err))
}

func TestReplaceContent_DeepCopiesInput(t *testing.T) {
	doc := newTestDocument(t)
	id, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))
	nodes, edges := doc.ContentClone()

	doc.RemoveNodes(id)
	require.Equal(t, 0, doc.NodeCount())

	doc.ReplaceContent(nodes, edges)

	assert.Equal(t, 1, doc.NodeCount())
	restored, ok := doc.Node(id)
	require.True(t, ok)
	assert.Equal(t, "sticky", restored.Type())

	// Mutating the source maps afterwards must not affect the document
	for k := range nodes {
		delete(nodes, k)
	}
	assert.Equal(t, 1, doc.NodeCount())
}

func TestSetViewport_NotEqualBumpsRevision(t *testing.T) {
	doc := newTestDocument(t)
	rev := doc.Revision()

	doc.SetViewport(valueobjects.Viewport{X: 50, Y: -20, Zoom: 1.5})
	assert.Greater(t, doc.Revision(), rev)

	rev = doc.Revision()
	doc.SetViewport(valueobjects.Viewport{X: 50, Y: -20, Zoom: 1.5})
	assert.Equal(t, rev, doc.Revision())
}

func TestSubscribe_NotifiedOnContentChanges(t *testing.T) {
	doc := newTestDocument(t)
	changes := 0
	doc.Subscribe(func() { changes++ })

	id, _ := doc.AddNode("sticky", valueobjects.NewPosition(0, 0))
	doc.MoveNode(id, valueobjects.NewPosition(10, 10))
	doc.RemoveNodes(id)

	assert.Equal(t, 3, changes)
}
