package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/history"
	pkgerrors "tabula-backend/pkg/errors"
)

func newTestSession(t *testing.T) (*EditorSession, *int64) {
	t.Helper()
	doc, err := aggregates.NewDocument("user123", "Test Board", nodetypes.Builtin(), nil)
	require.NoError(t, err)

	var saves int64
	saver := NewAutosaver(func(ctx context.Context) error {
		atomic.AddInt64(&saves, 1)
		return nil
	}, time.Hour, zap.NewNop())

	return NewEditorSession(doc, history.NewStack(100), saver, zap.NewNop()), &saves
}

func TestSession_UndoRestoresPriorStates(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	for i := 0; i < 3; i++ {
		_, err := session.AddNode("sticky", valueobjects.NewPosition(float64(i*100), 0))
		require.NoError(t, err)
	}
	require.Equal(t, 3, doc.NodeCount())

	// Each undo steps back exactly one edit
	for expected := 2; expected >= 0; expected-- {
		require.True(t, session.Undo())
		assert.Equal(t, expected, doc.NodeCount())
	}
	assert.False(t, session.Undo())
}

func TestSession_RedoReappliesUndoneEdit(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	id, err := session.AddNode("task", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	require.True(t, session.Undo())
	require.Equal(t, 0, doc.NodeCount())

	require.True(t, session.Redo())
	assert.Equal(t, 1, doc.NodeCount())
	_, ok := doc.Node(id)
	assert.True(t, ok)
}

func TestSession_NewEditInvalidatesRedo(t *testing.T) {
	session, _ := newTestSession(t)

	_, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)
	require.True(t, session.Undo())
	require.True(t, session.CanRedo())

	_, err = session.AddNode("task", valueobjects.NewPosition(50, 50))
	require.NoError(t, err)

	assert.False(t, session.CanRedo())
}

func TestSession_RemoveNodesUndoRestoresEdges(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	a, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)
	b, err := session.AddNode("sticky", valueobjects.NewPosition(100, 0))
	require.NoError(t, err)
	_, err = session.AddEdge(a, b, entities.EdgeOptions{})
	require.NoError(t, err)

	removed := session.RemoveNodes(a)
	require.Equal(t, 1, removed)
	require.Equal(t, 0, doc.EdgeCount())

	require.True(t, session.Undo())
	assert.Equal(t, 2, doc.NodeCount())
	assert.Equal(t, 1, doc.EdgeCount())
}

func TestSession_ApplyTemplateIsOneUndoStep(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	n1ID, _ := valueobjects.NewNodeIDFromString("n1")
	n2ID, _ := valueobjects.NewNodeIDFromString("n2")
	n1, err := entities.ReconstructNode(n1ID, "task", valueobjects.NewPosition(0, 0), nil, nil, nil)
	require.NoError(t, err)
	n2, err := entities.ReconstructNode(n2ID, "task", valueobjects.NewPosition(200, 0), nil, nil, nil)
	require.NoError(t, err)
	edge, err := entities.ReconstructEdge("e1", n1ID, n2ID, entities.EdgeOptions{})
	require.NoError(t, err)

	require.NoError(t, session.ApplyTemplate([]*entities.Node{n1, n2}, []*entities.Edge{edge}))
	require.Equal(t, 2, doc.NodeCount())

	require.True(t, session.Undo())
	assert.Equal(t, 0, doc.NodeCount())
	assert.Equal(t, 0, doc.EdgeCount())
}

func TestSession_GestureCollapsesIntoSingleUndoStep(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	id, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	session.BeginGesture()
	for x := 10; x <= 100; x += 10 {
		session.MoveNode(id, valueobjects.NewPosition(float64(x), 0))
	}
	session.CommitGesture()

	node, _ := doc.Node(id)
	require.Equal(t, valueobjects.NewPosition(100, 0), node.Position())

	// One undo returns to the pre-drag position
	require.True(t, session.Undo())
	node, _ = doc.Node(id)
	assert.Equal(t, valueobjects.NewPosition(0, 0), node.Position())

	// And one more removes the node itself
	require.True(t, session.Undo())
	assert.Equal(t, 0, doc.NodeCount())
}

func TestSession_EmptyGestureLeavesNoHistory(t *testing.T) {
	session, _ := newTestSession(t)

	session.BeginGesture()
	session.CommitGesture()

	assert.False(t, session.CanUndo())
}

func TestSession_CancelGestureRestoresState(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	id, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	session.BeginGesture()
	session.MoveNode(id, valueobjects.NewPosition(500, 500))
	session.CancelGesture()

	node, _ := doc.Node(id)
	assert.Equal(t, valueobjects.NewPosition(0, 0), node.Position())
	assert.False(t, session.CanRedo())
}

func TestSession_EditsMarkAutosaverDirty(t *testing.T) {
	session, _ := newTestSession(t)

	_, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, SaveStateDirty, session.SaveState())
}

func TestSession_FlushSaves(t *testing.T) {
	session, saves := newTestSession(t)

	_, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	require.NoError(t, session.Flush(context.Background()))
	assert.Equal(t, int64(1), atomic.LoadInt64(saves))
	assert.Equal(t, SaveStateIdle, session.SaveState())
}

func TestSession_ImportReplacesContentAsOneUndoStep(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	existing, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	payload := `{"nodes":[
		{"id":"n1","type":"task","position":{"x":0,"y":0},"data":{"title":"Imported"}}
	],"edges":[],"viewport":{"x":5,"y":5,"zoom":2}}`
	require.NoError(t, session.ImportJSON([]byte(payload)))

	assert.Equal(t, 1, doc.NodeCount())
	_, ok := doc.Node(existing)
	assert.False(t, ok)
	assert.Equal(t, valueobjects.Viewport{X: 5, Y: 5, Zoom: 2}, doc.Viewport())

	require.True(t, session.Undo())
	_, ok = doc.Node(existing)
	assert.True(t, ok)
}

func TestSession_ImportRejectsMalformedPayloadUntouched(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	_, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	err = session.ImportJSON([]byte(`{"nodes":"not-an-array"}`))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
	assert.Equal(t, 1, doc.NodeCount())
}

func TestSession_ImportMissingNodesLeavesDocumentUntouched(t *testing.T) {
	session, _ := newTestSession(t)
	doc := session.Document()

	_, err := session.AddNode("sticky", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	err = session.ImportJSON([]byte(`{}`))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
	assert.Equal(t, 1, doc.NodeCount())
}

func TestSession_ExportRoundTrip(t *testing.T) {
	session, _ := newTestSession(t)

	_, err := session.AddNode("sticky", valueobjects.NewPosition(10, 10))
	require.NoError(t, err)

	data, err := session.ExportJSON()
	require.NoError(t, err)

	other, _ := newTestSession(t)
	require.NoError(t, other.ImportJSON(data))
	assert.Equal(t, 1, other.Document().NodeCount())
}

func TestSession_RoundTripWithCustomNodeType(t *testing.T) {
	registry := nodetypes.Builtin()
	registry.Register("shape", func() map[string]interface{} {
		return map[string]interface{}{"kind": "rectangle"}
	})
	doc, err := aggregates.NewDocument("user123", "Shapes", registry, nil)
	require.NoError(t, err)
	saver := NewAutosaver(func(ctx context.Context) error { return nil }, time.Hour, zap.NewNop())
	session := NewEditorSession(doc, history.NewStack(100), saver, zap.NewNop())

	id, err := session.AddNode("shape", valueobjects.NewPosition(25, 25))
	require.NoError(t, err)

	data, err := session.ExportJSON()
	require.NoError(t, err)

	// Imports validate against the document's own registry, so custom
	// types round-trip
	require.NoError(t, session.ImportJSON(data))
	node, ok := session.Document().Node(id)
	require.True(t, ok)
	assert.Equal(t, "shape", node.Type())
	assert.Equal(t, "rectangle", node.Data()["kind"])
}
