package portable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

func buildDocument(t *testing.T) *aggregates.Document {
	t.Helper()
	doc, err := aggregates.NewDocument("user123", "Roadmap", nodetypes.Builtin(), nil)
	require.NoError(t, err)

	a, err := doc.AddNodeWithData("sticky", valueobjects.NewPosition(10, 20), map[string]interface{}{"text": "idea"})
	require.NoError(t, err)
	b, err := doc.AddNode("task", valueobjects.NewPosition(300, 40))
	require.NoError(t, err)
	_, err = doc.AddEdge(a, b, entities.EdgeOptions{Label: "leads to", Animated: true})
	require.NoError(t, err)
	doc.SetViewport(valueobjects.Viewport{X: -100, Y: 50, Zoom: 0.75})
	return doc
}

func TestExportImport_RoundTrip(t *testing.T) {
	doc := buildDocument(t)

	data, err := Export(doc)
	require.NoError(t, err)

	nodes, edges, viewport, err := Import(data, nodetypes.Builtin())
	require.NoError(t, err)

	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)
	assert.Equal(t, valueobjects.Viewport{X: -100, Y: 50, Zoom: 0.75}, viewport)

	restored, err := aggregates.ReconstructDocument(
		doc.ID().String(), doc.UserID(), doc.Name(), "", "",
		nodes, edges, viewport, doc.CreatedAt(), doc.UpdatedAt(), nodetypes.Builtin(), nil,
	)
	require.NoError(t, err)

	// A second export of the restored document is byte-identical
	again, err := Export(restored)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestExport_Deterministic(t *testing.T) {
	doc := buildDocument(t)

	first, err := Export(doc)
	require.NoError(t, err)
	second, err := Export(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestImport_NodesMustBeArray(t *testing.T) {
	_, _, _, err := Import([]byte(`{"nodes":"not-an-array","edges":[]}`), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
}

func TestImport_MissingNodesRejected(t *testing.T) {
	for _, payload := range []string{`{}`, `{"edges":[]}`, `{"nodes":null,"edges":[]}`} {
		_, _, _, err := Import([]byte(payload), nil)

		require.Error(t, err, payload)
		assert.True(t, pkgerrors.IsSchema(err), payload)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	_, _, _, err := Import([]byte(`{"nodes":[`), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
}

func TestImport_MissingViewportDefaults(t *testing.T) {
	_, _, viewport, err := Import([]byte(`{"nodes":[],"edges":[]}`), nil)

	require.NoError(t, err)
	assert.Equal(t, valueobjects.DefaultViewport(), viewport)
}

func TestImport_DuplicateNodeIDs(t *testing.T) {
	payload := `{"nodes":[
		{"id":"n1","type":"sticky","position":{"x":0,"y":0},"data":{}},
		{"id":"n1","type":"sticky","position":{"x":10,"y":10},"data":{}}
	],"edges":[]}`

	_, _, _, err := Import([]byte(payload), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
}

func TestImport_NodeMissingID(t *testing.T) {
	payload := `{"nodes":[{"type":"sticky","position":{"x":0,"y":0},"data":{}}],"edges":[]}`

	_, _, _, err := Import([]byte(payload), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
}

func TestImport_EdgeEndpointMustResolve(t *testing.T) {
	payload := `{"nodes":[{"id":"n1","type":"sticky","position":{"x":0,"y":0},"data":{}}],
		"edges":[{"id":"e1","source":"n1","target":"ghost"}]}`

	_, _, _, err := Import([]byte(payload), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsSchema(err))
}

func TestImport_UnknownNodeType(t *testing.T) {
	payload := `{"nodes":[{"id":"n1","type":"hologram","position":{"x":0,"y":0},"data":{}}],"edges":[]}`

	_, _, _, err := Import([]byte(payload), nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownNodeType(err))
}

func TestExport_OmitsUnsetDimensions(t *testing.T) {
	doc, err := aggregates.NewDocument("user123", "Board", nodetypes.Builtin(), nil)
	require.NoError(t, err)
	_, err = doc.AddNode("text", valueobjects.NewPosition(0, 0))
	require.NoError(t, err)

	data, err := Export(doc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	node := decoded["nodes"].([]interface{})[0].(map[string]interface{})
	_, hasWidth := node["width"]
	assert.False(t, hasWidth)
}
