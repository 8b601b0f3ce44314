package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainconfig "tabula-backend/domain/config"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/infrastructure/di"
	"tabula-backend/infrastructure/messaging/eventbridge"
	"tabula-backend/infrastructure/persistence/memory"
	"tabula-backend/pkg/auth"
	"tabula-backend/pkg/observability"
)

const testUserID = "user123"

// newTestServer wires the board handler onto a router backed by in-memory
// repositories, with every request authenticated as testUserID
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	registry := nodetypes.Builtin()
	boardRepo := memory.NewBoardRepository(registry)
	guideRepo := memory.NewGuideMarkerRepository()
	metrics := observability.NewMetrics("Test", nil)

	commandBus, err := di.ProvideCommandBus(
		boardRepo, guideRepo, eventbridge.NopPublisher{}, metrics,
		registry, domainconfig.DefaultDomainConfig(), logger,
	)
	require.NoError(t, err)
	queryBus, err := di.ProvideQueryBus(boardRepo, guideRepo, logger)
	require.NoError(t, err)

	handler := NewBoardHandler(commandBus, queryBus, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithUser(req.Context(), &auth.UserContext{UserID: testUserID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/boards", func(r chi.Router) {
		r.Get("/", handler.ListBoards)
		r.Post("/", handler.CreateBoard)
		r.Get("/{boardID}", handler.GetBoard)
		r.Put("/{boardID}", handler.UpdateBoard)
		r.Delete("/{boardID}", handler.DeleteBoard)
		r.Get("/{boardID}/onboarding", handler.GetGuideStatus)
		r.Put("/{boardID}/onboarding", handler.MarkGuideShown)
	})
	return r
}

func doJSON(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func createBoard(t *testing.T, server http.Handler, payload map[string]interface{}) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/boards", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateBoard_ReturnsIDAndTimestamp(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/boards", map[string]interface{}{
		"name": "Sprint Planning",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["createdAt"])
}

func TestCreateBoard_DefaultsName(t *testing.T) {
	server := newTestServer(t)

	id := createBoard(t, server, map[string]interface{}{})

	rec := doJSON(t, server, http.MethodGet, "/boards/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Untitled Board", decodeBody(t, rec)["name"])
}

func TestCreateBoard_WithContent(t *testing.T) {
	server := newTestServer(t)

	id := createBoard(t, server, map[string]interface{}{
		"name": "Seeded",
		"nodes": []map[string]interface{}{
			{"id": "n1", "type": "sticky", "position": map[string]float64{"x": 0, "y": 0}, "data": map[string]interface{}{"text": "hi"}},
			{"id": "n2", "type": "task", "position": map[string]float64{"x": 100, "y": 0}, "data": map[string]interface{}{}},
		},
		"edges": []map[string]interface{}{
			{"id": "e1", "source": "n1", "target": "n2"},
		},
	})

	rec := doJSON(t, server, http.MethodGet, "/boards/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	document := decodeBody(t, rec)["document"].(map[string]interface{})
	assert.Len(t, document["nodes"], 2)
	assert.Len(t, document["edges"], 1)
}

func TestCreateBoard_UnknownNodeType(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/boards", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "n1", "type": "hologram", "position": map[string]float64{"x": 0, "y": 0}},
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBoard_InvalidBody(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/boards", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBoards(t *testing.T) {
	server := newTestServer(t)
	createBoard(t, server, map[string]interface{}{"name": "First"})
	createBoard(t, server, map[string]interface{}{"name": "Second"})

	rec := doJSON(t, server, http.MethodGet, "/boards?limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["boards"], 2)
}

func TestGetBoard_NotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/boards/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBoard_PartialRename(t *testing.T) {
	server := newTestServer(t)
	id := createBoard(t, server, map[string]interface{}{
		"name": "Before",
		"nodes": []map[string]interface{}{
			{"id": "n1", "type": "sticky", "position": map[string]float64{"x": 0, "y": 0}},
		},
	})

	rec := doJSON(t, server, http.MethodPut, "/boards/"+id, map[string]interface{}{
		"name": "After",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, server, http.MethodGet, "/boards/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "After", body["name"])
	// Content untouched by a rename-only update
	document := body["document"].(map[string]interface{})
	assert.Len(t, document["nodes"], 1)
}

func TestUpdateBoard_ReplacesContent(t *testing.T) {
	server := newTestServer(t)
	id := createBoard(t, server, map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "n1", "type": "sticky", "position": map[string]float64{"x": 0, "y": 0}},
		},
	})

	rec := doJSON(t, server, http.MethodPut, "/boards/"+id, map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "n2", "type": "task", "position": map[string]float64{"x": 50, "y": 50}},
			{"id": "n3", "type": "task", "position": map[string]float64{"x": 150, "y": 50}},
		},
		"edges":    []map[string]interface{}{},
		"viewport": map[string]float64{"x": 10, "y": 20, "zoom": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, server, http.MethodGet, "/boards/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	document := decodeBody(t, rec)["document"].(map[string]interface{})
	assert.Len(t, document["nodes"], 2)
	viewport := document["viewport"].(map[string]interface{})
	assert.Equal(t, float64(2), viewport["zoom"])
}

func TestUpdateBoard_NotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPut, "/boards/missing", map[string]interface{}{
		"name": "Anything",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBoard(t *testing.T) {
	server := newTestServer(t)
	id := createBoard(t, server, map[string]interface{}{"name": "Doomed"})

	rec := doJSON(t, server, http.MethodDelete, "/boards/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/boards/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBoard_NotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodDelete, "/boards/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGuideStatus_MarkAndCheck(t *testing.T) {
	server := newTestServer(t)
	id := createBoard(t, server, map[string]interface{}{"name": "Guided"})

	rec := doJSON(t, server, http.MethodGet, "/boards/"+id+"/onboarding?guide=welcome-tour", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["shown"])

	rec = doJSON(t, server, http.MethodPut, "/boards/"+id+"/onboarding", map[string]interface{}{
		"guide": "welcome-tour",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/boards/"+id+"/onboarding?guide=welcome-tour", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["shown"])
}

func TestGuideStatus_MissingGuideParam(t *testing.T) {
	server := newTestServer(t)
	id := createBoard(t, server, map[string]interface{}{"name": "Guided"})

	rec := doJSON(t, server, http.MethodGet, "/boards/"+id+"/onboarding", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
