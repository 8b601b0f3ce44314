package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tabula-backend/application/commands"
	"tabula-backend/application/commands/bus"
	"tabula-backend/application/queries"
	querybus "tabula-backend/application/queries/bus"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/portable"
	"tabula-backend/pkg/auth"
	pkgerrors "tabula-backend/pkg/errors"
	"tabula-backend/pkg/utils"
)

// BoardHandler handles board REST endpoints
type BoardHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateBoardRequest is the payload for POST /boards
type CreateBoardRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Nodes       []portable.Node        `json:"nodes"`
	Edges       []portable.Edge        `json:"edges"`
	Viewport    *valueobjects.Viewport `json:"viewport"`
}

// CreateBoardResponse is the payload returned by POST /boards
type CreateBoardResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

// UpdateBoardRequest is the partial payload for PUT /boards/{boardID}.
// Absent fields are left untouched.
type UpdateBoardRequest struct {
	Name         *string                `json:"name"`
	Description  *string                `json:"description"`
	ThumbnailURL *string                `json:"thumbnailUrl"`
	Nodes        *[]portable.Node       `json:"nodes"`
	Edges        *[]portable.Edge       `json:"edges"`
	Viewport     *valueobjects.Viewport `json:"viewport"`
}

// MarkGuideRequest is the payload for PUT /boards/{boardID}/onboarding
type MarkGuideRequest struct {
	Guide string `json:"guide"`
}

// ListBoards handles GET /boards
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	query := queries.ListBoardsQuery{
		UserID: userCtx.UserID,
		Limit:  limit,
		Offset: offset,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list boards",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to list boards")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CreateBoard handles POST /boards
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = "Untitled Board"
	}

	boardID := uuid.New().String()
	cmd := commands.CreateBoardCommand{
		BoardID:     boardID,
		UserID:      userCtx.UserID,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Viewport:    req.Viewport,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to create board",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to create board")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateBoardResponse{
		ID:        boardID,
		CreatedAt: utils.NowRFC3339(),
	})
}

// GetBoard handles GET /boards/{boardID}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boardID := chi.URLParam(r, "boardID")
	if boardID == "" {
		h.respondError(w, http.StatusBadRequest, "Board ID is required")
		return
	}

	query := queries.GetBoardQuery{
		UserID:  userCtx.UserID,
		BoardID: boardID,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get board",
			zap.String("boardID", boardID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to get board")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// UpdateBoard handles PUT /boards/{boardID}
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boardID := chi.URLParam(r, "boardID")
	if boardID == "" {
		h.respondError(w, http.StatusBadRequest, "Board ID is required")
		return
	}

	var req UpdateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := commands.UpdateBoardCommand{
		BoardID:      boardID,
		UserID:       userCtx.UserID,
		Name:         req.Name,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		Nodes:        req.Nodes,
		Edges:        req.Edges,
		Viewport:     req.Viewport,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to update board",
			zap.String("boardID", boardID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to update board")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"id":        boardID,
		"updatedAt": utils.NowRFC3339(),
	})
}

// DeleteBoard handles DELETE /boards/{boardID}
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boardID := chi.URLParam(r, "boardID")
	if boardID == "" {
		h.respondError(w, http.StatusBadRequest, "Board ID is required")
		return
	}

	cmd := commands.DeleteBoardCommand{
		BoardID: boardID,
		UserID:  userCtx.UserID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete board",
			zap.String("boardID", boardID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to delete board")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetGuideStatus handles GET /boards/{boardID}/onboarding
func (h *BoardHandler) GetGuideStatus(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boardID := chi.URLParam(r, "boardID")
	guide := r.URL.Query().Get("guide")
	if boardID == "" || guide == "" {
		h.respondError(w, http.StatusBadRequest, "Board ID and guide are required")
		return
	}

	query := queries.GetGuideStatusQuery{
		UserID:  userCtx.UserID,
		BoardID: boardID,
		Guide:   guide,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondAppError(w, err, "Failed to get guide status")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// MarkGuideShown handles PUT /boards/{boardID}/onboarding
func (h *BoardHandler) MarkGuideShown(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	boardID := chi.URLParam(r, "boardID")
	if boardID == "" {
		h.respondError(w, http.StatusBadRequest, "Board ID is required")
		return
	}

	var req MarkGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Guide == "" {
		h.respondError(w, http.StatusBadRequest, "Guide is required")
		return
	}

	cmd := commands.MarkGuideShownCommand{
		BoardID: boardID,
		UserID:  userCtx.UserID,
		Guide:   req.Guide,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondAppError(w, err, "Failed to mark guide shown")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondAppError maps domain error types onto HTTP statuses
func (h *BoardHandler) respondAppError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case pkgerrors.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, "Board not found")
	case pkgerrors.IsUnknownNodeType(err) || pkgerrors.IsInvalidEndpoint(err):
		h.respondError(w, http.StatusUnprocessableEntity, appErrorMessage(err, fallback))
	case pkgerrors.IsSchema(err) || pkgerrors.IsValidation(err):
		h.respondError(w, http.StatusBadRequest, appErrorMessage(err, fallback))
	case pkgerrors.IsSave(err):
		h.respondError(w, http.StatusBadGateway, "Failed to persist board")
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func appErrorMessage(err error, fallback string) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return fallback
}

func (h *BoardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *BoardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
