package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studycards/backend/internal/middleware"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps methods for the study session lifecycle.
type SessionService interface {
	// Method StartSession creates an in-progress session for an account or a guest.
	//
	// A guest owner without a token receives a freshly minted one in the result.
	// If the account of an authenticated owner does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	StartSession(ctx context.Context, owner models.SessionOwner, request models.StartSessionRequest) (*models.StartSessionResult, error)
	// Method RecordSessionCompletion applies the terminal completion event of a session.
	//
	// A session that was already completed or abandoned is left untouched and reported with "Applied" false.
	// If the session does not exist or does not belong to the owner, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	RecordSessionCompletion(ctx context.Context, owner models.SessionOwner, sessionID int64, completion models.SessionCompletion) (*models.CompletionResult, error)
	// Method AbandonSession moves an in-progress session to abandoned.
	//
	// Please reference RecordSessionCompletion method for error values.
	AbandonSession(ctx context.Context, owner models.SessionOwner, sessionID int64, request models.AbandonRequest) (*models.AbandonResult, error)
}

// SessionHandler handles HTTP requests for study sessions
type SessionHandler struct {
	BaseHandler
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all session handler routes
//
// "optionalAuth" must let guests through and set the user ID for authenticated callers.
func (h *SessionHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Post("/", h.StartSession)
		r.Post("/{id}/complete", h.CompleteSession)
		r.Post("/{id}/abandon", h.AbandonSession)
	})
}

// sessionOwner builds the caller identity from the access token and the guest token header
func sessionOwner(r *http.Request) models.SessionOwner {
	owner := models.SessionOwner{GuestToken: r.Header.Get(middleware.GuestTokenHeader)}
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		owner.UserID = userID
	}
	return owner
}

// StartSession handles POST /api/v1/sessions
// @Summary Start a study session
// @Description Start a study session over a deck. Guests may pass their token in X-Guest-Token; a new token is minted and returned when it is missing.
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Guest-Token header string false "Guest token"
// @Param request body models.StartSessionRequest true "Session start"
// @Success 201 {object} models.StartSessionResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /sessions [post]
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var request models.StartSessionRequest
	if err := decodeJSON(r, &request); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.StartSession(r.Context(), sessionOwner(r), request)
	if err != nil {
		h.respondServiceError(w, r, err, "start session")
		return
	}

	if result.GuestToken != "" {
		w.Header().Set(middleware.GuestTokenHeader, result.GuestToken)
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// CompleteSession handles POST /api/v1/sessions/{id}/complete
// @Summary Complete a study session
// @Description Record the answers and duration of a session. Repeated completions are not applied again.
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Session ID"
// @Param X-Guest-Token header string false "Guest token"
// @Param request body models.SessionCompletion true "Session completion"
// @Success 200 {object} models.CompletionResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var completion models.SessionCompletion
	if err := decodeJSON(r, &completion); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.RecordSessionCompletion(r.Context(), sessionOwner(r), sessionID, completion)
	if err != nil {
		h.respondServiceError(w, r, err, "complete session")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// AbandonSession handles POST /api/v1/sessions/{id}/abandon
// @Summary Abandon a study session
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Session ID"
// @Param X-Guest-Token header string false "Guest token"
// @Param request body models.AbandonRequest true "Abandon"
// @Success 200 {object} models.AbandonResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /sessions/{id}/abandon [post]
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var request models.AbandonRequest
	if err := decodeJSON(r, &request); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.AbandonSession(r.Context(), sessionOwner(r), sessionID, request)
	if err != nil {
		h.respondServiceError(w, r, err, "abandon session")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
