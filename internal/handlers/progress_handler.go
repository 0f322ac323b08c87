package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studycards/backend/internal/middleware"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for reading account progress.
type ProgressService interface {
	// Method GetProgress retrieves the account summary with level fields projected from total XP
	// and the daily progress of the last week.
	//
	// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetProgress(ctx context.Context, userID int) (*models.ProgressSummary, error)
}

// ProgressHandler handles HTTP requests for the authenticated user's progress
type ProgressHandler struct {
	BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProgress)
	})
}

// GetProgress handles GET /api/v1/progress
// @Summary Get progress
// @Description Get the account counters, level projection and the last 7 days of daily progress
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ProgressSummary
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summary, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err, "get progress")
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}
