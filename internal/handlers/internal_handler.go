package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

// ActivityService is the interface that wraps methods for login checkpoints.
type ActivityService interface {
	// Method RecordLogin evaluates and persists the user's streak for today.
	//
	// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	// If yesterday's activity cannot be read, the whole checkpoint fails with an error wrapping apperrors.ErrStorage.
	RecordLogin(ctx context.Context, request models.LoginRequest) (*models.StreakResult, error)
}

// AccountService is the interface that wraps methods for account creation and guest migration.
type AccountService interface {
	// Method CreateAccount creates the account of a newly registered user and migrates the
	// guest's sessions in the same transaction when a guest token is given.
	//
	// If the account already exists, an error wrapping apperrors.ErrAlreadyExists will be returned together with "nil" value.
	CreateAccount(ctx context.Context, request models.CreateAccountRequest) (*models.MigrationResult, error)
	// Method MigrateGuestActivity folds the guest's sessions into an existing account.
	//
	// Calling it again with the same token returns a zero "MigratedCount".
	// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	MigrateGuestActivity(ctx context.Context, userID int, request models.MigrationRequest) (*models.MigrationResult, error)
}

// InternalHandler handles service-to-service requests from the auth layer
type InternalHandler struct {
	BaseHandler
	activity ActivityService
	accounts AccountService
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(activity ActivityService, accounts AccountService, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{
		activity:    activity,
		accounts:    accounts,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all internal handler routes
func (h *InternalHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/internal", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Post("/logins", h.RecordLogin)
		r.Post("/accounts", h.CreateAccount)
		r.Post("/accounts/{userId}/guest-migrations", h.MigrateGuestActivity)
	})
}

// RecordLogin handles POST /api/v1/internal/logins
// @Summary Record a login checkpoint
// @Description Evaluate the streak of the user who just logged in
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Service API key"
// @Param request body models.LoginRequest true "Login"
// @Success 200 {object} models.StreakResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /internal/logins [post]
func (h *InternalHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	var request models.LoginRequest
	if err := decodeJSON(r, &request); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.activity.RecordLogin(r.Context(), request)
	if err != nil {
		h.respondServiceError(w, r, err, "record login")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CreateAccount handles POST /api/v1/internal/accounts
// @Summary Create an account
// @Description Create the account of a newly registered user, optionally migrating a guest's sessions
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Service API key"
// @Param request body models.CreateAccountRequest true "Account"
// @Success 201 {object} models.MigrationResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /internal/accounts [post]
func (h *InternalHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var request models.CreateAccountRequest
	if err := decodeJSON(r, &request); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.CreateAccount(r.Context(), request)
	if err != nil {
		h.respondServiceError(w, r, err, "create account")
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// MigrateGuestActivity handles POST /api/v1/internal/accounts/{userId}/guest-migrations
// @Summary Migrate guest activity
// @Description Fold the sessions of a guest token into an existing account. Idempotent per token.
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Service API key"
// @Param userId path int true "User ID"
// @Param request body models.MigrationRequest true "Migration"
// @Success 200 {object} models.MigrationResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /internal/accounts/{userId}/guest-migrations [post]
func (h *InternalHandler) MigrateGuestActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var request models.MigrationRequest
	if err := decodeJSON(r, &request); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.MigrateGuestActivity(r.Context(), int(userID), request)
	if err != nil {
		h.respondServiceError(w, r, err, "migrate guest activity")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
