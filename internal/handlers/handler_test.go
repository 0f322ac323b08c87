package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/middleware"
	"github.com/studycards/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockTokens accepts "user-7" as the access token of user 7
type mockTokens struct{}

func (mockTokens) ValidateAccessToken(token string) (int, error) {
	if token == "user-7" {
		return 7, nil
	}
	return 0, errors.New("invalid token")
}

type mockSessionService struct {
	startResult    *models.StartSessionResult
	completeResult *models.CompletionResult
	abandonResult  *models.AbandonResult
	err            error

	owner      models.SessionOwner
	sessionID  int64
	completion models.SessionCompletion
}

func (m *mockSessionService) StartSession(ctx context.Context, owner models.SessionOwner, request models.StartSessionRequest) (*models.StartSessionResult, error) {
	m.owner = owner
	if m.err != nil {
		return nil, m.err
	}
	return m.startResult, nil
}

func (m *mockSessionService) RecordSessionCompletion(ctx context.Context, owner models.SessionOwner, sessionID int64, completion models.SessionCompletion) (*models.CompletionResult, error) {
	m.owner = owner
	m.sessionID = sessionID
	m.completion = completion
	if m.err != nil {
		return nil, m.err
	}
	return m.completeResult, nil
}

func (m *mockSessionService) AbandonSession(ctx context.Context, owner models.SessionOwner, sessionID int64, request models.AbandonRequest) (*models.AbandonResult, error) {
	m.owner = owner
	m.sessionID = sessionID
	if m.err != nil {
		return nil, m.err
	}
	return m.abandonResult, nil
}

type mockActivityService struct {
	result *models.StreakResult
	err    error
}

func (m *mockActivityService) RecordLogin(ctx context.Context, request models.LoginRequest) (*models.StreakResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockAccountService struct {
	result   *models.MigrationResult
	summary  *models.ProgressSummary
	err      error
	userID   int
	migrated models.MigrationRequest
}

func (m *mockAccountService) CreateAccount(ctx context.Context, request models.CreateAccountRequest) (*models.MigrationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAccountService) MigrateGuestActivity(ctx context.Context, userID int, request models.MigrationRequest) (*models.MigrationResult, error) {
	m.userID = userID
	m.migrated = request
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAccountService) GetProgress(ctx context.Context, userID int) (*models.ProgressSummary, error) {
	m.userID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func newTestRouter(sessions SessionService, activity ActivityService, accounts *mockAccountService) chi.Router {
	logger := zap.NewNop()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewSessionHandler(sessions, logger).RegisterRoutes(r, middleware.OptionalAuthMiddleware(mockTokens{}))
		NewProgressHandler(accounts, logger).RegisterRoutes(r, middleware.AuthMiddleware(mockTokens{}))
		NewInternalHandler(activity, accounts, logger).RegisterRoutes(r, middleware.APIKeyMiddleware("internal-key"))
	})
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionHandler_StartSession(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		body           string
		service        *mockSessionService
		expectedStatus int
		expectedOwner  models.SessionOwner
		expectedHeader string
	}{
		{
			name:           "guest gets token",
			body:           `{"deckId":3}`,
			service:        &mockSessionService{startResult: &models.StartSessionResult{SessionID: 1, GuestToken: "minted"}},
			expectedStatus: http.StatusCreated,
			expectedHeader: "minted",
		},
		{
			name:           "guest passes token",
			headers:        map[string]string{middleware.GuestTokenHeader: "tok"},
			body:           `{"deckId":3}`,
			service:        &mockSessionService{startResult: &models.StartSessionResult{SessionID: 1, GuestToken: "tok"}},
			expectedStatus: http.StatusCreated,
			expectedOwner:  models.SessionOwner{GuestToken: "tok"},
			expectedHeader: "tok",
		},
		{
			name:           "authenticated user",
			headers:        map[string]string{"Authorization": "Bearer user-7"},
			body:           `{"deckId":3}`,
			service:        &mockSessionService{startResult: &models.StartSessionResult{SessionID: 2}},
			expectedStatus: http.StatusCreated,
			expectedOwner:  models.SessionOwner{UserID: 7},
		},
		{
			name:           "invalid access token",
			headers:        map[string]string{"Authorization": "Bearer nope"},
			body:           `{"deckId":3}`,
			service:        &mockSessionService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed body",
			body:           `{"deckId":`,
			service:        &mockSessionService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"deckId":3,"extra":true}`,
			service:        &mockSessionService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error",
			body:           `{"deckId":0}`,
			service:        &mockSessionService{err: apperrors.Validation("deck id required")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "storage error asks to retry",
			body:           `{"deckId":3}`,
			service:        &mockSessionService{err: apperrors.Storage("begin transaction", errors.New("too many connections"))},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.service, &mockActivityService{}, &mockAccountService{})

			rec := doRequest(t, r, http.MethodPost, "/api/v1/sessions", tt.body, tt.headers)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, tt.expectedOwner, tt.service.owner)
				assert.Equal(t, tt.expectedHeader, rec.Header().Get(middleware.GuestTokenHeader))
			}
			if tt.expectedStatus == http.StatusServiceUnavailable {
				assert.JSONEq(t, `{"error":"`+retryMessage+`"}`, rec.Body.String())
			}
		})
	}
}

func TestSessionHandler_CompleteSession(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		service        *mockSessionService
		expectedStatus int
	}{
		{
			name:           "applied",
			path:           "/api/v1/sessions/42/complete",
			body:           `{"durationSeconds":120,"answers":[{"cardId":1,"correct":true}]}`,
			service:        &mockSessionService{completeResult: &models.CompletionResult{SessionID: 42, Applied: true, SessionXP: 30}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "repeated completion is not an error",
			path:           "/api/v1/sessions/42/complete",
			body:           `{"durationSeconds":120,"answers":[]}`,
			service:        &mockSessionService{completeResult: &models.CompletionResult{SessionID: 42, Applied: false, SessionXP: 30}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			path:           "/api/v1/sessions/abc/complete",
			body:           `{}`,
			service:        &mockSessionService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found",
			path:           "/api/v1/sessions/42/complete",
			body:           `{"durationSeconds":1}`,
			service:        &mockSessionService{err: apperrors.NotFound("session")},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unexpected error",
			path:           "/api/v1/sessions/42/complete",
			body:           `{"durationSeconds":1}`,
			service:        &mockSessionService{err: errors.New("boom")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.service, &mockActivityService{}, &mockAccountService{})

			rec := doRequest(t, r, http.MethodPost, tt.path, tt.body, map[string]string{middleware.GuestTokenHeader: "tok"})

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var result models.CompletionResult
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
				assert.Equal(t, *tt.service.completeResult, result)
				assert.Equal(t, int64(42), tt.service.sessionID)
				assert.Equal(t, "tok", tt.service.owner.GuestToken)
			}
		})
	}
}

func TestSessionHandler_AbandonSession(t *testing.T) {
	service := &mockSessionService{abandonResult: &models.AbandonResult{SessionID: 5, Applied: true}}
	r := newTestRouter(service, &mockActivityService{}, &mockAccountService{})

	rec := doRequest(t, r, http.MethodPost, "/api/v1/sessions/5/abandon", `{"durationSeconds":30}`, map[string]string{"Authorization": "Bearer user-7"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessionId":5,"applied":true}`, rec.Body.String())
	assert.Equal(t, 7, service.owner.UserID)
}

func TestProgressHandler_GetProgress(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		service        *mockAccountService
		expectedStatus int
	}{
		{
			name:    "success",
			headers: map[string]string{"Authorization": "Bearer user-7"},
			service: &mockAccountService{summary: &models.ProgressSummary{
				Account: &models.Account{UserID: 7, TotalXP: 150, Level: 2, CurrentXP: 50, NextLevelXP: 200},
				Recent:  []models.DailyProgress{},
			}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthenticated",
			service:        &mockAccountService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "no account",
			headers:        map[string]string{"Authorization": "Bearer user-7"},
			service:        &mockAccountService{err: apperrors.NotFound("account")},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&mockSessionService{}, &mockActivityService{}, tt.service)

			rec := doRequest(t, r, http.MethodGet, "/api/v1/progress", "", tt.headers)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, 7, tt.service.userID)
				var summary models.ProgressSummary
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
				assert.Equal(t, 2, summary.Account.Level)
			}
		})
	}
}

func TestInternalHandler_RecordLogin(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		body           string
		service        *mockActivityService
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			apiKey:         "internal-key",
			body:           `{"userId":7}`,
			service:        &mockActivityService{result: &models.StreakResult{Streak: 4, LongestStreak: 9}},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"streak":4,"longestStreak":9}`,
		},
		{
			name:           "missing api key",
			body:           `{"userId":7}`,
			service:        &mockActivityService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "checkpoint failed",
			apiKey:         "internal-key",
			body:           `{"userId":7}`,
			service:        &mockActivityService{err: apperrors.Storage("query", errors.New("lock wait timeout"))},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"` + retryMessage + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&mockSessionService{}, tt.service, &mockAccountService{})
			headers := map[string]string{}
			if tt.apiKey != "" {
				headers["X-API-Key"] = tt.apiKey
			}

			rec := doRequest(t, r, http.MethodPost, "/api/v1/internal/logins", tt.body, headers)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestInternalHandler_CreateAccount(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockAccountService
		expectedStatus int
	}{
		{
			name:           "created",
			service:        &mockAccountService{result: &models.MigrationResult{MigratedCount: 2, Account: &models.Account{UserID: 7}}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "already exists",
			service:        &mockAccountService{err: errors.Join(apperrors.ErrAlreadyExists)},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&mockSessionService{}, &mockActivityService{}, tt.service)

			rec := doRequest(t, r, http.MethodPost, "/api/v1/internal/accounts", `{"userId":7,"guestToken":"tok"}`, map[string]string{"X-API-Key": "internal-key"})

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestInternalHandler_MigrateGuestActivity(t *testing.T) {
	service := &mockAccountService{result: &models.MigrationResult{MigratedCount: 0, Account: &models.Account{UserID: 7}}}
	r := newTestRouter(&mockSessionService{}, &mockActivityService{}, service)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/internal/accounts/7/guest-migrations", `{"guestToken":"tok"}`, map[string]string{"X-API-Key": "internal-key"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, service.userID)
	assert.Equal(t, "tok", service.migrated.GuestToken)

	rec = doRequest(t, r, http.MethodPost, "/api/v1/internal/accounts/0/guest-migrations", `{"guestToken":"tok"}`, map[string]string{"X-API-Key": "internal-key"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
