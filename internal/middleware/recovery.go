package middleware

import (
	"errors"
	"net/http"

	"github.com/studycards/backend/internal/apperrors"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics and logs the error
//
// Invariant violations raised by the level projector are logged as such; every panic is
// answered with 500.
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				msg := "panic recovered"
				if err, ok := rec.(error); ok && errors.Is(err, apperrors.ErrInvariantViolation) {
					msg = "invariant violation"
				}
				logger.Error(msg,
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("error", rec),
					zap.Stack("stack"),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal server error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
