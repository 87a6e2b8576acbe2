package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// authMiddleware parses the bearer token into an Actor. The token is
// issued by the external identity service; ownership checks still
// happen in the services.
func authMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, Envelope{
					Code: string(domain.KindUnauthorized), Message: "missing bearer token"})
				return
			}
			claims, err := tm.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, Envelope{
					Code: string(domain.KindUnauthorized), Message: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorKey).(domain.Actor)
	return actor
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, Envelope{
					Code: string(domain.KindInternal), Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
