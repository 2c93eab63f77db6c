package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediavault/pkg/jsonapi"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth validates the bearer token and stores the user ID in the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.authFailure("missing_token")
			jsonapi.WriteError(w, jsonapi.ErrUnauthorized("Missing bearer token"))
			return
		}

		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			h.authFailure("invalid_token")
			jsonapi.WriteError(w, jsonapi.ErrUnauthorized("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) authFailure(reason string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// userID returns the authenticated user's ID from the request context.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// observe logs each request and records request metrics.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		if h.metrics != nil {
			h.metrics.RequestsInFlight.Inc()
			defer h.metrics.RequestsInFlight.Dec()
		}

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Int("bytes", ww.BytesWritten()).
			Str("remote", r.RemoteAddr).
			Msg("request")

		if h.metrics != nil {
			labels := []string{r.Method, routePattern(r), strconv.Itoa(status)}
			h.metrics.RequestsTotal.WithLabelValues(labels...).Inc()
			h.metrics.RequestDuration.WithLabelValues(labels...).Observe(elapsed.Seconds())
		}
	})
}

// routePattern returns the chi route pattern to keep metric cardinality
// bounded, falling back to the raw path before routing completes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
