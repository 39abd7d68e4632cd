package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/pkg/metrics"
)

type contextKey int

const actorKey contextKey = iota

// Identity trusts the authentication gateway in front of this service: it
// resolves the X-User-Id and X-User-Role headers into one Actor with a single
// active role, once, at the boundary.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		role, err := domain.ParseRole(r.Header.Get("X-User-Role"))
		if userID == "" || err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   "missing or invalid identity",
			})
			return
		}

		actor := domain.Actor{ID: userID, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey).(domain.Actor)
	return actor
}

// Metrics records a request counter and latency histogram per route pattern.
func Metrics(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
