package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// actingUser is shared between the request logger and the authenticator.
// The logger runs outside the authenticated route group, so it cannot see the
// context NewAuthenticator derives; it hands down a slot instead.
type actingUser struct{ id uuid.UUID }

type actingUserKey struct{}

// recordActingUser fills the logger's slot, if there is one.
func recordActingUser(ctx context.Context, id uuid.UUID) {
	if u, ok := ctx.Value(actingUserKey{}).(*actingUser); ok {
		u.id = id
	}
}

// NewSlogLogger returns a middleware that writes one structured line per API
// call: method, matched route, status, bytes written, duration, request id
// and, once NewAuthenticator has accepted the token, the acting user_id.
//
// The route is the chi pattern (/sessions/{sessionId}/stop) rather than the
// raw path, so session and vehicle ids do not leak into the route field.
// 5xx responses log at error, 4xx at warn.
//
// Wire it after chimiddleware.RequestID; the id is echoed as X-Request-Id.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chimiddleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set("X-Request-Id", reqID)
			}

			user := &actingUser{}
			r = r.WithContext(context.WithValue(r.Context(), actingUserKey{}, user))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", reqID),
			}
			if user.id != uuid.Nil {
				attrs = append(attrs, slog.String("user_id", user.id.String()))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			log.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
