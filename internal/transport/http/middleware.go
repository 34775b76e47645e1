package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/auth"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// Limiter counts requests per caller key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		observeRequest(r.Method, route, ww.Status(), elapsed)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("http request")
	})
}

// throttle rejects callers that exhausted their quota. Limiter failures let the request through.
func throttle(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warn().Err(err).Msg("throttle check failed")
				allowed = true
			}
			if !allowed {
				throttled.Inc()
				writeError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAdmin admits only bearer tokens carrying the admin role. Without a configured
// secret every request is refused.
func requireAdmin(a *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a == nil {
				writeDetail(w, http.StatusForbidden, "admin access is not configured")
				return
			}
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeDetail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeDetail(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != auth.RoleAdmin {
				log.Warn().Str("sub", claims.Sub).Str("role", claims.Role).Str("path", r.URL.Path).Msg("admin access denied")
				writeDetail(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller for throttling. RemoteAddr is only rewritten from
// forwarding headers when the router trusts a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
