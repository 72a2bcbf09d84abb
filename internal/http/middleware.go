package http

import (
	"bytes"
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/vinkenoogm/ks-bear/internal/http/handlers"
)

const (
	requestIDHeader     = "X-Request-ID"
	adminPasswordHeader = "X-Admin-Password"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// requestIDMiddleware propagates the caller's X-Request-ID or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), handlers.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "path", r.URL.Path, "request_id", handlers.RequestIDFromContext(r))
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// Handle 'dry_run' and add it to the request context.
		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), handlers.DryRunKey, isDryRun)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware admits requests carrying the configured admin password,
// either in X-Admin-Password or as a bearer token.
// Without a configured password every admin request is refused.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Cfg.AdminPassword == "" {
			log.Warn("Admin request refused, no admin password configured", "path", r.URL.Path)
			handlers.RespondError(w, r, s.Metrics, http.StatusForbidden, "Admin access is not configured")
			return
		}

		supplied := r.Header.Get(adminPasswordHeader)
		if supplied == "" {
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				supplied = strings.TrimSpace(token)
			}
		}
		if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(s.Cfg.AdminPassword)) != 1 {
			log.Warn("Admin request rejected", "path", r.URL.Path, "request_id", handlers.RequestIDFromContext(r))
			w.Header().Set("WWW-Authenticate", `Bearer realm="bear-tracker"`)
			handlers.RespondError(w, r, s.Metrics, http.StatusUnauthorized, "Incorrect password")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// slackVerificationMiddleware checks the Slack request signature against the signing secret.
func (s *Server) slackVerificationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := s.Cfg.Slack.SigningSecret
		if secret == "" {
			log.Warn("Slack request refused, no signing secret configured")
			http.Error(w, "Slack integration is not configured", http.StatusForbidden)
			return
		}

		verifier, err := slack.NewSecretsVerifier(r.Header, secret)
		if err != nil {
			log.Warn("Invalid Slack request headers", "error", err)
			s.Metrics.IncRequestErrors(r.Pattern, http.StatusUnauthorized)
			http.Error(w, "Invalid Slack request", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.TeeReader(http.MaxBytesReader(w, r.Body, 1<<20), &verifier))
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}
		if err := verifier.Ensure(); err != nil {
			log.Warn("Slack signature verification failed", "error", err)
			s.Metrics.IncRequestErrors(r.Pattern, http.StatusUnauthorized)
			http.Error(w, "Invalid Slack signature", http.StatusUnauthorized)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
