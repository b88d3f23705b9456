// Package httphandler is the HTTP driving adapter: the webhook receiver and
// the admin REST API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// WebhookProcessor handles verified webhook events off the request path.
type WebhookProcessor interface {
	Enqueue(ctx context.Context, ev model.Event, deliveryID string)
}

// ReviewRequester posts a new PTAL message.
type ReviewRequester interface {
	RequestReview(ctx context.Context, req application.ReviewRequest) (model.PTALRecord, error)
}

// Sweeper re-renders every tracked message.
type Sweeper interface {
	Sweep(ctx context.Context) (application.SweepResult, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the handler's collaborators.
type Deps struct {
	Webhooks      WebhookProcessor
	Reviews       ReviewRequester
	Sweeper       Sweeper
	PTALs         driven.PTALStore
	Registrations driven.RegistrationStore
	Guilds        driven.GuildStore
	DB            Pinger
}

// Handler is the HTTP driving adapter.
type Handler struct {
	deps          Deps
	webhookSecret []byte
	adminToken    string
	logger        *slog.Logger
}

// NewHandler creates a Handler. An empty adminToken disables the admin API.
func NewHandler(deps Deps, webhookSecret, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		deps:          deps,
		webhookSecret: []byte(webhookSecret),
		adminToken:    adminToken,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/webhook", h.Webhook)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	if h.adminToken != "" {
		admin := func(pattern string, fn http.HandlerFunc) {
			mux.Handle(pattern, adminAuthMiddleware(h.adminToken, fn))
		}
		admin("GET /api/v1/ptal", h.ListPTALs)
		admin("POST /api/v1/ptal", h.CreatePTAL)
		admin("DELETE /api/v1/ptal/{owner}/{repo}/{number}", h.DeletePTALs)
		admin("GET /api/v1/registrations", h.ListRegistrations)
		admin("POST /api/v1/registrations", h.AddRegistration)
		admin("DELETE /api/v1/registrations/{owner}/{repo}/{channel}", h.RemoveRegistration)
		admin("GET /api/v1/guilds", h.ListGuilds)
		admin("POST /api/v1/sweep", h.Sweep)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB != nil {
		if err := h.deps.DB.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Time:   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// isValidName validates a repository owner or name segment: alphanumeric
// characters, hyphens, dots, or underscores.
func isValidName(part string) bool {
	if part == "" {
		return false
	}
	for _, ch := range part {
		if !isValidRepoChar(ch) {
			return false
		}
	}
	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
