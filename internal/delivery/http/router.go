package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	Logger       *slog.Logger
	Verifier     domain.TokenVerifier
	Auth         *controllers.AuthController
	Registration *controllers.RegistrationController
	Host         *controllers.HostController

	// Gatherer backs /metrics; Observer records every request. Either may be nil.
	Gatherer prometheus.Gatherer
	Observer middleware.RequestObserver

	// HealthCheck is called by /healthz when set, typically a database ping.
	HealthCheck    func(ctx context.Context) error
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)

	// Sign-in
	mux.HandleFunc("GET /auth/google/login", d.Auth.Login)
	mux.HandleFunc("GET /auth/google/callback", d.Auth.Callback)
	mux.HandleFunc("POST /auth/logout", d.Auth.Logout)

	// Attendee
	mux.HandleFunc("GET /registration/status", auth(d.Registration.Status))
	mux.HandleFunc("POST /registrations", auth(d.Registration.Register))
	mux.HandleFunc("GET /registrations/me", auth(d.Registration.Me))
	mux.HandleFunc("GET /phone/format", auth(d.Registration.FormatPhone))

	// Host
	mux.HandleFunc("GET /host/registrants", auth(d.Host.ListRegistrants))
	mux.HandleFunc("GET /host/registrants/{email}", auth(d.Host.GetRegistrant))
	mux.HandleFunc("DELETE /host/registrants/{email}", auth(d.Host.DeleteRegistrant))
	mux.HandleFunc("GET /host/archive", auth(d.Host.ListArchive))
	mux.HandleFunc("POST /host/notifications", auth(d.Host.NotifyAll))

	// Ops
	mux.HandleFunc("GET /healthz", healthz(d.HealthCheck, d.Logger))
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	if d.Observer != nil {
		handler = middleware.Instrument(d.Observer, handler)
	}
	handler = middleware.LoggingMiddleware(d.Logger, handler)
	return middleware.CORS(d.AllowedOrigins, handler)
}

// healthz godoc
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error"
// @Router /healthz [get]
func healthz(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "unhealthy")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
