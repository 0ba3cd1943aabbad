package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agripulse/agripulse/internal/config"
	"github.com/agripulse/agripulse/internal/handlers"
	"github.com/agripulse/agripulse/internal/middleware"
)

// routerDeps bundles the handlers the router mounts.
type routerDeps struct {
	Auth      *handlers.AuthHandler
	Farms     *handlers.FarmHandler
	Schedules *handlers.ScheduleHandler
	Reports   *handlers.ReportHandler
	Webhook   *handlers.WebhookHandler
	Inbound   *handlers.InboundHandler
}

// newRouter mounts all routes and middleware. Public routes (auth, webhook,
// health, metrics, media) are rate limited; everything under /v1 except auth
// and the webhook requires a JWT.
func newRouter(cfg config.Config, deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.Env == "prod"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Synthesized audio must be reachable by the WhatsApp media fetcher.
	fs := http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir)))
	r.Handle("/media/*", fs)

	authLimiter := middleware.AuthRateLimiter()
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/auth/register", deps.Auth.Register)
			r.Post("/auth/login", deps.Auth.Login)
			r.Post("/webhooks/whatsapp", deps.Webhook.InboundMessage)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

			r.Get("/farms", deps.Farms.ListFarms)
			r.Post("/farms", deps.Farms.CreateFarm)
			r.Get("/farms/{id}", deps.Farms.GetFarm)
			r.Delete("/farms/{id}", deps.Farms.DeleteFarm)

			r.Post("/farms/{id}/reports", deps.Reports.GenerateReport)
			r.Get("/farms/{id}/reports", deps.Reports.ListReports)
			r.Get("/farms/{id}/reports/latest", deps.Reports.LatestReport)

			r.Get("/schedules", deps.Schedules.ListSchedules)
			r.Post("/schedules", deps.Schedules.CreateSchedule)
			r.Get("/schedules/{id}", deps.Schedules.GetSchedule)
			r.Put("/schedules/{id}", deps.Schedules.UpdateSchedule)
			r.Delete("/schedules/{id}", deps.Schedules.DeleteSchedule)

			r.Get("/inbound", deps.Inbound.ListInbound)
		})
	})

	return r
}
