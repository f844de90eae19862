package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"designdesk/internal/http/handlers"
	"designdesk/internal/infra"
	"designdesk/internal/middleware"
)

// NewRouter assembles the HTTP surface with its middleware chain.
func NewRouter(app *handlers.App, cfg *infra.Config, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		middleware.I18N(cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/chat", func(r chi.Router) {
		r.Post("/", app.Chat)
		r.Get("/ws", app.ChatWS)
	})

	r.Route("/v1/requests", func(r chi.Router) {
		r.Post("/", app.SubmitRequest)
		r.Get("/", app.ListRequests)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetRequest)
			r.Get("/time-logs", app.RequestTimeLogs)
			r.Post("/start", app.TaskStart)
			r.Post("/submit-review", app.TaskSubmitReview)
			r.Post("/request-revision", app.TaskRequestRevision)
			r.Post("/complete", app.TaskComplete)
			r.Post("/cancel", app.TaskCancel)
		})
	})

	r.Post("/v1/commands", app.Command)
	r.Get("/v1/guidance", app.GuidanceSearch)

	return r
}
