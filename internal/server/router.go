// Package server is the HTTP surface of the backend: routing, auth
// middleware, request decoding and error mapping.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/billbuster/billbuster/internal/auth"
	"github.com/billbuster/billbuster/internal/observability"
	"github.com/billbuster/billbuster/internal/reminder"
	"github.com/billbuster/billbuster/internal/service"
	"github.com/billbuster/billbuster/internal/storage"
)

// Deps carries everything the router needs.
type Deps struct {
	Bills    *service.BillService
	Groups   *service.GroupService
	Workflow *reminder.Workflow
	Store    storage.Store
	Verifier *auth.Verifier
	Metrics  *observability.Metrics
	Logger   *slog.Logger

	// RateLimit is the per-member request budget per minute. Zero disables
	// rate limiting.
	RateLimit int
}

// NewRouter assembles the full route tree.
func NewRouter(deps Deps) http.Handler {
	billH := NewBillHandler(deps.Bills, deps.Metrics, deps.Logger)
	groupH := NewGroupHandler(deps.Groups, deps.Logger)
	reminderH := NewReminderHandler(deps.Workflow, deps.Groups, deps.Logger)
	memberH := NewMemberHandler(deps.Store, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)
	r.Use(RequestLogger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(deps.Verifier))
		if deps.RateLimit > 0 {
			r.Use(httprate.Limit(
				deps.RateLimit,
				time.Minute,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					return MemberID(r.Context()), nil
				}),
			))
		}

		r.Post("/scan", billH.scan)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupH.create)
			r.Get("/", groupH.list)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", groupH.get)
				r.Get("/balances", groupH.balances)
				r.Post("/settlements", groupH.recordSettlement)
				r.Post("/bills", billH.create)
				r.Get("/bills", billH.list)
				r.Get("/reminders", reminderH.list)
			})
		})

		r.Route("/bills/{billID}", func(r chi.Router) {
			r.Get("/", billH.get)
			r.Put("/", billH.supersede)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Post("/", reminderH.create)
			r.Post("/{reminderID}/dispatch", reminderH.dispatch)
		})

		r.Put("/me/device", memberH.registerDevice)
	})

	return r
}
