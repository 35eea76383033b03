package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowcall/glowcall-backend/api/controllers"
	bookingcontrollers "github.com/glowcall/glowcall-backend/api/controllers/bookings"
	"github.com/glowcall/glowcall-backend/api/middleware"
	"github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/intake"
	"github.com/glowcall/glowcall-backend/internal/invoices"
	"github.com/glowcall/glowcall-backend/internal/notifications"
	"github.com/glowcall/glowcall-backend/pkg/config"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/redis"
)

const bookingCreatePolicy = "booking-create"

// Params carries everything the HTTP surface needs. Nil pingers are skipped
// by readiness; a nil MetricsHandler leaves /metrics unmounted.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          controllers.Pinger
	PubSub         controllers.Pinger
	Idempotency    redis.IdempotencyStore
	RateLimiter    middleware.FixedWindowLimiter
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Intake         intake.Service
	Bookings       bookings.Service
	Invoices       invoices.Service
	Notifications  notifications.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": p.DB,
			"redis":    p.Redis,
			"pubsub":   p.PubSub,
		}))
	})
	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	staff := []enums.ActorRole{enums.ActorRoleManager, enums.ActorRoleAdmin}
	staffOrVendor := []enums.ActorRole{enums.ActorRoleManager, enums.ActorRoleAdmin, enums.ActorRoleVendor}
	createPolicy := middleware.NewRateLimitPolicy(
		bookingCreatePolicy,
		cfg.RateLimit.BookingCreateWindow,
		cfg.RateLimit.BookingCreateLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(p.Idempotency, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.With(
				middleware.RequireRoles(logg, enums.ActorRoleCustomer, enums.ActorRoleManager, enums.ActorRoleAdmin),
				middleware.RateLimit(createPolicy, p.RateLimiter, logg),
			).Post("/", bookingcontrollers.Create(p.Intake, logg))

			r.Route("/{bookingId}", func(r chi.Router) {
				r.Get("/", bookingcontrollers.Detail(p.Bookings, logg))
				r.Get("/events", bookingcontrollers.Events(p.Bookings, logg))
				r.Post("/cancel", bookingcontrollers.Cancel(p.Bookings, logg))

				r.With(middleware.RequireRoles(logg, staffOrVendor...)).
					Post("/status", bookingcontrollers.TransitionStatus(p.Bookings, logg))
				r.With(middleware.RequireRoles(logg, staff...)).
					Post("/assign-vendor", bookingcontrollers.AssignVendor(p.Bookings, logg))
				r.With(middleware.RequireRoles(logg, staffOrVendor...)).
					Post("/vendor-response", bookingcontrollers.VendorResponse(p.Bookings, logg))
				r.With(middleware.RequireRoles(logg, staffOrVendor...)).
					Post("/assign-beautician", bookingcontrollers.AssignBeautician(p.Bookings, logg))

				r.Route("/invoice", func(r chi.Router) {
					r.With(middleware.RequireRoles(logg, staff...)).
						Post("/", bookingcontrollers.GenerateInvoice(p.Invoices, logg))
					r.Get("/", bookingcontrollers.InvoiceDetail(p.Bookings, p.Invoices, logg))
					r.Get("/document", bookingcontrollers.InvoiceDocument(p.Bookings, p.Invoices, logg))
				})
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.ActorRoleCustomer, enums.ActorRoleVendor, enums.ActorRoleBeautician))
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	return r
}
