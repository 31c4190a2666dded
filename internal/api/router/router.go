// Package router wires HTTP routes to their handlers.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/booking"
	"github.com/hsalameh/dental-clinic-platform/internal/catalog"
	httpmiddleware "github.com/hsalameh/dental-clinic-platform/internal/http/middleware"
	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
	"github.com/hsalameh/dental-clinic-platform/internal/schedules"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	BookingHandler      *booking.Handler
	AppointmentsHandler *appointments.Handler
	SchedulesHandler    *schedules.Handler
	CatalogHandler      *catalog.Handler
	MetricsHandler      http.Handler
	HealthCheck         func(r *http.Request) error
	CORSAllowedOrigins  []string
	StaffJWTSecret      string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (patient-facing booking flow, health, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthCheck))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/api/v1", func(api chi.Router) {
			if cfg.RateLimitPerSecond > 0 {
				api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
			}
			api.Get("/availability", cfg.BookingHandler.GetAvailability)
			api.Post("/bookings", cfg.BookingHandler.CreateBooking)
			api.Get("/patients", cfg.AppointmentsHandler.FindPatient)
			if cfg.CatalogHandler != nil {
				api.Get("/doctors", cfg.CatalogHandler.ListDoctors)
				api.Get("/procedures", cfg.CatalogHandler.ListProcedures)
			}
		})
	})

	// Staff routes (dashboard, appointment lifecycle, schedule editing)
	r.Route("/api/v1/staff", func(staff chi.Router) {
		if cfg.StaffJWTSecret != "" {
			staff.Use(httpmiddleware.StaffJWT(cfg.StaffJWTSecret))
		}

		staff.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.AppointmentsHandler.Get)
				r.Patch("/", cfg.AppointmentsHandler.Edit)
				r.Delete("/", cfg.AppointmentsHandler.Delete)
				r.Post("/status", cfg.AppointmentsHandler.SetStatus)
				r.Post("/cancel", cfg.AppointmentsHandler.Cancel)
			})
		})

		staff.Route("/doctors/{doctorID}", func(r chi.Router) {
			r.Get("/stats", cfg.AppointmentsHandler.Stats)
			r.Get("/schedules", cfg.SchedulesHandler.List)
			r.Get("/schedules/upcoming", cfg.SchedulesHandler.Upcoming)
			r.Put("/schedules/{date}", cfg.SchedulesHandler.Upsert)
		})
	})

	return r
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				respond.Error(w, http.StatusServiceUnavailable, "unhealthy", err)
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
