package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/clinic-services/internal/appointment"
	"github.com/clinicore/clinic-services/internal/image"
	"github.com/clinicore/clinic-services/internal/user"
)

// RouterConfig carries everything a server router needs. Auth is the JWT
// middleware; tests substitute a stub that injects an identity directly.
type RouterConfig struct {
	Auth    func(http.Handler) http.Handler
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  *slog.Logger
	Env     string
	Version string
}

func baseRouter(service string, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware(service))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewAppointmentRouter wires the appointment REST surface. Every route runs
// behind the auth middleware; role and ownership checks happen in the
// service layer with the caller identity passed explicitly.
func NewAppointmentRouter(cfg RouterConfig, svc *appointment.Service) http.Handler {
	r := baseRouter("appointment", cfg)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)

		r.Post("/appointments", createAppointmentHandler(svc))
		r.Get("/appointments", listAppointmentsHandler(svc))
		r.Get("/appointments/{id}", getAppointmentHandler(svc))
		r.Get("/appointments/patient/{id}", listAppointmentsByPatientHandler(svc))
		r.Get("/appointments/doctor/{id}", listAppointmentsByDoctorHandler(svc))
		r.Put("/appointments/{id}/confirm", confirmAppointmentHandler(svc))
		r.Put("/appointments/{id}/complete", completeAppointmentHandler(svc))
		r.Delete("/appointments/{id}", cancelAppointmentHandler(svc))
	})

	return r
}

// NewUserRouter wires the user REST surface plus the internal lookup
// endpoint consumed by the image service.
func NewUserRouter(cfg RouterConfig, svc *user.Service) http.Handler {
	r := baseRouter("user", cfg)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)

		r.Post("/users", createUserHandler(svc))
		r.Get("/users", listUsersHandler(svc))
		r.Get("/users/{id}", getUserHandler(svc))
		r.Get("/users/me", currentUserHandler(svc))
		r.Get("/users/my-id", myUserIDHandler(svc))
	})

	// Internal service-to-service route, not exposed through the gateway.
	r.Get("/internal/users/by-subject/{subject}", lookupInternalIDHandler(svc))

	return r
}

// NewImageRouter wires the image REST surface.
func NewImageRouter(cfg RouterConfig, svc *image.Service, maxImageBytes int64) http.Handler {
	r := baseRouter("image", cfg)

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)

		r.Post("/images/upload", uploadImageHandler(svc, maxImageBytes))
		r.Get("/images", listImagesHandler(svc))
		r.Get("/images/{id}", getImageHandler(svc))
		r.Delete("/images/{id}", deleteImageHandler(svc))
	})

	return r
}
