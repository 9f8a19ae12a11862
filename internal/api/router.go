package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-calendar/internal/auth"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

type ClinicService interface {
	SearchPatients(ctx context.Context, term string) ([]clinic.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*clinic.Patient, error)
	CreatePatient(ctx context.Context, in clinic.PatientInput) (*clinic.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, in clinic.PatientInput) (*clinic.Patient, error)

	ListAppointments(ctx context.Context, start, end time.Time) ([]clinic.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*clinic.Appointment, error)
	CreateAppointment(ctx context.Context, in clinic.NewAppointment) (*clinic.Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, patch clinic.AppointmentPatch) (*clinic.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	Stats(ctx context.Context, now time.Time) (clinic.Stats, error)
}

type AuthService interface {
	SignUp(ctx context.Context, in auth.Credentials) (*auth.User, error)
	SignIn(ctx context.Context, in auth.Credentials) (*auth.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	SignOut(ctx context.Context, token string) error
}

type RouterConfig struct {
	Clinic       ClinicService
	Auth         AuthService
	Dependencies []Dependency
	Location     *time.Location
	Logger       *zap.Logger
	Env          string
	Version      string
	// RateLimitRPS caps requests per second per client IP; zero disables it.
	RateLimitRPS int
	Now          func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))
	}

	log := cfg.Logger
	weeks := weekLoader{svc: cfg.Clinic, loc: cfg.Location, now: cfg.Now, log: log}

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/auth/signup", signUpHandler(cfg.Auth, log))
	r.Post("/auth/login", loginHandler(cfg.Auth, log))

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(cfg.Auth, log))

		r.Post("/auth/logout", logoutHandler(cfg.Auth, log))

		r.Get("/patients", listPatientsHandler(cfg.Clinic, log))
		r.Post("/patients", createPatientHandler(cfg.Clinic, cfg.Location, log))
		r.Get("/patients/{id}", getPatientHandler(cfg.Clinic, log))
		r.Put("/patients/{id}", updatePatientHandler(cfg.Clinic, cfg.Location, log))

		r.Get("/appointments", listAppointmentsHandler(cfg.Clinic, log))
		r.Post("/appointments", createAppointmentHandler(cfg.Clinic, log))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Clinic, log))
		r.Patch("/appointments/{id}", updateAppointmentHandler(cfg.Clinic, log))
		r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Clinic, log))

		r.Get("/calendar/week", weekHandler(weeks))
		r.Get("/calendar/week.ics", weekICSHandler(weeks))

		r.Get("/stats", statsHandler(cfg.Clinic, cfg.Now, log))
	})

	return r
}
