package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	CreatePatient(ctx context.Context, in PatientInput) (*Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, in PatientInput) (*Patient, error)

	// Listings are inclusive on both ends and ordered by scheduled_date.
	ListAppointmentsBetween(ctx context.Context, start, end time.Time) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a NewAppointment) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// Dashboard counters; the appointment window is half-open [from, to).
	CountPatients(ctx context.Context) (int, error)
	CountAppointmentsBetween(ctx context.Context, from, to time.Time) (int, error)
}
