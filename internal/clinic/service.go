package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRange = errors.New("range start is after range end")

type Service struct {
	repo Repository
	loc  *time.Location
	log  *zap.Logger
}

// NewService builds the clinic service. loc is the clinic's local timezone,
// used for day boundaries in Stats.
func NewService(repo Repository, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
		log:  log,
	}
}

// Patients

func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) SearchPatients(ctx context.Context, term string) ([]Patient, error) {
	patients, err := s.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPatients(patients, term), nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.CreatePatient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.log.Info("patient created", zap.String("patient_id", p.ID.String()))
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in PatientInput) (*Patient, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.UpdatePatient(ctx, id, in)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}

	s.log.Info("patient updated", zap.String("patient_id", p.ID.String()))
	return p, nil
}

// Appointments

func (s *Service) ListAppointments(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	appts, err := s.repo.ListAppointmentsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// CreateAppointment books a new scheduled appointment for an existing patient.
func (s *Service) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	if in.DurationMinutes == 0 {
		in.DurationMinutes = DefaultDurationMinutes
	}
	in.TreatmentType = trimOptional(in.TreatmentType)
	in.Notes = trimOptional(in.Notes)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPatientByID(ctx, in.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	a, err := s.repo.CreateAppointment(ctx, in)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info("appointment created",
		zap.String("appointment_id", a.ID.String()),
		zap.String("patient_id", a.PatientID.String()),
		zap.Time("scheduled_date", a.ScheduledAt),
	)
	return a, nil
}

// UpdateAppointment applies an edit. Status only ever changes here; nothing
// moves an appointment to completed on its own.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.UpdateAppointment(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) || errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.log.Info("appointment updated",
		zap.String("appointment_id", a.ID.String()),
		zap.String("status", string(a.Status)),
	)
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.log.Info("appointment deleted", zap.String("appointment_id", id.String()))
	return nil
}

// Stats counts patients, today's appointments and those in the six days
// after today. Day boundaries are midnights in the clinic timezone.
func (s *Service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	now = now.In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	nextWeek := today.AddDate(0, 0, 7)

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountPatients(gctx)
		stats.PatientsCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAppointmentsBetween(gctx, today, tomorrow)
		stats.AppointmentsToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAppointmentsBetween(gctx, tomorrow, nextWeek)
		stats.UpcomingAppointments = n
		return err
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}
