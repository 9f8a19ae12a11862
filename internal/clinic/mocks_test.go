package clinic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Repository = (*mockRepository)(nil)

// mockRepository keeps records in memory. Func fields override the default
// behaviour of a single method.
type mockRepository struct {
	mu           sync.Mutex
	patients     map[uuid.UUID]*Patient
	appointments map[uuid.UUID]*Appointment

	CreateAppointmentFunc func(ctx context.Context, a NewAppointment) (*Appointment, error)
	CountBetweenFunc      func(ctx context.Context, from, to time.Time) (int, error)

	createAppointmentCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		patients:     make(map[uuid.UUID]*Patient),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (m *mockRepository) addPatient(first, last, phone string) *Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &Patient{ID: uuid.New(), FirstName: first, LastName: last, Phone: phone}
	m.patients[p.ID] = p
	return p
}

func (m *mockRepository) ListPatients(_ context.Context) ([]Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Patient
	for _, p := range m.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) CreatePatient(_ context.Context, in PatientInput) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &Patient{
		ID:           uuid.New(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Email:        in.Email,
		BirthDate:    in.BirthDate,
		MedicalNotes: in.MedicalNotes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.patients[p.ID] = p
	return p, nil
}

func (m *mockRepository) UpdatePatient(_ context.Context, id uuid.UUID, in PatientInput) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	p.FirstName, p.LastName, p.Phone = in.FirstName, in.LastName, in.Phone
	p.Email, p.BirthDate, p.MedicalNotes = in.Email, in.BirthDate, in.MedicalNotes
	cp := *p
	return &cp, nil
}

func (m *mockRepository) ListAppointmentsBetween(_ context.Context, start, end time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Appointment{}
	for _, a := range m.appointments {
		if !a.ScheduledAt.Before(start) && !a.ScheduledAt.After(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepository) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	m.mu.Lock()
	m.createAppointmentCalls++
	m.mu.Unlock()

	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(ctx, in)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a := &Appointment{
		ID:              uuid.New(),
		PatientID:       in.PatientID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Status:          StatusScheduled,
		TreatmentType:   in.TreatmentType,
		Notes:           in.Notes,
	}
	m.appointments[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *mockRepository) UpdateAppointment(_ context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.DurationMinutes != nil {
		a.DurationMinutes = *patch.DurationMinutes
	}
	if patch.ScheduledAt != nil {
		a.ScheduledAt = *patch.ScheduledAt
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepository) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockRepository) CountPatients(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.patients), nil
}

func (m *mockRepository) CountAppointmentsBetween(ctx context.Context, from, to time.Time) (int, error) {
	if m.CountBetweenFunc != nil {
		return m.CountBetweenFunc(ctx, from, to)
	}
	return 0, errors.New("CountBetweenFunc not implemented in mock")
}
