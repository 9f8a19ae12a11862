package clinic

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DefaultDurationMinutes is used when a booking form leaves duration empty.
const DefaultDurationMinutes = 30

type Patient struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	Email        *string    `json:"email,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	MedicalNotes *string    `json:"medical_notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientSummary is the patient projection joined onto appointment listings.
type PatientSummary struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	ScheduledAt     time.Time         `json:"scheduled_date"`
	DurationMinutes int               `json:"duration"`
	Status          AppointmentStatus `json:"status"`
	TreatmentType   *string           `json:"treatment_type,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	Patient         *PatientSummary   `json:"patient,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (a Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// PatientInput is the editable part of a patient record, shared by create
// and update.
type PatientInput struct {
	FirstName    string     `json:"first_name" validate:"required"`
	LastName     string     `json:"last_name" validate:"required"`
	Phone        string     `json:"phone" validate:"required,phone"`
	Email        *string    `json:"email,omitempty" validate:"omitempty,email"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	MedicalNotes *string    `json:"medical_notes,omitempty"`
}

// NewAppointment is a booking request with an already composed instant.
// Status is not part of it: every appointment starts as scheduled.
type NewAppointment struct {
	PatientID       uuid.UUID `json:"patient_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_date" validate:"required"`
	DurationMinutes int       `json:"duration" validate:"gt=0"`
	TreatmentType   *string   `json:"treatment_type,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// AppointmentPatch holds the fields an edit changes. Nil means untouched;
// an empty TreatmentType or Notes clears the stored value.
type AppointmentPatch struct {
	PatientID       *uuid.UUID         `json:"patient_id,omitempty"`
	ScheduledAt     *time.Time         `json:"scheduled_date,omitempty"`
	DurationMinutes *int               `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Status          *AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	TreatmentType   *string            `json:"treatment_type,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

func (p AppointmentPatch) Empty() bool {
	return p.PatientID == nil && p.ScheduledAt == nil && p.DurationMinutes == nil &&
		p.Status == nil && p.TreatmentType == nil && p.Notes == nil
}

// Stats backs the dashboard counters.
type Stats struct {
	PatientsCount        int `json:"patients_count"`
	AppointmentsToday    int `json:"appointments_today"`
	UpcomingAppointments int `json:"upcoming_appointments"`
}
