package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04", "15:04:05"}

// AppointmentInput is the booking form as the shell collects it: date and
// time arrive as separate strings and are combined here.
type AppointmentInput struct {
	PatientID       string
	ScheduledDate   string // YYYY-MM-DD
	ScheduledTime   string // HH:MM or HH:MM:SS
	DurationMinutes int    // 0 means clinic.DefaultDurationMinutes
	TreatmentType   string
	Notes           string
}

// Resolve validates the form and composes the scheduled instant in loc.
// Missing required fields are all reported together.
func (in AppointmentInput) Resolve(loc *time.Location) (clinic.NewAppointment, error) {
	verr := &clinic.ValidationError{}

	patientID := strings.TrimSpace(in.PatientID)
	date := strings.TrimSpace(in.ScheduledDate)
	clock := strings.TrimSpace(in.ScheduledTime)

	if patientID == "" {
		verr.Add("patient_id", "is required")
	}
	if date == "" {
		verr.Add("scheduled_date", "is required")
	}
	if clock == "" {
		verr.Add("scheduled_time", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return clinic.NewAppointment{}, err
	}

	id, err := uuid.Parse(patientID)
	if err != nil {
		verr.Add("patient_id", "must be a valid id")
	}

	at, ok := composeInstant(date, clock, loc)
	if !ok {
		if _, err := time.ParseInLocation(dateLayout, date, loc); err != nil {
			verr.Add("scheduled_date", "must be a date in YYYY-MM-DD format")
		} else {
			verr.Add("scheduled_time", "must be a time in HH:MM format")
		}
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = clinic.DefaultDurationMinutes
	}
	if duration < 0 {
		verr.Add("duration", "must be greater than 0")
	}

	if err := verr.OrNil(); err != nil {
		return clinic.NewAppointment{}, err
	}

	return clinic.NewAppointment{
		PatientID:       id,
		ScheduledAt:     at,
		DurationMinutes: duration,
		TreatmentType:   optional(in.TreatmentType),
		Notes:           optional(in.Notes),
	}, nil
}

func composeInstant(date, clock string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(dateLayout+"T"+layout, date+"T"+clock, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ComposeInstant combines a YYYY-MM-DD date and an HH:MM[:SS] time of day
// into one instant in loc.
func ComposeInstant(date, clock string, loc *time.Location) (time.Time, error) {
	at, ok := composeInstant(strings.TrimSpace(date), strings.TrimSpace(clock), loc)
	if !ok {
		return time.Time{}, &clinic.ValidationError{Fields: map[string]string{
			"scheduled_date": "must be a YYYY-MM-DD date with an HH:MM time",
		}}
	}
	return at, nil
}

// ParseDate reads a YYYY-MM-DD date as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
