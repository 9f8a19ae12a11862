package api

import (
	"strings"
	"time"

	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PatientRequest is the create/update body for a patient. Birth date is a
// plain YYYY-MM-DD date.
type PatientRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `json:"phone"`
	Email        *string `json:"email,omitempty"`
	BirthDate    string  `json:"birth_date,omitempty"`
	MedicalNotes *string `json:"medical_notes,omitempty"`
}

func (r PatientRequest) Input(loc *time.Location) (clinic.PatientInput, error) {
	in := clinic.PatientInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Email:        r.Email,
		MedicalNotes: r.MedicalNotes,
	}
	if s := strings.TrimSpace(r.BirthDate); s != "" {
		d, err := calendar.ParseDate(s, loc)
		if err != nil {
			return in, &clinic.ValidationError{Fields: map[string]string{"birth_date": "must be a YYYY-MM-DD date"}}
		}
		in.BirthDate = &d
	}
	return in, nil
}

type WeekResponse struct {
	Week calendar.WeekInterval `json:"week"`
	Days []calendar.DayBucket  `json:"days"`
}

type LogoutResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
}
