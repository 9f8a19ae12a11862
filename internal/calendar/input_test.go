package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func TestResolve_ComposesInstant(t *testing.T) {
	moscow := mustLoad(t, "Europe/Moscow")
	pid := uuid.New()

	req, err := AppointmentInput{
		PatientID:     pid.String(),
		ScheduledDate: "2024-03-13",
		ScheduledTime: "09:00",
		TreatmentType: " consultation ",
		Notes:         "  ",
	}.Resolve(moscow)
	require.NoError(t, err)

	assert.Equal(t, pid, req.PatientID)
	assert.True(t, req.ScheduledAt.Equal(time.Date(2024, 3, 13, 6, 0, 0, 0, time.UTC)))
	assert.Equal(t, clinic.DefaultDurationMinutes, req.DurationMinutes)
	require.NotNil(t, req.TreatmentType)
	assert.Equal(t, "consultation", *req.TreatmentType)
	assert.Nil(t, req.Notes)
}

func TestResolve_AcceptsSeconds(t *testing.T) {
	req, err := AppointmentInput{
		PatientID:       uuid.NewString(),
		ScheduledDate:   "2024-03-13",
		ScheduledTime:   "14:30:15",
		DurationMinutes: 45,
	}.Resolve(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 13, 14, 30, 15, 0, time.UTC), req.ScheduledAt)
	assert.Equal(t, 45, req.DurationMinutes)
}

func TestResolve_MissingFields(t *testing.T) {
	_, err := AppointmentInput{}.Resolve(time.UTC)

	var verr *clinic.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"patient_id":     "is required",
		"scheduled_date": "is required",
		"scheduled_time": "is required",
	}, verr.Fields)
}

func TestResolve_MalformedFields(t *testing.T) {
	cases := []struct {
		name  string
		in    AppointmentInput
		field string
	}{
		{"bad id", AppointmentInput{PatientID: "42", ScheduledDate: "2024-03-13", ScheduledTime: "09:00"}, "patient_id"},
		{"bad date", AppointmentInput{PatientID: uuid.NewString(), ScheduledDate: "13.03.2024", ScheduledTime: "09:00"}, "scheduled_date"},
		{"bad time", AppointmentInput{PatientID: uuid.NewString(), ScheduledDate: "2024-03-13", ScheduledTime: "9am"}, "scheduled_time"},
		{"negative duration", AppointmentInput{PatientID: uuid.NewString(), ScheduledDate: "2024-03-13", ScheduledTime: "09:00", DurationMinutes: -1}, "duration"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Resolve(time.UTC)
			var verr *clinic.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestParseDate(t *testing.T) {
	moscow := mustLoad(t, "Europe/Moscow")
	d, err := ParseDate(" 2024-03-17 ", moscow)
	require.NoError(t, err)
	assert.Equal(t, date(moscow, 2024, 3, 17), d)

	_, err = ParseDate("yesterday", moscow)
	assert.Error(t, err)
}

func TestComposeInstant(t *testing.T) {
	moscow := mustLoad(t, "Europe/Moscow")

	at, err := ComposeInstant("2024-03-13", "09:30", moscow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 9, 30, 0, 0, moscow), at)

	_, err = ComposeInstant("2024-03-13", "", moscow)
	var verr *clinic.ValidationError
	assert.True(t, errors.As(err, &verr))
}
