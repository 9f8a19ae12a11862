package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

const productID = "-//clinic-calendar//weekly schedule//EN"

// ExportICS renders the week's appointments as an iCalendar document with
// one VEVENT per appointment, in bucket order.
func ExportICS(week WeekInterval, days []DayBucket, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Clinic week of " + week.Start.Format(dateLayout))
	cal.SetXWRTimezone(week.Start.Location().String())

	for _, day := range days {
		for _, a := range day.Appointments {
			addEvent(cal, a, stamp)
		}
	}
	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, a clinic.Appointment, stamp time.Time) {
	event := cal.AddEvent(a.ID.String())
	event.SetDtStampTime(stamp)
	event.SetStartAt(a.ScheduledAt)
	event.SetEndAt(a.EndsAt())
	event.SetSummary(eventSummary(a))
	if a.Notes != nil {
		event.SetDescription(*a.Notes)
	}
	if !a.CreatedAt.IsZero() {
		event.SetCreatedTime(a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		event.SetModifiedAt(a.UpdatedAt)
	}

	status := "CONFIRMED"
	if a.Status == clinic.StatusCancelled {
		status = "CANCELLED"
	}
	event.SetProperty(ics.ComponentPropertyStatus, status)
}

func eventSummary(a clinic.Appointment) string {
	var parts []string
	if a.Patient != nil {
		parts = append(parts, strings.TrimSpace(a.Patient.FirstName+" "+a.Patient.LastName))
	}
	if a.TreatmentType != nil {
		parts = append(parts, *a.TreatmentType)
	}
	if len(parts) == 0 {
		return "Appointment"
	}
	return strings.Join(parts, " - ")
}
