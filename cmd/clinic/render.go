package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// reportedError is a failure the renderer already printed through OnError.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// renderer is the calendar observer of the terminal shell. It keeps the
// latest week and prints it on flush; errors go to errOut right away.
type renderer struct {
	out, errOut io.Writer
	showEmpty   bool

	mu       sync.Mutex
	week     calendar.WeekInterval
	days     []calendar.DayBucket
	ready    bool
	reported bool
}

func newRenderer(out, errOut io.Writer) *renderer {
	return &renderer{out: out, errOut: errOut, showEmpty: true}
}

func (r *renderer) OnWeekChanged(week calendar.WeekInterval, days []calendar.DayBucket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.week, r.days, r.ready = week, days, true
}

func (r *renderer) OnError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = true
	fmt.Fprintln(r.errOut, "calendar:", message)
}

// navigated passes through the result of a view navigation. A failed fetch
// has already been printed by OnError, so it is marked as shown.
func (r *renderer) navigated(err error) error {
	if err == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reported {
		return reportedError{err}
	}
	return err
}

func (r *renderer) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return
	}
	renderWeek(r.out, r.week, r.days, r.showEmpty)
}

func renderWeek(out io.Writer, week calendar.WeekInterval, days []calendar.DayBucket, showEmpty bool) {
	fmt.Fprintf(out, "Week %s - %s\n", week.Start.Format("Mon 02 Jan 2006"), week.End.Format("Mon 02 Jan 2006"))

	if !showEmpty {
		days = calendar.NonEmpty(days)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range days {
		fmt.Fprintf(tw, "\n%s\t\t\t\t\n", day.Day.Format("Monday 02 Jan"))
		if len(day.Appointments) == 0 {
			fmt.Fprintf(tw, "  -\t\t\t\t\n")
			continue
		}
		for _, a := range day.Appointments {
			fmt.Fprintf(tw, "  %s-%s\t%s\t%s\t%s\t%s\n",
				a.ScheduledAt.In(week.Start.Location()).Format("15:04"),
				a.EndsAt().In(week.Start.Location()).Format("15:04"),
				patientName(a),
				deref(a.TreatmentType),
				a.Status,
				a.ID,
			)
		}
	}
	_ = tw.Flush()
}

func renderPatients(out io.Writer, patients []clinic.Patient) {
	if len(patients) == 0 {
		fmt.Fprintln(out, "no patients")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tEMAIL\tID")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.FullName(), p.Phone, deref(p.Email), p.ID)
	}
	_ = tw.Flush()
}

func patientName(a clinic.Appointment) string {
	if a.Patient == nil {
		return "(unknown patient)"
	}
	return strings.TrimSpace(a.Patient.FirstName + " " + a.Patient.LastName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
