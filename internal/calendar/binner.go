package calendar

import (
	"time"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// DayBucket is one calendar day of the visible week and the appointments
// scheduled on it.
type DayBucket struct {
	Day          time.Time            `json:"date"`
	Appointments []clinic.Appointment `json:"appointments"`
}

// BucketByDay returns one bucket per entry of days, in the same order.
// An appointment lands in the bucket whose date equals its scheduled date
// in the day's location. Input order is kept within each bucket and nothing
// is re-sorted, so the store's ordering shows through unchanged. Days with
// no appointments get an empty, non-nil bucket; appointments outside days
// are dropped.
func BucketByDay(appointments []clinic.Appointment, days []time.Time) []DayBucket {
	buckets := make([]DayBucket, len(days))
	for i, day := range days {
		buckets[i] = DayBucket{Day: day, Appointments: []clinic.Appointment{}}
	}

	for _, a := range appointments {
		for i := range buckets {
			if SameDay(a.ScheduledAt, buckets[i].Day, buckets[i].Day.Location()) {
				buckets[i].Appointments = append(buckets[i].Appointments, a)
				break
			}
		}
	}
	return buckets
}

// NonEmpty filters out buckets without appointments, for shells that hide
// empty days.
func NonEmpty(buckets []DayBucket) []DayBucket {
	out := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		if len(b.Appointments) > 0 {
			out = append(out, b)
		}
	}
	return out
}
