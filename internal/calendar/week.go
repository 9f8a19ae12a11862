package calendar

import "time"

// DaysPerWeek is the number of day columns in the calendar.
const DaysPerWeek = 7

// WeekInterval spans Monday 00:00:00.000 through Sunday 23:59:59.999 in the
// location of the reference date it was computed from.
type WeekInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the interval, both ends included.
func (w WeekInterval) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// weekStart returns local midnight of the Monday on or before ref.
func weekStart(ref time.Time) time.Time {
	offset := int(ref.Weekday()) - 1
	if ref.Weekday() == time.Sunday {
		offset = 6
	}
	// time.Date normalises day overflow and resolves midnight per calendar
	// day, so the result stays correct across DST changes.
	return time.Date(ref.Year(), ref.Month(), ref.Day()-offset, 0, 0, 0, 0, ref.Location())
}

// WeekRange returns the Monday-to-Sunday week containing ref. The week
// always starts on Monday regardless of the host locale.
func WeekRange(ref time.Time) WeekInterval {
	start := weekStart(ref)
	end := time.Date(start.Year(), start.Month(), start.Day()+6, 23, 59, 59, int(999*time.Millisecond), start.Location())
	return WeekInterval{Start: start, End: end}
}

// WeekDays returns local midnight of each day of ref's week, Monday first.
// Day i is derived exactly like WeekRange(ref).Start plus i days.
func WeekDays(ref time.Time) []time.Time {
	start := weekStart(ref)
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, start.Location())
	}
	return days
}

// SameDay compares calendar dates of a and b as seen in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
