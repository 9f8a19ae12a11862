package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// AppointmentStore is everything the calendar needs from persistence.
// Implementations carry their own session; the view never handles auth.
type AppointmentStore interface {
	// ListAppointments returns appointments with start <= scheduled <= end,
	// ascending by scheduled instant, each joined with its patient summary.
	ListAppointments(ctx context.Context, start, end time.Time) ([]clinic.Appointment, error)
	CreateAppointment(ctx context.Context, in clinic.NewAppointment) (*clinic.Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, patch clinic.AppointmentPatch) (*clinic.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	// ListPatients returns patients ascending by first name.
	ListPatients(ctx context.Context) ([]clinic.Patient, error)
}

// Observer receives the view's notifications. Calls are serialized and
// arrive in the order fetches were issued. An observer must not call
// navigation or mutation methods of the view synchronously.
type Observer interface {
	OnWeekChanged(week WeekInterval, days []DayBucket)
	OnError(message string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	WeekChanged func(week WeekInterval, days []DayBucket)
	Error       func(message string)
}

func (o ObserverFuncs) OnWeekChanged(week WeekInterval, days []DayBucket) {
	if o.WeekChanged != nil {
		o.WeekChanged(week, days)
	}
}

func (o ObserverFuncs) OnError(message string) {
	if o.Error != nil {
		o.Error(message)
	}
}

type Option func(*View)

// WithLocation fixes the timezone used for week boundaries and for
// composing form date/time input. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(v *View) { v.loc = loc }
}

// WithClock replaces time.Now, used by GoToToday.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(v *View) { v.log = log }
}

// View is the weekly calendar's state: the focused date and the last week
// of appointments successfully loaded for it. The displayed data only ever
// changes by re-fetching from the store, never by local edits.
type View struct {
	store    AppointmentStore
	observer Observer
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger

	// notifyMu serializes apply+notify so observers never see an older
	// week after a newer one.
	notifyMu sync.Mutex

	mu      sync.Mutex
	current time.Time
	seq     uint64 // last issued fetch
	loaded  bool
	week    WeekInterval
	days    []DayBucket
}

// NewView focuses the current date. Nothing is fetched until a navigation
// method or Refresh is called.
func NewView(store AppointmentStore, observer Observer, opts ...Option) *View {
	v := &View{
		store:    store,
		observer: observer,
		loc:      time.Local,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.observer == nil {
		v.observer = ObserverFuncs{}
	}
	v.current = v.now().In(v.loc)
	return v
}

func (v *View) Location() *time.Location {
	return v.loc
}

func (v *View) CurrentDate() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Week returns the interval of the last applied fetch and whether any
// fetch has been applied yet.
func (v *View) Week() (WeekInterval, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.week, v.loaded
}

// Days returns a copy of the last applied day buckets.
func (v *View) Days() []DayBucket {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]DayBucket, len(v.days))
	copy(out, v.days)
	return out
}

// SetWeek focuses date and fetches its week.
func (v *View) SetWeek(ctx context.Context, date time.Time) error {
	return v.navigate(ctx, func(time.Time) time.Time { return date.In(v.loc) })
}

// GoToPreviousWeek moves back seven calendar days.
func (v *View) GoToPreviousWeek(ctx context.Context) error {
	return v.navigate(ctx, func(cur time.Time) time.Time { return cur.AddDate(0, 0, -DaysPerWeek) })
}

// GoToNextWeek moves forward seven calendar days. AddDate keeps the
// wall-clock time, so a DST change never moves the focus to another day.
func (v *View) GoToNextWeek(ctx context.Context) error {
	return v.navigate(ctx, func(cur time.Time) time.Time { return cur.AddDate(0, 0, DaysPerWeek) })
}

func (v *View) GoToToday(ctx context.Context) error {
	return v.SetWeek(ctx, v.now())
}

// Refresh re-fetches the focused week.
func (v *View) Refresh(ctx context.Context) error {
	return v.navigate(ctx, func(cur time.Time) time.Time { return cur })
}

// navigate moves the focus and fetches the focused week. The move and the
// fetch sequence number are taken together, so the latest sequence always
// belongs to the current focus. Only the latest fetch may apply its
// result; older ones are discarded when they complete, whether they
// succeeded or failed.
func (v *View) navigate(ctx context.Context, move func(cur time.Time) time.Time) error {
	v.mu.Lock()
	v.current = move(v.current)
	date := v.current
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	week := WeekRange(date)
	appts, fetchErr := v.store.ListAppointments(ctx, week.Start, week.End)

	err := v.apply(seq, date, week, appts, fetchErr)
	if errors.Is(err, ErrStaleResponse) {
		v.log.Debug("discarding stale week fetch",
			zap.Uint64("seq", seq),
			zap.Time("week_start", week.Start),
		)
		return nil
	}
	return err
}

func (v *View) apply(seq uint64, date time.Time, week WeekInterval, appts []clinic.Appointment, fetchErr error) error {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		return ErrStaleResponse
	}

	if fetchErr != nil {
		v.mu.Unlock()
		err := storeError("list appointments", fetchErr)
		v.log.Warn("week fetch failed", zap.Time("week_start", week.Start), zap.Error(fetchErr))
		v.observer.OnError(err.Error())
		return err
	}

	days := BucketByDay(appts, WeekDays(date))
	v.week = week
	v.days = days
	v.loaded = true
	v.mu.Unlock()

	v.log.Debug("week loaded",
		zap.Time("week_start", week.Start),
		zap.Int("appointments", len(appts)),
	)
	v.observer.OnWeekChanged(week, days)
	return nil
}

// CreateAppointment validates the form before touching the store, books
// the appointment and reloads the focused week. A store failure comes back
// as *StoreError with the store's message and nothing is retried.
func (v *View) CreateAppointment(ctx context.Context, in AppointmentInput) (*clinic.Appointment, error) {
	req, err := in.Resolve(v.loc)
	if err != nil {
		return nil, err
	}

	a, err := v.store.CreateAppointment(ctx, req)
	if err != nil {
		return nil, storeError("create appointment", err)
	}

	v.log.Debug("appointment created, reloading week", zap.String("appointment_id", a.ID.String()))
	_ = v.Refresh(ctx)
	return a, nil
}

func (v *View) UpdateAppointment(ctx context.Context, id uuid.UUID, patch clinic.AppointmentPatch) (*clinic.Appointment, error) {
	a, err := v.store.UpdateAppointment(ctx, id, patch)
	if err != nil {
		return nil, storeError("update appointment", err)
	}

	v.log.Debug("appointment updated, reloading week", zap.String("appointment_id", id.String()))
	_ = v.Refresh(ctx)
	return a, nil
}

func (v *View) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := v.store.DeleteAppointment(ctx, id); err != nil {
		return storeError("delete appointment", err)
	}

	v.log.Debug("appointment deleted, reloading week", zap.String("appointment_id", id.String()))
	_ = v.Refresh(ctx)
	return nil
}

// Patients lists the patients a booking form can pick from.
func (v *View) Patients(ctx context.Context) ([]clinic.Patient, error) {
	patients, err := v.store.ListPatients(ctx)
	if err != nil {
		return nil, storeError("list patients", err)
	}
	return patients, nil
}
