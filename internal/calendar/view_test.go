package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

type listCall struct {
	start, end time.Time
}

// fakeStore serves appointments from memory. A fetch whose week start has a
// gate registered blocks until the gate is closed.
type fakeStore struct {
	mu           sync.Mutex
	appointments []clinic.Appointment
	patients     []clinic.Patient
	listCalls    []listCall
	gates        map[time.Time]chan struct{}
	started      chan time.Time

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	created   []clinic.NewAppointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		gates:   map[time.Time]chan struct{}{},
		started: make(chan time.Time, 16),
	}
}

func (s *fakeStore) gate(weekStart time.Time) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[weekStart] = ch
	return ch
}

func (s *fakeStore) calls() []listCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listCall(nil), s.listCalls...)
}

func (s *fakeStore) ListAppointments(ctx context.Context, start, end time.Time) ([]clinic.Appointment, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, listCall{start, end})
	gate := s.gates[start]
	s.mu.Unlock()

	select {
	case s.started <- start:
	default:
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []clinic.Appointment
	for _, a := range s.appointments {
		if !a.ScheduledAt.Before(start) && !a.ScheduledAt.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateAppointment(ctx context.Context, in clinic.NewAppointment) (*clinic.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, in)
	if s.createErr != nil {
		return nil, s.createErr
	}
	a := clinic.Appointment{
		ID:              uuid.New(),
		PatientID:       in.PatientID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		TreatmentType:   in.TreatmentType,
		Notes:           in.Notes,
		Status:          clinic.StatusScheduled,
	}
	s.appointments = append(s.appointments, a)
	return &a, nil
}

func (s *fakeStore) UpdateAppointment(ctx context.Context, id uuid.UUID, patch clinic.AppointmentPatch) (*clinic.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			if patch.Status != nil {
				s.appointments[i].Status = *patch.Status
			}
			a := s.appointments[i]
			return &a, nil
		}
	}
	return nil, clinic.ErrAppointmentNotFound
}

func (s *fakeStore) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return nil
		}
	}
	return clinic.ErrAppointmentNotFound
}

func (s *fakeStore) ListPatients(ctx context.Context) ([]clinic.Patient, error) {
	return s.patients, nil
}

type recorder struct {
	mu     sync.Mutex
	weeks  []WeekInterval
	days   [][]DayBucket
	errors []string
}

func (r *recorder) OnWeekChanged(week WeekInterval, days []DayBucket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks = append(r.weeks, week)
	r.days = append(r.days, days)
}

func (r *recorder) OnError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func awaitStart(t *testing.T, s *fakeStore) time.Time {
	t.Helper()
	select {
	case start := <-s.started:
		return start
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
		return time.Time{}
	}
}

func TestView_NavigationFetchesWeek(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	a := appt(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), 30)
	store.appointments = []clinic.Appointment{a}

	v := NewView(store, rec, WithLocation(time.UTC), WithClock(fixedClock(now)))

	_, loaded := v.Week()
	assert.False(t, loaded)

	require.NoError(t, v.GoToToday(context.Background()))
	week, loaded := v.Week()
	require.True(t, loaded)
	assert.Equal(t, date(time.UTC, 2024, 3, 11), week.Start)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(v.Days()[2].Appointments))

	require.NoError(t, v.GoToNextWeek(context.Background()))
	week, _ = v.Week()
	assert.Equal(t, date(time.UTC, 2024, 3, 18), week.Start)
	assert.Equal(t, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC), v.CurrentDate())
	for _, d := range v.Days() {
		assert.Empty(t, d.Appointments)
	}

	require.NoError(t, v.GoToPreviousWeek(context.Background()))
	require.NoError(t, v.GoToPreviousWeek(context.Background()))
	week, _ = v.Week()
	assert.Equal(t, date(time.UTC, 2024, 3, 4), week.Start)

	calls := store.calls()
	require.Len(t, calls, 4)
	for _, c := range calls {
		assert.Equal(t, WeekRange(c.start), WeekInterval{Start: c.start, End: c.end})
	}
	assert.Len(t, rec.weeks, 4)
	assert.Empty(t, rec.errors)
}

func TestView_NavigationAcrossDSTChanges(t *testing.T) {
	for _, name := range []string{"Europe/Berlin", "America/New_York"} {
		t.Run(name, func(t *testing.T) {
			loc := mustLoad(t, name)
			ctx := context.Background()
			// Shortly after midnight, where a fixed 168h step would land on
			// the wrong day once the offset changes.
			start := time.Date(2024, 3, 4, 0, 15, 0, 0, loc)
			v := NewView(newFakeStore(), nil, WithLocation(loc), WithClock(fixedClock(start)))

			require.NoError(t, v.GoToToday(ctx))
			prev, _ := v.Week()
			require.Equal(t, date(loc, 2024, 3, 4), prev.Start)

			check := func(step string, want time.Time) {
				t.Helper()
				week, loaded := v.Week()
				require.True(t, loaded)
				assert.Equal(t, want, week.Start, step)
				assert.Equal(t, time.Monday, week.Start.Weekday(), step)
				h, m, sec := week.Start.Clock()
				assert.Zero(t, h*3600+m*60+sec, "%s: week starts at local midnight", step)
				prev = week
			}

			// 40 weeks forward crosses both the spring-forward and the
			// fall-back weeks of 2024.
			for i := 0; i < 40; i++ {
				require.NoError(t, v.GoToNextWeek(ctx))
				check("next", prev.Start.AddDate(0, 0, DaysPerWeek))
			}
			assert.Equal(t, date(loc, 2024, 12, 9), prev.Start)

			for i := 0; i < 40; i++ {
				require.NoError(t, v.GoToPreviousWeek(ctx))
				check("previous", prev.Start.AddDate(0, 0, -DaysPerWeek))
			}
			assert.Equal(t, date(loc, 2024, 3, 4), prev.Start)
			assert.Equal(t, start, v.CurrentDate(), "focus keeps its wall-clock time")
		})
	}
}

func TestView_SetWeekUsesLocation(t *testing.T) {
	store := newFakeStore()
	moscow := mustLoad(t, "Europe/Moscow")
	v := NewView(store, nil, WithLocation(moscow))

	// 22:00 UTC on Sunday is already Monday in Moscow.
	require.NoError(t, v.SetWeek(context.Background(), time.Date(2024, 3, 17, 22, 0, 0, 0, time.UTC)))

	week, _ := v.Week()
	assert.Equal(t, date(moscow, 2024, 3, 18), week.Start)
}

func TestView_StaleResponseDiscarded(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	w1 := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, DaysPerWeek)
	old := appt(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), 30)
	fresh := appt(time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC), 30)
	store.appointments = []clinic.Appointment{old, fresh}

	v := NewView(store, rec, WithLocation(time.UTC), WithClock(fixedClock(w1)))
	slow := store.gate(WeekRange(w1).Start)

	done := make(chan error, 1)
	go func() { done <- v.SetWeek(context.Background(), w1) }()
	awaitStart(t, store)

	require.NoError(t, v.SetWeek(context.Background(), w2))
	awaitStart(t, store)

	close(slow)
	require.NoError(t, <-done, "stale completion is not an error")

	week, _ := v.Week()
	assert.Equal(t, WeekRange(w2), week)
	assert.Equal(t, []uuid.UUID{fresh.ID}, ids(v.Days()[1].Appointments))
	assert.Equal(t, w2, v.CurrentDate())

	require.Len(t, rec.weeks, 1, "the stale week is never reported")
	assert.Equal(t, WeekRange(w2), rec.weeks[0])
}

func TestView_StaleFailureNotReported(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	w1 := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, DaysPerWeek)

	v := NewView(store, rec, WithLocation(time.UTC))
	slow := store.gate(WeekRange(w1).Start)

	done := make(chan error, 1)
	go func() { done <- v.SetWeek(context.Background(), w1) }()
	awaitStart(t, store)

	require.NoError(t, v.SetWeek(context.Background(), w2))
	awaitStart(t, store)

	store.mu.Lock()
	store.listErr = errors.New("connection reset")
	store.mu.Unlock()
	close(slow)

	require.NoError(t, <-done)
	assert.Empty(t, rec.errors)
	week, _ := v.Week()
	assert.Equal(t, WeekRange(w2), week)
}

func TestView_FetchErrorKeepsPreviousWeek(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	a := appt(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), 30)
	store.appointments = []clinic.Appointment{a}

	v := NewView(store, rec, WithLocation(time.UTC), WithClock(fixedClock(now)))
	require.NoError(t, v.GoToToday(context.Background()))

	store.listErr = errors.New("permission denied for table appointments")
	err := v.GoToNextWeek(context.Background())

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "permission denied for table appointments", err.Error())
	assert.Equal(t, []string{"permission denied for table appointments"}, rec.errors)

	week, _ := v.Week()
	assert.Equal(t, WeekRange(now), week)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(v.Days()[2].Appointments))
	// The focus moved even though the fetch failed; Refresh retries it.
	assert.Equal(t, now.AddDate(0, 0, DaysPerWeek), v.CurrentDate())

	store.listErr = nil
	require.NoError(t, v.Refresh(context.Background()))
	week, _ = v.Week()
	assert.Equal(t, WeekRange(now.AddDate(0, 0, DaysPerWeek)), week)
}

func TestView_CreateRefetches(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	v := NewView(store, rec, WithLocation(time.UTC), WithClock(fixedClock(now)))
	require.NoError(t, v.GoToToday(context.Background()))

	a, err := v.CreateAppointment(context.Background(), AppointmentInput{
		PatientID:     uuid.NewString(),
		ScheduledDate: "2024-03-14",
		ScheduledTime: "09:00",
		TreatmentType: "consultation",
	})
	require.NoError(t, err)

	assert.Len(t, store.calls(), 2)
	assert.Equal(t, []uuid.UUID{a.ID}, ids(v.Days()[3].Appointments))
	assert.Len(t, rec.weeks, 2)
}

func TestView_CreateInvalidSkipsStore(t *testing.T) {
	store := newFakeStore()
	v := NewView(store, nil, WithLocation(time.UTC))

	_, err := v.CreateAppointment(context.Background(), AppointmentInput{
		ScheduledDate: "2024-03-14",
		ScheduledTime: "09:00",
	})

	var verr *clinic.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "patient_id")
	assert.Empty(t, store.created)
	assert.Empty(t, store.calls())
}

func TestView_MutationErrorsPassThrough(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	v := NewView(store, rec, WithLocation(time.UTC))
	storeErr := errors.New(`insert or update on table "appointments" violates foreign key constraint`)
	store.createErr = storeErr
	store.updateErr = storeErr
	store.deleteErr = storeErr

	_, err := v.CreateAppointment(context.Background(), AppointmentInput{
		PatientID:     uuid.NewString(),
		ScheduledDate: "2024-03-14",
		ScheduledTime: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, storeErr.Error(), err.Error())
	assert.ErrorIs(t, err, storeErr)

	status := clinic.StatusCompleted
	_, err = v.UpdateAppointment(context.Background(), uuid.New(), clinic.AppointmentPatch{Status: &status})
	assert.ErrorIs(t, err, storeErr)

	err = v.DeleteAppointment(context.Background(), uuid.New())
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "delete appointment", se.Op)

	assert.Empty(t, store.calls(), "no refresh after a failed mutation")
	assert.Empty(t, rec.errors)
}

func TestView_UpdateAndDeleteRefetch(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	a := appt(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), 30)
	store.appointments = []clinic.Appointment{a}
	v := NewView(store, nil, WithLocation(time.UTC), WithClock(fixedClock(now)))
	require.NoError(t, v.GoToToday(context.Background()))

	status := clinic.StatusCompleted
	updated, err := v.UpdateAppointment(context.Background(), a.ID, clinic.AppointmentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, clinic.StatusCompleted, updated.Status)
	assert.Equal(t, clinic.StatusCompleted, v.Days()[2].Appointments[0].Status)

	require.NoError(t, v.DeleteAppointment(context.Background(), a.ID))
	assert.Empty(t, v.Days()[2].Appointments)
	assert.Len(t, store.calls(), 3)
}

func TestView_ConcurrentNavigationEndsOnLatest(t *testing.T) {
	store := newFakeStore()
	rec := &recorder{}
	start := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	v := NewView(store, rec, WithLocation(time.UTC), WithClock(fixedClock(start)))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = v.GoToNextWeek(context.Background())
		}()
	}
	for i := 0; i < 10; i++ {
		<-store.started
	}
	wg.Wait()

	want := WeekRange(start.AddDate(0, 0, 10*DaysPerWeek))
	week, loaded := v.Week()
	require.True(t, loaded)
	assert.Equal(t, want, week)

	// Reported weeks never go backwards.
	for i := 1; i < len(rec.weeks); i++ {
		assert.True(t, rec.weeks[i].Start.After(rec.weeks[i-1].Start))
	}
	assert.Equal(t, want, rec.weeks[len(rec.weeks)-1])
}
