package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/config"
	"github.com/hackgods/clinic-calendar/internal/db"
	"github.com/hackgods/clinic-calendar/internal/logger"
)

var treatments = []string{
	"consultation",
	"cleaning",
	"filling",
	"extraction",
	"root canal",
	"check-up",
	"whitening",
}

func main() {
	patients := flag.Int("patients", 50, "number of patients to create")
	appointments := flag.Int("appointments", 40, "number of appointments to spread over the current week")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, db.Options{DSN: cfg.PostgresDSN, Migrate: true}, lg)
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	ids, err := seedPatients(ctx, pool, faker, *patients, lg)
	if err != nil {
		lg.Fatal("seed patients", zap.Error(err))
	}
	if err := seedAppointments(ctx, pool, faker, ids, *appointments, cfg.Location, lg); err != nil {
		lg.Fatal("seed appointments", zap.Error(err))
	}

	lg.Info("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, lg *zap.Logger) ([]uuid.UUID, error) {
	lg.Info("seeding patients", zap.Int("count", count))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		in := clinic.PatientInput{
			FirstName: faker.FirstName(),
			LastName:  faker.LastName(),
			Phone:     faker.Numerify("+1 (###) ###-####"),
		}
		if faker.Bool() {
			email := faker.Email()
			in.Email = &email
		}
		birth := faker.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-2, 0, 0))
		in.BirthDate = &birth
		if err := in.Validate(); err != nil {
			return nil, err
		}

		id := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, first_name, last_name, phone, email, birth_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, in.FirstName, in.LastName, in.Phone, in.Email, in.BirthDate)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// seedAppointments books count appointments on the weekdays of the current
// week, on half-hour starts between 08:00 and 17:30 clinic time.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, patients []uuid.UUID, count int, loc *time.Location, lg *zap.Logger) error {
	if len(patients) == 0 || count == 0 {
		return nil
	}
	lg.Info("seeding appointments", zap.Int("count", count))

	days := calendar.WeekDays(time.Now().In(loc))[:5]

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		day := days[faker.Number(0, len(days)-1)]
		slot := faker.Number(0, 19)
		start := time.Date(day.Year(), day.Month(), day.Day(), 8+slot/2, (slot%2)*30, 0, 0, loc)

		status := clinic.StatusScheduled
		if start.Before(time.Now()) {
			status = []clinic.AppointmentStatus{clinic.StatusCompleted, clinic.StatusCancelled}[faker.Number(0, 1)]
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, patient_id, scheduled_date, duration, status, treatment_type)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), patients[faker.Number(0, len(patients)-1)], start,
			[]int{15, 30, 45, 60}[faker.Number(0, 3)], status, faker.RandomString(treatments))
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
