package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"

	patientColumns = `id, first_name, last_name, phone, email, birth_date, medical_notes, created_at, updated_at`

	appointmentColumns = `a.id, a.patient_id, a.scheduled_date, a.duration, a.status, a.treatment_type, a.notes,
		a.created_at, a.updated_at, p.first_name, p.last_name, p.phone`
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

var _ Repository = (*PgRepository)(nil)

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Email,
		&p.BirthDate,
		&p.MedicalNotes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var summary PatientSummary

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ScheduledAt,
		&a.DurationMinutes,
		&a.Status,
		&a.TreatmentType,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&summary.FirstName,
		&summary.LastName,
		&summary.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Patient = &summary
	return &a, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrPatientNotFound
	}
	return err
}

// Patients

func (r *PgRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY first_name ASC, last_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, first_name, last_name, phone, email, birth_date, medical_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+patientColumns,
		uuid.New(), in.FirstName, in.LastName, in.Phone, in.Email, in.BirthDate, in.MedicalNotes)
	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, id uuid.UUID, in PatientInput) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET first_name = $2,
		    last_name = $3,
		    phone = $4,
		    email = $5,
		    birth_date = $6,
		    medical_notes = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+patientColumns,
		id, in.FirstName, in.LastName, in.Phone, in.Email, in.BirthDate, in.MedicalNotes)
	return scanPatient(row)
}

func (r *PgRepository) CountPatients(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}

// Appointments

func (r *PgRepository) ListAppointmentsBetween(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.scheduled_date >= $1
		  AND a.scheduled_date <= $2
		ORDER BY a.scheduled_date ASC, a.id ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		WITH a AS (
			INSERT INTO appointments (id, patient_id, scheduled_date, duration, status, treatment_type, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'scheduled', $5, $6, now(), now())
			RETURNING *
		)
		SELECT `+appointmentColumns+`
		FROM a
		JOIN patients p ON p.id = a.patient_id
	`, uuid.New(), in.PatientID, in.ScheduledAt, in.DurationMinutes, in.TreatmentType, in.Notes)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return a, nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch) (*Appointment, error) {
	if patch.Empty() {
		return r.GetAppointmentByID(ctx, id)
	}

	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.PatientID != nil {
		set("patient_id", *patch.PatientID)
	}
	if patch.ScheduledAt != nil {
		set("scheduled_date", *patch.ScheduledAt)
	}
	if patch.DurationMinutes != nil {
		set("duration", *patch.DurationMinutes)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.TreatmentType != nil {
		set("treatment_type", nullIfBlank(*patch.TreatmentType))
	}
	if patch.Notes != nil {
		set("notes", nullIfBlank(*patch.Notes))
	}

	row := r.pool.QueryRow(ctx, `
		WITH a AS (
			UPDATE appointments
			SET `+strings.Join(sets, ", ")+`,
			    updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+appointmentColumns+`
		FROM a
		JOIN patients p ON p.id = a.patient_id
	`, args...)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return a, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) CountAppointmentsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE scheduled_date >= $1
		  AND scheduled_date < $2
	`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

func nullIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
