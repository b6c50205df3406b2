package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, patient_id, patient_name, doctor_id, doctor_name, specialty,
	appointment_date, status, description, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.DoctorID,
		&a.DoctorName,
		&a.Specialty,
		&a.AppointmentDate,
		&a.Status,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *PgRepository) Create(ctx context.Context, a Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, doctor_id, doctor_name, specialty,
			appointment_date, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.Specialty,
		a.AppointmentDate, a.Status, a.Description)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) List(ctx context.Context, status *Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY appointment_date
	`, statusArg(status))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID string, status *Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY appointment_date
	`, patientID, statusArg(status))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID string, status *Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY appointment_date
	`, doctorID, statusArg(status))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    description = COALESCE(NULLIF($3, ''), description),
		    updated_at = now()
		WHERE id = $1
		  AND status IN ($4, $5)
		RETURNING `+appointmentColumns+`
	`, id, StatusCancelled, reason, StatusScheduled, StatusConfirmed)

	return scanAppointment(row)
}

func (r *PgRepository) FindDoctorConflict(ctx context.Context, doctorID string, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND appointment_date = $2
		  AND status IN ($3, $4)
		LIMIT 1
	`, doctorID, at, StatusScheduled, StatusConfirmed)
	return scanAppointment(row)
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
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

func statusArg(status *Status) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}
