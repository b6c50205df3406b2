package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-services/internal/appointment"
	"github.com/clinicore/clinic-services/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctors, err := seedUsers(context.Background(), pool, "doctor", 20)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patients, err := seedUsers(context.Background(), pool, "user", 500)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctors, patients, 2000); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

type seededUser struct {
	subject string
	name    string
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, role string, count int) ([]seededUser, error) {
	log.Printf("seeding %d users with role %s", count, role)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	users := make([]seededUser, 0, count)
	for i := 0; i < count; i++ {
		subject := "kc-" + uuid.NewString()
		given := gofakeit.FirstName()
		family := gofakeit.LastName()
		email := gofakeit.Email()
		phone := gofakeit.Phone()

		_, err := tx.Exec(ctx, `
			INSERT INTO users (subject, email, given_name, family_name, phone, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, subject, email, given, family, phone, role)
		if err != nil {
			return nil, err
		}

		users = append(users, seededUser{subject: subject, name: given + " " + family})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Printf("users seeded with role %s", role)
	return users, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors, patients []seededUser, count int) error {
	log.Printf("seeding %d appointments", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}
	statuses := []appointment.Status{
		appointment.StatusScheduled,
		appointment.StatusConfirmed,
		appointment.StatusCompleted,
		appointment.StatusCancelled,
	}

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			doctor := doctors[gofakeit.Number(0, len(doctors)-1)]
			patient := patients[gofakeit.Number(0, len(patients)-1)]
			spec := specialties[gofakeit.Number(0, len(specialties)-1)]
			status := statuses[gofakeit.Number(0, len(statuses)-1)]

			// Spread appointments over the next 30 days, on the half hour.
			at := time.Now().UTC().
				Add(time.Duration(gofakeit.Number(1, 30)) * 24 * time.Hour).
				Truncate(time.Hour).
				Add(time.Duration(gofakeit.Number(0, 1)) * 30 * time.Minute)

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, patient_id, patient_name, doctor_id, doctor_name, specialty, appointment_date, status, description, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			`, uuid.New(), patient.subject, patient.name, doctor.subject, doctor.name, spec, at, status,
				fmt.Sprintf("%s consultation", spec))
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("appointments seeded: %d/%d", end, count)
	}

	log.Println("appointments seeded")
	return nil
}
