package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	Create(ctx context.Context, a Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	List(ctx context.Context, status *Status) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID string, status *Status) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string, status *Status) ([]Appointment, error)

	// Compare-and-set transition; ErrAppointmentNotFound when the row is not
	// in the expected from status anymore.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error)

	// For double-booking checks inside the booking lock.
	FindDoctorConflict(ctx context.Context, doctorID string, at time.Time) (*Appointment, error)
}
