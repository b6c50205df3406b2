package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/guard"
	redisclient "github.com/clinicore/clinic-services/internal/redis"
)

var (
	ErrSlotTaken          = errors.New("doctor already has an appointment at that time")
	ErrSlotBeingBooked    = errors.New("slot is currently being booked, please retry")
	ErrAlreadyCompleted   = errors.New("appointment is already completed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrMissingOwnerFields = errors.New("patient and doctor ids are required")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	logger *slog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		logger: logger.With(slog.String("component", "appointment_service")),
	}
}

type CreateParams struct {
	PatientID       string
	PatientName     string
	DoctorID        string
	DoctorName      string
	Specialty       string
	AppointmentDate time.Time
	Description     string
}

// Create books a new appointment. Only doctors and admins may create; a
// distributed lock per (doctor, time) keeps two concurrent requests from
// double-booking the same doctor.
func (s *Service) Create(ctx context.Context, ident auth.Identity, p CreateParams) (*Appointment, error) {
	if !guard.CanCreateAppointment(ident.Role) {
		return nil, guard.ErrDenied
	}
	if p.PatientID == "" || p.DoctorID == "" {
		return nil, ErrMissingOwnerFields
	}

	var created *Appointment

	err := s.locker.WithBookingLock(ctx, p.DoctorID, p.AppointmentDate, func(lockCtx context.Context) error {
		// Re-check inside the critical section.
		existing, err := s.repo.FindDoctorConflict(lockCtx, p.DoctorID, p.AppointmentDate)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check doctor conflict: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		appt, err := s.repo.Create(lockCtx, Appointment{
			PatientID:       p.PatientID,
			PatientName:     p.PatientName,
			DoctorID:        p.DoctorID,
			DoctorName:      p.DoctorName,
			Specialty:       p.Specialty,
			AppointmentDate: p.AppointmentDate,
			Status:          StatusScheduled,
			Description:     p.Description,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.logger.Info("appointment created",
		slog.String("appointment_id", created.ID.String()),
		slog.String("doctor_id", created.DoctorID),
	)

	return created, nil
}

// Get fetches an appointment and checks ownership-based read access.
// Existence is checked before the guard so NotFound and a denial stay
// distinguishable.
func (s *Service) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !guard.CanReadAppointment(ident.Role, ident.Subject, appt.PatientID, appt.DoctorID) {
		return nil, guard.ErrDenied
	}

	return appt, nil
}

// List returns the caller's role-scoped view: admins see everything, doctors
// and patients only their own appointments.
func (s *Service) List(ctx context.Context, ident auth.Identity, status *Status) ([]Appointment, error) {
	switch ident.Role {
	case auth.RoleAdmin:
		return s.repo.List(ctx, status)
	case auth.RoleDoctor:
		return s.repo.ListByDoctor(ctx, ident.Subject, status)
	case auth.RolePatient:
		return s.repo.ListByPatient(ctx, ident.Subject, status)
	default:
		return nil, guard.ErrDenied
	}
}

// ListByPatient serves the patient-scoped listing endpoint. Self-service
// restriction: only admins may cross the owner boundary.
func (s *Service) ListByPatient(ctx context.Context, ident auth.Identity, patientID string, status *Status) ([]Appointment, error) {
	if !guard.CanListPatientAppointments(ident.Role, ident.Subject, patientID) {
		return nil, guard.ErrDenied
	}
	appointments, err := s.repo.ListByPatient(ctx, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// ListByDoctor serves the doctor-scoped listing endpoint.
func (s *Service) ListByDoctor(ctx context.Context, ident auth.Identity, doctorID string, status *Status) ([]Appointment, error) {
	if !guard.CanListDoctorAppointments(ident.Role, ident.Subject, doctorID) {
		return nil, guard.ErrDenied
	}
	appointments, err := s.repo.ListByDoctor(ctx, doctorID, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appointments, nil
}

// Confirm moves SCHEDULED to CONFIRMED. Ownership is not checked: any doctor
// or admin may confirm any appointment.
func (s *Service) Confirm(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, ident, id, StatusScheduled, StatusConfirmed)
}

// Complete moves CONFIRMED to COMPLETED under the same permissive policy as
// Confirm.
func (s *Service) Complete(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, ident, id, StatusConfirmed, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, ident auth.Identity, id uuid.UUID, from, to Status) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !guard.CanTransitionAppointment(ident.Role) {
		return nil, guard.ErrDenied
	}

	if appt.Status != from {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row moved out of `from` between the read and the update.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logger.Info("appointment transitioned",
		slog.String("appointment_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	return updated, nil
}

// Cancel marks an appointment CANCELLED. Admins cancel anything; doctors and
// patients only their own. An optional reason replaces the description.
func (s *Service) Cancel(ctx context.Context, ident auth.Identity, id uuid.UUID, reason string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !guard.CanCancelAppointment(ident.Role, ident.Subject, appt.PatientID, appt.DoctorID) {
		return nil, guard.ErrDenied
	}

	switch appt.Status {
	case StatusCompleted:
		return nil, ErrAlreadyCompleted
	case StatusCancelled:
		return nil, ErrInvalidTransition
	}

	cancelled, err := s.repo.Cancel(ctx, id, reason)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logger.Info("appointment cancelled",
		slog.String("appointment_id", id.String()),
	)

	return cancelled, nil
}
