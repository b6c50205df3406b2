package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/clinicore/clinic-services/internal/api/errors"
	"github.com/clinicore/clinic-services/internal/appointment"
	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/guard"
	redisclient "github.com/clinicore/clinic-services/internal/redis"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierrors.ValidationError(w, "could not parse JSON")
			return
		}

		when, err := time.Parse(time.RFC3339, req.AppointmentDate)
		if err != nil {
			apierrors.ValidationError(w, "appointmentDate must be RFC 3339")
			return
		}

		appt, err := svc.Create(r.Context(), ident, appointment.CreateParams{
			PatientID:       req.PatientID,
			PatientName:     req.PatientName,
			DoctorID:        req.DoctorID,
			DoctorName:      req.DoctorName,
			Specialty:       req.Specialty,
			AppointmentDate: when,
			Description:     req.Description,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		status, ok := statusFilter(r)
		if !ok {
			apierrors.ValidationError(w, "unknown status value")
			return
		}

		appointments, err := svc.List(r.Context(), ident, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appointments))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			apierrors.ValidationError(w, "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), ident, id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsByPatientHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		status, ok := statusFilter(r)
		if !ok {
			apierrors.ValidationError(w, "unknown status value")
			return
		}

		patientID := chi.URLParam(r, "id")
		appointments, err := svc.ListByPatient(r.Context(), ident, patientID, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appointments))
	}
}

func listAppointmentsByDoctorHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		status, ok := statusFilter(r)
		if !ok {
			apierrors.ValidationError(w, "unknown status value")
			return
		}

		doctorID := chi.URLParam(r, "id")
		appointments, err := svc.ListByDoctor(r.Context(), ident, doctorID, status)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appointments))
	}
}

func confirmAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return transitionHandler(svc.Confirm)
}

func completeAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return transitionHandler(svc.Complete)
}

func transitionHandler(fn func(ctx context.Context, ident auth.Identity, id uuid.UUID) (*appointment.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			apierrors.ValidationError(w, "id must be a valid UUID")
			return
		}

		appt, err := fn(r.Context(), ident, id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			apierrors.Unauthorized(w, "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			apierrors.ValidationError(w, "id must be a valid UUID")
			return
		}

		reason := r.URL.Query().Get("reason")

		appt, err := svc.Cancel(r.Context(), ident, id, reason)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func statusFilter(r *http.Request) (*appointment.Status, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, true
	}
	status, ok := appointment.ParseStatus(raw)
	if !ok {
		return nil, false
	}
	return &status, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		apierrors.Unauthorized(w, "authentication required")
	case errors.Is(err, guard.ErrDenied):
		apierrors.Forbidden(w)
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		apierrors.NotFound(w, "appointment not found")
	case errors.Is(err, appointment.ErrMissingOwnerFields):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, appointment.ErrSlotTaken):
		apierrors.Conflict(w, "doctor already has an appointment at that time")
	case errors.Is(err, appointment.ErrSlotBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		apierrors.Conflict(w, "slot is currently being booked, please retry shortly")
	case errors.Is(err, appointment.ErrAlreadyCompleted):
		apierrors.Conflict(w, "appointment is already completed")
	case errors.Is(err, appointment.ErrInvalidTransition):
		apierrors.Conflict(w, "invalid status transition")
	default:
		apierrors.InternalError(w)
	}
}
