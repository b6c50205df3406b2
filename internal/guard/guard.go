// Package guard holds the per-operation authorization predicates. Every
// predicate is a pure function of the effective role, the caller's id and
// the resource's owner fields, with no ambient state and no side effects. A false
// result is a normal deny, not an error; services translate it to ErrDenied
// and the HTTP layer maps that to 403.
package guard

import (
	"errors"

	"github.com/clinicore/clinic-services/internal/auth"
)

// ErrDenied is returned by services when a guard predicate denies access.
var ErrDenied = errors.New("access denied")

// CanCreateAppointment: only doctors and admins create appointments.
func CanCreateAppointment(role auth.Role) bool {
	return role == auth.RoleAdmin || role == auth.RoleDoctor
}

// CanReadAppointment: admins read any appointment; a doctor or patient only
// one they own through the matching owner field.
func CanReadAppointment(role auth.Role, callerID, patientOwner, doctorOwner string) bool {
	switch role {
	case auth.RoleAdmin:
		return true
	case auth.RoleDoctor:
		return callerID == doctorOwner
	case auth.RolePatient:
		return callerID == patientOwner
	default:
		return false
	}
}

// CanListPatientAppointments: admins list any patient's appointments; a
// patient only their own. Doctors get no cross-patient listing here.
func CanListPatientAppointments(role auth.Role, callerID, patientID string) bool {
	if role == auth.RoleAdmin {
		return true
	}
	return role == auth.RolePatient && callerID == patientID
}

// CanListDoctorAppointments: admins list any doctor's appointments; a doctor
// only their own.
func CanListDoctorAppointments(role auth.Role, callerID, doctorID string) bool {
	if role == auth.RoleAdmin {
		return true
	}
	return role == auth.RoleDoctor && callerID == doctorID
}

// CanTransitionAppointment covers confirm and complete. Any doctor or admin
// may transition any appointment; ownership is deliberately not checked for
// these two operations, unlike Cancel.
func CanTransitionAppointment(role auth.Role) bool {
	return role == auth.RoleAdmin || role == auth.RoleDoctor
}

// CanCancelAppointment: admins cancel anything; doctors and patients only
// appointments they own.
func CanCancelAppointment(role auth.Role, callerID, patientOwner, doctorOwner string) bool {
	switch role {
	case auth.RoleAdmin:
		return true
	case auth.RoleDoctor:
		return callerID == doctorOwner
	case auth.RolePatient:
		return callerID == patientOwner
	default:
		return false
	}
}

// CanAccessImage covers both read and delete: strict owner match on the
// resolved internal user id. There is no admin bypass for images.
func CanAccessImage(ownerID, callerInternalID int64) bool {
	return ownerID == callerInternalID
}
