package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status string from a query parameter.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// Appointment owner fields hold external subject ids. They are set at
// creation and never reassigned; cancellation is a status, not a deletion.
type Appointment struct {
	ID              uuid.UUID
	PatientID       string
	PatientName     string
	DoctorID        string
	DoctorName      string
	Specialty       string
	AppointmentDate time.Time
	Status          Status
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
