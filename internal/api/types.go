package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-services/internal/appointment"
	"github.com/clinicore/clinic-services/internal/image"
	"github.com/clinicore/clinic-services/internal/user"
)

type CreateAppointmentRequest struct {
	PatientID       string `json:"patientId"`
	PatientName     string `json:"patientName"`
	DoctorID        string `json:"doctorId"`
	DoctorName      string `json:"doctorName"`
	Specialty       string `json:"specialty"`
	AppointmentDate string `json:"appointmentDate"` // RFC 3339
	Description     string `json:"description"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       string    `json:"patientId"`
	PatientName     string    `json:"patientName"`
	DoctorID        string    `json:"doctorId"`
	DoctorName      string    `json:"doctorName"`
	Specialty       string    `json:"specialty"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Status          string    `json:"status"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		PatientName:     a.PatientName,
		DoctorID:        a.DoctorID,
		DoctorName:      a.DoctorName,
		Specialty:       a.Specialty,
		AppointmentDate: a.AppointmentDate,
		Status:          string(a.Status),
		Description:     a.Description,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentResponses(list []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toAppointmentResponse(&list[i]))
	}
	return out
}

type CreateUserRequest struct {
	Subject    string  `json:"subject"`
	Email      string  `json:"email"`
	GivenName  string  `json:"givenName"`
	FamilyName string  `json:"familyName"`
	Phone      *string `json:"phone"`
	Role       string  `json:"role"`
}

type UserResponse struct {
	ID         int64     `json:"id"`
	Subject    string    `json:"subject"`
	Email      string    `json:"email"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	Phone      *string   `json:"phone,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Subject:    u.Subject,
		Email:      u.Email,
		GivenName:  u.GivenName,
		FamilyName: u.FamilyName,
		Phone:      u.Phone,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// InternalIDResponse is the cross-service lookup payload.
type InternalIDResponse struct {
	ID int64 `json:"id"`
}

type ImageInfoResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
	URL         string    `json:"url"`
}

func toImageInfoResponse(id int64, name, contentType string, size int64, uploadedAt time.Time) ImageInfoResponse {
	return ImageInfoResponse{
		ID:          id,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  uploadedAt,
		URL:         fmt.Sprintf("/images/%d", id),
	}
}

func toImageInfoResponses(list []image.Info) []ImageInfoResponse {
	out := make([]ImageInfoResponse, 0, len(list))
	for _, info := range list {
		out = append(out, toImageInfoResponse(info.ID, info.Filename, info.ContentType, info.Size, info.UploadedAt))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
