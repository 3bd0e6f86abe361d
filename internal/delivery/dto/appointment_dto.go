package dto

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentTime and Date are wall-clock values in the clinic time zone.

type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	AppointmentTime string `json:"appointment_time" validate:"required,datetime=2006-01-02 15:04:05"`
}

type AvailableSlotsRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

type AppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       uuid.UUID       `json:"patient_id"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	AppointmentTime string          `json:"appointment_time"`
	Status          string          `json:"status"`
	Doctor          *DoctorResponse `json:"doctor,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
