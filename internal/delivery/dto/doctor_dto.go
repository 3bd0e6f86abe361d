package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateNoteRequest struct {
	PatientID string  `json:"patient_id" validate:"required,uuid"`
	RayID     *string `json:"ray_id" validate:"omitempty,uuid"`
	Note      string  `json:"note" validate:"required,max=5000"`
}

type UpdateNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}

type SetPatientStatusRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=New Regular Follow-up Critical"`
}

// Response DTOs

type DoctorPatientResponse struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Age              int           `json:"age"`
	Gender           string        `json:"gender"`
	PhoneNumber      string        `json:"phone_number"`
	MedicalCondition *string       `json:"medical_condition,omitempty"`
	Status           string        `json:"status"`
	Rays             []RayResponse `json:"rays"`
}

type NoteResponse struct {
	ID        uuid.UUID    `json:"id"`
	DoctorID  uuid.UUID    `json:"doctor_id"`
	PatientID uuid.UUID    `json:"patient_id"`
	RayID     *uuid.UUID   `json:"ray_id,omitempty"`
	Note      string       `json:"note"`
	Ray       *RayResponse `json:"ray,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type PatientStatusResponse struct {
	PatientID uuid.UUID `json:"patient_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RayAIResponse struct {
	Ray     *RayResponse  `json:"ray"`
	Patient *UserResponse `json:"patient,omitempty"`
}
