package entity

import (
	"time"

	"github.com/google/uuid"
)

// MedicalNote is a free-text note a doctor writes about a patient,
// optionally tied to one of the patient's rays.
type MedicalNote struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	RayID     *uuid.UUID `gorm:"type:uuid;index" json:"ray_id,omitempty"`
	Note      string     `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Ray *Ray `gorm:"foreignKey:RayID" json:"ray,omitempty"`
}

func (MedicalNote) TableName() string {
	return "medical_notes"
}
