package entity

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatusValue string

const (
	PatientStatusNew      PatientStatusValue = "New"
	PatientStatusRegular  PatientStatusValue = "Regular"
	PatientStatusFollowUp PatientStatusValue = "Follow-up"
	PatientStatusCritical PatientStatusValue = "Critical"
)

// PatientStatus is one doctor's triage label for one patient
type PatientStatus struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uq_patient_statuses_doctor_patient" json:"doctor_id"`
	PatientID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uq_patient_statuses_doctor_patient" json:"patient_id"`
	Status    PatientStatusValue `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PatientStatus) TableName() string {
	return "patient_statuses"
}
