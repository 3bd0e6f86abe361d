package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// AppointmentSlotConstraint is the partial unique index on
// (doctor_id, appointment_time) for non-cancelled rows. Inserts that violate it
// are reported as a booking conflict.
const AppointmentSlotConstraint = "uq_appointments_doctor_time"

// Appointment is a patient booking with a doctor at an exact timestamp
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	AppointmentTime time.Time         `gorm:"type:timestamptz;not null" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'booked';index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsBooked checks if appointment is still active
func (a *Appointment) IsBooked() bool {
	return a.Status == AppointmentStatusBooked
}
