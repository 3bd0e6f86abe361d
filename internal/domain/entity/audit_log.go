package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one write made through the API. UserID is nil for
// writes made by background jobs.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions, named <resource>.<verb>
const (
	AuditActionUserLogin           = "user.login"
	AuditActionUserLogout          = "user.logout"
	AuditActionUserRegister        = "user.register"
	AuditActionPasswordReset       = "user.password_reset"
	AuditActionProfileUpdate       = "profile.update"
	AuditActionAppointmentCreate   = "appointment.create"
	AuditActionRayUpload           = "ray.upload"
	AuditActionRayAnalyze          = "ray.analyze"
	AuditActionRayDelete           = "ray.delete"
	AuditActionNoteCreate          = "note.create"
	AuditActionNoteUpdate          = "note.update"
	AuditActionNoteDelete          = "note.delete"
	AuditActionPatientStatusUpsert = "patient_status.upsert"
)
