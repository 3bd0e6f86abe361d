package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents both doctors and patients. Specialty is only meaningful for doctors.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"type:text;not null" json:"-"`
	Age              int       `gorm:"not null;default:0" json:"age"`
	Gender           string    `gorm:"type:varchar(10)" json:"gender"`
	PhoneNumber      string    `gorm:"type:varchar(20)" json:"phone_number"`
	MedicalCondition *string   `gorm:"type:text" json:"medical_condition,omitempty"`
	Role             Role      `gorm:"type:varchar(20);not null;default:'patient';index" json:"role"`
	Specialty        *string   `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Rays []Ray `gorm:"foreignKey:UserID" json:"rays,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}
