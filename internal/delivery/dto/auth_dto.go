package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterRequest struct {
	Name             string  `json:"name" validate:"required,min=2,max=255"`
	Email            string  `json:"email" validate:"required,email,max=255"`
	Password         string  `json:"password" validate:"required,min=6"`
	Age              int     `json:"age" validate:"required,gte=1,lte=150"`
	Gender           string  `json:"gender" validate:"required,oneof=male female"`
	PhoneNumber      string  `json:"phone_number" validate:"required,max=20"`
	MedicalCondition *string `json:"medical_condition" validate:"omitempty,max=2000"`
	Role             string  `json:"role" validate:"required,oneof=doctor patient"`
	Specialty        *string `json:"specialty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the session.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=2,max=255"`
	Age              *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=male female"`
	PhoneNumber      *string `json:"phone_number" validate:"omitempty,max=20"`
	MedicalCondition *string `json:"medical_condition" validate:"omitempty,max=2000"`
	Specialty        *string `json:"specialty" validate:"omitempty,max=100"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Code                 string `json:"code" validate:"required,len=6,numeric"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	PhoneNumber      string    `json:"phone_number"`
	MedicalCondition *string   `json:"medical_condition,omitempty"`
	Role             string    `json:"role"`
	Specialty        *string   `json:"specialty,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type RegisterResponse struct {
	User *UserResponse `json:"user"`
	TokenResponse
}

type LoginResponse struct {
	User      *UserResponse  `json:"user"`
	Tokens    *TokenResponse `json:"tokens"`
	Dashboard string         `json:"dashboard"`
}

// DashboardResponse carries the landing view for the caller's role.
// Patient-only and doctor-only fields are omitted for the other role.
type DashboardResponse struct {
	Dashboard       string               `json:"dashboard"`
	User            *UserResponse        `json:"user"`
	NextAppointment *AppointmentResponse `json:"next_appointment,omitempty"`
	RayCount        *int                 `json:"ray_count,omitempty"`
	PatientCount    *int                 `json:"patient_count,omitempty"`
}

type ResetCodeSentResponse struct {
	Email     string `json:"email"`
	ExpiresIn int64  `json:"expires_in"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
}
