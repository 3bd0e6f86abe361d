package repository

import (
	"context"
	"time"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveByDoctorBetween returns non-cancelled appointments with from <= time < to.
	FindActiveByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error)
	FindNextBookedByPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*entity.Appointment, error)
}
