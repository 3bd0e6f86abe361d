package repository

import (
	"context"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
)

type MedicalNoteRepository interface {
	Create(ctx context.Context, note *entity.MedicalNote) error
	FindByIDAndDoctor(ctx context.Context, id, doctorID uuid.UUID) (*entity.MedicalNote, error)
	FindByDoctorAndPatient(ctx context.Context, doctorID, patientID uuid.UUID) ([]entity.MedicalNote, error)
	UpdateText(ctx context.Context, id, doctorID uuid.UUID, text string) (int64, error)
	Delete(ctx context.Context, id, doctorID uuid.UUID) (int64, error)
}
