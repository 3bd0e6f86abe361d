package repository

import (
	"context"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
)

type PatientStatusRepository interface {
	Upsert(ctx context.Context, status *entity.PatientStatus) error
	FindByDoctor(ctx context.Context, doctorID uuid.UUID, patientIDs []uuid.UUID) ([]entity.PatientStatus, error)
}
