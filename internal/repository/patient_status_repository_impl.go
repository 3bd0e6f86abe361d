package repository

import (
	"context"

	"medray-api/internal/domain/entity"
	domainRepo "medray-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type patientStatusRepository struct {
	db *gorm.DB
}

func NewPatientStatusRepository(db *gorm.DB) domainRepo.PatientStatusRepository {
	return &patientStatusRepository{db: db}
}

func (r *patientStatusRepository) Upsert(ctx context.Context, status *entity.PatientStatus) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "patient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(status).Error
}

func (r *patientStatusRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID, patientIDs []uuid.UUID) ([]entity.PatientStatus, error) {
	var statuses []entity.PatientStatus
	if len(patientIDs) == 0 {
		return statuses, nil
	}
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id IN ?", doctorID, patientIDs).
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}
