package repository

import (
	"context"
	"errors"

	"medray-api/internal/domain/entity"
	domainRepo "medray-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Every lookup and mutation here is filtered on doctor_id, so a doctor can
// never reach a note written by someone else.
type medicalNoteRepository struct {
	db *gorm.DB
}

func NewMedicalNoteRepository(db *gorm.DB) domainRepo.MedicalNoteRepository {
	return &medicalNoteRepository{db: db}
}

func (r *medicalNoteRepository) Create(ctx context.Context, note *entity.MedicalNote) error {
	return r.db.WithContext(ctx).Omit("Ray").Create(note).Error
}

func (r *medicalNoteRepository) FindByIDAndDoctor(ctx context.Context, id, doctorID uuid.UUID) (*entity.MedicalNote, error) {
	var note entity.MedicalNote
	err := r.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

func (r *medicalNoteRepository) FindByDoctorAndPatient(ctx context.Context, doctorID, patientID uuid.UUID) ([]entity.MedicalNote, error) {
	var notes []entity.MedicalNote
	err := r.db.WithContext(ctx).
		Preload("Ray").
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *medicalNoteRepository) UpdateText(ctx context.Context, id, doctorID uuid.UUID, text string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.MedicalNote{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Update("note", text)
	return result.RowsAffected, result.Error
}

func (r *medicalNoteRepository) Delete(ctx context.Context, id, doctorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&entity.MedicalNote{})
	return result.RowsAffected, result.Error
}
