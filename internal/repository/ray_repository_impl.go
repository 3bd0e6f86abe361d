package repository

import (
	"context"
	"errors"
	"time"

	"medray-api/internal/domain/entity"
	domainRepo "medray-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type rayRepository struct {
	db *gorm.DB
}

func NewRayRepository(db *gorm.DB) domainRepo.RayRepository {
	return &rayRepository{db: db}
}

func (r *rayRepository) Create(ctx context.Context, ray *entity.Ray) error {
	return r.db.WithContext(ctx).Omit("User").Create(ray).Error
}

func (r *rayRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ray, error) {
	var ray entity.Ray
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&ray).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ray, nil
}

func (r *rayRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Ray, error) {
	var ray entity.Ray
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&ray).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ray, nil
}

func (r *rayRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Ray, error) {
	var rays []entity.Ray
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&rays).Error
	if err != nil {
		return nil, err
	}
	return rays, nil
}

func (r *rayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Ray{}).Error
}

// ApplyAnalysis is the second half of the two-phase upload write. The state
// guard keeps a late retry from overwriting a verdict that already landed.
func (r *rayRepository) ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis entity.RayAnalysis, analyzedAt time.Time) (int64, error) {
	updates := map[string]interface{}{
		"ai_status":              analysis.Status,
		"ai_summary":             analysis.Summary,
		"ai_confidence":          analysis.Confidence,
		"differential_diagnosis": analysis.Differential,
		"analysis_state":         analysis.State,
		"analysis_attempts":      gorm.Expr("analysis_attempts + 1"),
		"analyzed_at":            analyzedAt,
	}

	result := r.db.WithContext(ctx).Model(&entity.Ray{}).
		Where("id = ? AND analysis_state != ?", id, entity.AnalysisDone).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *rayRepository) FindRetryable(ctx context.Context, pendingBefore time.Time, maxAttempts, limit int) ([]entity.Ray, error) {
	var rays []entity.Ray
	err := r.db.WithContext(ctx).
		Where("analysis_attempts < ?", maxAttempts).
		Where(
			r.db.Where("analysis_state = ?", entity.AnalysisFailed).
				Or("analysis_state = ? AND created_at < ?", entity.AnalysisPending, pendingBefore),
		).
		Order("created_at ASC").
		Limit(limit).
		Find(&rays).Error
	if err != nil {
		return nil, err
	}
	return rays, nil
}
