package repository

import (
	"context"
	"time"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
)

type RayRepository interface {
	Create(ctx context.Context, ray *entity.Ray) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ray, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Ray, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Ray, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ApplyAnalysis writes an analysis outcome unless the ray is already done.
	// It returns the number of rows changed.
	ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis entity.RayAnalysis, analyzedAt time.Time) (int64, error)
	FindRetryable(ctx context.Context, pendingBefore time.Time, maxAttempts, limit int) ([]entity.Ray, error)
}
