package repository

import (
	"context"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindDoctorByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindDoctors(ctx context.Context) ([]entity.User, error)
	FindPatientsOfDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
