package repository

import (
	"context"
	"errors"

	"medray-api/internal/domain/entity"
	domainRepo "medray-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindDoctorByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ? AND role = ?", id, entity.RoleDoctor).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindDoctors(ctx context.Context) ([]entity.User, error) {
	var doctors []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "name", "specialty").
		Where("role = ?", entity.RoleDoctor).
		Order("name ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// FindPatientsOfDoctor returns every user holding at least one appointment
// with the doctor, with their rays preloaded.
func (r *userRepository) FindPatientsOfDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.User, error) {
	var patients []entity.User
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&entity.Appointment{}).Select("patient_id").Where("doctor_id = ?", doctorID)).
		Preload("Rays", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("name ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Omit("Rays").Save(user).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("password", passwordHash).Error
}
