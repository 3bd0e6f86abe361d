package usecase

import (
	"context"
	"strings"
	"time"

	"medray-api/internal/converter"
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/service"

	"github.com/sirupsen/logrus"
)

type UserUsecase interface {
	GetProfile(ctx context.Context, identity entity.Identity) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, identity entity.Identity, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	Dashboard(ctx context.Context, identity entity.Identity) (*dto.DashboardResponse, error)
	ListDoctors(ctx context.Context) ([]dto.DoctorResponse, error)
}

type userUsecase struct {
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	rayRepo         repository.RayRepository
	auditService    service.AuditService
	loc             *time.Location
	now             func() time.Time
}

func NewUserUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	rayRepo repository.RayRepository,
	auditService service.AuditService,
	loc *time.Location,
) UserUsecase {
	return &userUsecase{
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		rayRepo:         rayRepo,
		auditService:    auditService,
		loc:             loc,
		now:             time.Now,
	}
}

func (u *userUsecase) GetProfile(ctx context.Context, identity entity.Identity) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

// UpdateProfile applies only the fields present in the request.
// Specialty is ignored for patients.
func (u *userUsecase) UpdateProfile(ctx context.Context, identity entity.Identity, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	before := converter.UserToResponse(user)

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.MedicalCondition != nil {
		user.MedicalCondition = req.MedicalCondition
	}
	if req.Specialty != nil && user.IsDoctor() {
		user.Specialty = req.Specialty
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		u.log.Warnf("Failed to update user %s: %+v", user.ID, err)
		return nil, err
	}

	after := converter.UserToResponse(user)
	_ = u.auditService.LogUpdate(ctx, &user.ID, entity.AuditActionProfileUpdate, "user", user.ID.String(), before, after)

	return after, nil
}

func (u *userUsecase) Dashboard(ctx context.Context, identity entity.Identity) (*dto.DashboardResponse, error) {
	user, err := u.findUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	response := &dto.DashboardResponse{
		Dashboard: user.Role.Dashboard(),
		User:      converter.UserToResponse(user),
	}

	if user.IsDoctor() {
		patients, err := u.userRepo.FindPatientsOfDoctor(ctx, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find patients of doctor %s: %+v", user.ID, err)
			return nil, err
		}
		count := len(patients)
		response.PatientCount = &count
		return response, nil
	}

	next, err := u.appointmentRepo.FindNextBookedByPatient(ctx, user.ID, u.now())
	if err != nil {
		u.log.Warnf("Failed to find next appointment of %s: %+v", user.ID, err)
		return nil, err
	}
	response.NextAppointment = converter.AppointmentToResponse(next, u.loc)

	rays, err := u.rayRepo.FindByOwner(ctx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find rays of %s: %+v", user.ID, err)
		return nil, err
	}
	count := len(rays)
	response.RayCount = &count

	return response, nil
}

func (u *userUsecase) ListDoctors(ctx context.Context) ([]dto.DoctorResponse, error) {
	doctors, err := u.userRepo.FindDoctors(ctx)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}
	return converter.DoctorsToResponse(doctors), nil
}

func (u *userUsecase) findUser(ctx context.Context, identity entity.Identity) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
