package usecase

import (
	"context"
	"errors"
	"time"

	"medray-api/internal/converter"
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/infrastructure/database"
	"medray-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

var (
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrSlotTaken              = errors.New("this time slot is already booked")
	ErrAppointmentInPast      = errors.New("appointment time must be in the future")
	ErrDateInPast             = errors.New("date must be today or later")
	ErrInvalidAppointmentTime = errors.New("invalid appointment time, use YYYY-MM-DD HH:MM:SS")
	ErrInvalidDate            = errors.New("invalid date format, use YYYY-MM-DD")
	ErrNoUpcomingAppointment  = errors.New("no upcoming appointment")
	ErrCannotBookWithYourself = errors.New("doctors cannot book an appointment with themselves")
)

type AppointmentUsecase interface {
	Book(ctx context.Context, identity entity.Identity, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	AvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) ([]string, error)
	MyAppointment(ctx context.Context, identity entity.Identity) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	allocator       *service.SlotAllocator
	now             func() time.Time
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	allocator *service.SlotAllocator,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		allocator:       allocator,
		now:             time.Now,
	}
}

// Book inserts the appointment and lets the slot constraint decide races:
// there is no read-before-write, so two concurrent requests for the same
// doctor and timestamp yield exactly one 201 and one ErrSlotTaken.
func (u *appointmentUsecase) Book(ctx context.Context, identity entity.Identity, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	appointmentTime, err := time.ParseInLocation(service.SlotTimeLayout, req.AppointmentTime, u.allocator.Location())
	if err != nil {
		return nil, ErrInvalidAppointmentTime
	}
	if !appointmentTime.After(u.now()) {
		return nil, ErrAppointmentInPast
	}
	if doctorID == identity.UserID {
		return nil, ErrCannotBookWithYourself
	}

	doctor, err := u.userRepo.FindDoctorByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	appointment := &entity.Appointment{
		PatientID:       identity.UserID,
		DoctorID:        doctor.ID,
		AppointmentTime: appointmentTime,
		Status:          entity.AppointmentStatusBooked,
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		if database.IsUniqueViolation(err, entity.AppointmentSlotConstraint) {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}
	appointment.Doctor = doctor

	response := converter.AppointmentToResponse(appointment, u.allocator.Location())
	_ = u.auditService.LogCreate(ctx, &identity.UserID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), response)

	return response, nil
}

func (u *appointmentUsecase) AvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) ([]string, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	loc := u.allocator.Location()
	date, err := time.ParseInLocation(dateLayout, req.Date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	today, _ := u.allocator.DayBounds(u.now())
	if date.Before(today) {
		return nil, ErrDateInPast
	}

	doctor, err := u.userRepo.FindDoctorByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	from, to := u.allocator.DayBounds(date)
	appointments, err := u.appointmentRepo.FindActiveByDoctorBetween(ctx, doctor.ID, from, to)
	if err != nil {
		u.log.Warnf("Failed to find appointments of doctor %s: %+v", doctor.ID, err)
		return nil, err
	}

	booked := make([]time.Time, 0, len(appointments))
	for _, a := range appointments {
		booked = append(booked, a.AppointmentTime)
	}

	slots := u.allocator.Available(date, booked)
	rendered := make([]string, 0, len(slots))
	for _, slot := range slots {
		rendered = append(rendered, u.allocator.Format(slot))
	}
	return rendered, nil
}

func (u *appointmentUsecase) MyAppointment(ctx context.Context, identity entity.Identity) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindNextBookedByPatient(ctx, identity.UserID, u.now())
	if err != nil {
		u.log.Warnf("Failed to find next appointment of %s: %+v", identity.UserID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNoUpcomingAppointment
	}
	return converter.AppointmentToResponse(appointment, u.allocator.Location()), nil
}
