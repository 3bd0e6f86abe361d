package usecase

import (
	"context"
	"io"
	"time"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// ---- Repository mocks ----

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindDoctorByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindDoctors(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

func (m *mockUserRepository) FindPatientsOfDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.User, error) {
	args := m.Called(ctx, doctorID)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

type mockAppointmentRepository struct{ mock.Mock }

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(ctx, id)
	appointment, _ := args.Get(0).(*entity.Appointment)
	return appointment, args.Error(1)
}

func (m *mockAppointmentRepository) FindActiveByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	args := m.Called(ctx, doctorID, from, to)
	appointments, _ := args.Get(0).([]entity.Appointment)
	return appointments, args.Error(1)
}

func (m *mockAppointmentRepository) FindNextBookedByPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*entity.Appointment, error) {
	args := m.Called(ctx, patientID, after)
	appointment, _ := args.Get(0).(*entity.Appointment)
	return appointment, args.Error(1)
}

type mockRayRepository struct{ mock.Mock }

func (m *mockRayRepository) Create(ctx context.Context, ray *entity.Ray) error {
	return m.Called(ctx, ray).Error(0)
}

func (m *mockRayRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ray, error) {
	args := m.Called(ctx, id)
	ray, _ := args.Get(0).(*entity.Ray)
	return ray, args.Error(1)
}

func (m *mockRayRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Ray, error) {
	args := m.Called(ctx, id, ownerID)
	ray, _ := args.Get(0).(*entity.Ray)
	return ray, args.Error(1)
}

func (m *mockRayRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Ray, error) {
	args := m.Called(ctx, ownerID)
	rays, _ := args.Get(0).([]entity.Ray)
	return rays, args.Error(1)
}

func (m *mockRayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRayRepository) ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis entity.RayAnalysis, analyzedAt time.Time) (int64, error) {
	args := m.Called(ctx, id, analysis, analyzedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRayRepository) FindRetryable(ctx context.Context, pendingBefore time.Time, maxAttempts, limit int) ([]entity.Ray, error) {
	args := m.Called(ctx, pendingBefore, maxAttempts, limit)
	rays, _ := args.Get(0).([]entity.Ray)
	return rays, args.Error(1)
}

type mockMedicalNoteRepository struct{ mock.Mock }

func (m *mockMedicalNoteRepository) Create(ctx context.Context, note *entity.MedicalNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *mockMedicalNoteRepository) FindByIDAndDoctor(ctx context.Context, id, doctorID uuid.UUID) (*entity.MedicalNote, error) {
	args := m.Called(ctx, id, doctorID)
	note, _ := args.Get(0).(*entity.MedicalNote)
	return note, args.Error(1)
}

func (m *mockMedicalNoteRepository) FindByDoctorAndPatient(ctx context.Context, doctorID, patientID uuid.UUID) ([]entity.MedicalNote, error) {
	args := m.Called(ctx, doctorID, patientID)
	notes, _ := args.Get(0).([]entity.MedicalNote)
	return notes, args.Error(1)
}

func (m *mockMedicalNoteRepository) UpdateText(ctx context.Context, id, doctorID uuid.UUID, text string) (int64, error) {
	args := m.Called(ctx, id, doctorID, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMedicalNoteRepository) Delete(ctx context.Context, id, doctorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, doctorID)
	return args.Get(0).(int64), args.Error(1)
}

type mockPatientStatusRepository struct{ mock.Mock }

func (m *mockPatientStatusRepository) Upsert(ctx context.Context, status *entity.PatientStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *mockPatientStatusRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID, patientIDs []uuid.UUID) ([]entity.PatientStatus, error) {
	args := m.Called(ctx, doctorID, patientIDs)
	statuses, _ := args.Get(0).([]entity.PatientStatus)
	return statuses, args.Error(1)
}

// ---- Service mocks ----

// mockAuditService accepts every call; tests assert on it only when the
// audit trail is the behaviour under test.
type mockAuditService struct{ mock.Mock }

func newMockAuditService() *mockAuditService {
	m := new(mockAuditService)
	m.On("LogCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *mockAuditService) LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return m.Called(ctx, userID, action, entityName, entityID, newValue).Error(0)
}

func (m *mockAuditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return m.Called(ctx, userID, action, entityName, entityID, oldValue, newValue).Error(0)
}

func (m *mockAuditService) LogDelete(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error {
	return m.Called(ctx, userID, action, entityName, entityID, oldValue).Error(0)
}

func (m *mockAuditService) LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) error {
	return m.Called(ctx, userID, action, metadata).Error(0)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Probe(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockClassifier) Classify(ctx context.Context, fileName string, image []byte) ([]byte, error) {
	args := m.Called(ctx, fileName, image)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

// ---- Helpers ----

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func patientIdentity() entity.Identity {
	return entity.Identity{UserID: uuid.New(), Email: "patient@example.com", Role: entity.RolePatient}
}

func doctorIdentity() entity.Identity {
	return entity.Identity{UserID: uuid.New(), Email: "doctor@example.com", Role: entity.RoleDoctor}
}
