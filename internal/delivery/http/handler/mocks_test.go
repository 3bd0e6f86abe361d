package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/delivery/http/middleware"
	"medray-api/internal/domain/entity"
	"medray-api/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ---- Usecase mocks ----

type mockAuthUsecase struct{ mock.Mock }

func (m *mockAuthUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.RegisterResponse)
	return res, args.Error(1)
}

func (m *mockAuthUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.LoginResponse)
	return res, args.Error(1)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, identity entity.Identity, accessTokenID string, req *dto.LogoutRequest) error {
	return m.Called(ctx, identity, accessTokenID, req).Error(0)
}

func (m *mockAuthUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.TokenResponse)
	return res, args.Error(1)
}

func (m *mockAuthUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ResetCodeSentResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.ResetCodeSentResponse)
	return res, args.Error(1)
}

func (m *mockAuthUsecase) VerifyResetCode(ctx context.Context, req *dto.VerifyResetCodeRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthUsecase) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockAppointmentUsecase struct{ mock.Mock }

func (m *mockAppointmentUsecase) Book(ctx context.Context, identity entity.Identity, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, identity, req)
	res, _ := args.Get(0).(*dto.AppointmentResponse)
	return res, args.Error(1)
}

func (m *mockAppointmentUsecase) AvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) ([]string, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).([]string)
	return res, args.Error(1)
}

func (m *mockAppointmentUsecase) MyAppointment(ctx context.Context, identity entity.Identity) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, identity)
	res, _ := args.Get(0).(*dto.AppointmentResponse)
	return res, args.Error(1)
}

type mockRayUsecase struct{ mock.Mock }

func (m *mockRayUsecase) Upload(ctx context.Context, identity entity.Identity, req *dto.UploadRayRequest) (*dto.RayResponse, error) {
	args := m.Called(ctx, identity, req)
	res, _ := args.Get(0).(*dto.RayResponse)
	return res, args.Error(1)
}

func (m *mockRayUsecase) List(ctx context.Context, identity entity.Identity) ([]dto.RayResponse, error) {
	args := m.Called(ctx, identity)
	res, _ := args.Get(0).([]dto.RayResponse)
	return res, args.Error(1)
}

func (m *mockRayUsecase) Get(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayResponse, error) {
	args := m.Called(ctx, identity, rayID)
	res, _ := args.Get(0).(*dto.RayResponse)
	return res, args.Error(1)
}

func (m *mockRayUsecase) Image(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error) {
	args := m.Called(ctx, identity, rayID)
	res, _ := args.Get(0).(*dto.RayImage)
	return res, args.Error(1)
}

func (m *mockRayUsecase) Delete(ctx context.Context, identity entity.Identity, rayID uuid.UUID) error {
	return m.Called(ctx, identity, rayID).Error(0)
}

func (m *mockRayUsecase) Analyze(ctx context.Context, ray *entity.Ray) error {
	return m.Called(ctx, ray).Error(0)
}

type mockDoctorUsecase struct{ mock.Mock }

func (m *mockDoctorUsecase) ListPatients(ctx context.Context, identity entity.Identity) ([]dto.DoctorPatientResponse, error) {
	args := m.Called(ctx, identity)
	res, _ := args.Get(0).([]dto.DoctorPatientResponse)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) CreateNote(ctx context.Context, identity entity.Identity, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	args := m.Called(ctx, identity, req)
	res, _ := args.Get(0).(*dto.NoteResponse)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) UpdateNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	args := m.Called(ctx, identity, noteID, req)
	res, _ := args.Get(0).(*dto.NoteResponse)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) DeleteNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID) error {
	return m.Called(ctx, identity, noteID).Error(0)
}

func (m *mockDoctorUsecase) PatientNotes(ctx context.Context, identity entity.Identity, patientID uuid.UUID) ([]dto.NoteResponse, error) {
	args := m.Called(ctx, identity, patientID)
	res, _ := args.Get(0).([]dto.NoteResponse)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) RayAI(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayAIResponse, error) {
	args := m.Called(ctx, identity, rayID)
	res, _ := args.Get(0).(*dto.RayAIResponse)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) RayImage(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error) {
	args := m.Called(ctx, identity, rayID)
	res, _ := args.Get(0).(*dto.RayImage)
	return res, args.Error(1)
}

func (m *mockDoctorUsecase) SetPatientStatus(ctx context.Context, identity entity.Identity, req *dto.SetPatientStatusRequest) (*dto.PatientStatusResponse, error) {
	args := m.Called(ctx, identity, req)
	res, _ := args.Get(0).(*dto.PatientStatusResponse)
	return res, args.Error(1)
}

// ---- Helpers ----

var (
	patient = entity.Identity{UserID: uuid.MustParse("8f14e45f-ceea-467f-a0e6-1d5b1c9c1a01"), Email: "pat@example.com", Role: entity.RolePatient}
	doctor  = entity.Identity{UserID: uuid.MustParse("c9f0f895-fb98-4b91-a5f5-8c3c6d7e2b02"), Email: "doc@example.com", Role: entity.RoleDoctor}
)

// serve routes req through a mux router so path variables resolve.
func serve(t *testing.T, pattern, method string, h http.HandlerFunc, req *http.Request, identity *entity.Identity) *httptest.ResponseRecorder {
	t.Helper()
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *identity, "token-id"))
	}
	router := mux.NewRouter()
	router.HandleFunc(pattern, h).Methods(method)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
