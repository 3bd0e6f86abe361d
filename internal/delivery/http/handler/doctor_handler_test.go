package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/usecase"
	"medray-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDoctorHandler_ListPatients_NotDoctor(t *testing.T) {
	uc := new(mockDoctorUsecase)
	uc.On("ListPatients", mock.Anything, patient).Return(nil, usecase.ErrNotDoctor)
	h := NewDoctorHandler(uc, validator.NewValidator())

	rec := serve(t, "/doctor/patients", http.MethodGet, h.ListPatients, httptest.NewRequest(http.MethodGet, "/doctor/patients", nil), &patient)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDoctorHandler_CreateNote(t *testing.T) {
	patientID := uuid.New()
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"created", `{"patient_id":"` + patientID.String() + `","note":"Follow up in two weeks"}`, nil, http.StatusCreated},
		{"unknown patient", `{"patient_id":"` + patientID.String() + `","note":"x"}`, usecase.ErrPatientNotFound, http.StatusNotFound},
		{"foreign ray", `{"patient_id":"` + patientID.String() + `","ray_id":"` + uuid.NewString() + `","note":"x"}`, usecase.ErrRayNotFound, http.StatusNotFound},
		{"missing note", `{"patient_id":"` + patientID.String() + `"}`, nil, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockDoctorUsecase)
			uc.On("CreateNote", mock.Anything, doctor, mock.Anything).
				Return(&dto.NoteResponse{PatientID: patientID}, tt.err).Maybe()
			h := NewDoctorHandler(uc, validator.NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/doctor/notes", strings.NewReader(tt.body))
			rec := serve(t, "/doctor/notes", http.MethodPost, h.CreateNote, req, &doctor)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDoctorHandler_UpdateNote_NotOwned(t *testing.T) {
	noteID := uuid.New()
	uc := new(mockDoctorUsecase)
	uc.On("UpdateNote", mock.Anything, doctor, noteID, &dto.UpdateNoteRequest{Note: "edited"}).Return(nil, usecase.ErrNoteNotFound)
	h := NewDoctorHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPut, "/doctor/notes/"+noteID.String(), strings.NewReader(`{"note":"edited"}`))
	rec := serve(t, "/doctor/notes/{id}", http.MethodPut, h.UpdateNote, req, &doctor)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", decodeBody(t, rec).Message)
}

func TestDoctorHandler_SetPatientStatus(t *testing.T) {
	patientID := uuid.New()
	uc := new(mockDoctorUsecase)
	uc.On("SetPatientStatus", mock.Anything, doctor, &dto.SetPatientStatusRequest{PatientID: patientID.String(), Status: "Critical"}).
		Return(&dto.PatientStatusResponse{PatientID: patientID, Status: "Critical"}, nil)
	h := NewDoctorHandler(uc, validator.NewValidator())

	body := `{"patient_id":"` + patientID.String() + `","status":"Critical"}`
	rec := serve(t, "/doctor/patients/status", http.MethodPost, h.SetPatientStatus,
		httptest.NewRequest(http.MethodPost, "/doctor/patients/status", strings.NewReader(body)), &doctor)
	assert.Equal(t, http.StatusOK, rec.Code)

	body = `{"patient_id":"` + patientID.String() + `","status":"Discharged"}`
	rec = serve(t, "/doctor/patients/status", http.MethodPost, h.SetPatientStatus,
		httptest.NewRequest(http.MethodPost, "/doctor/patients/status", strings.NewReader(body)), &doctor)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDoctorHandler_RayAI(t *testing.T) {
	rayID := uuid.New()
	summary := "Diagnosis: Pneumonia (Confidence: 87%) - Pneumonia detected in the chest X-ray."
	uc := new(mockDoctorUsecase)
	uc.On("RayAI", mock.Anything, doctor, rayID).Return(&dto.RayAIResponse{Ray: &dto.RayResponse{ID: rayID, AISummary: &summary}}, nil)
	h := NewDoctorHandler(uc, validator.NewValidator())

	rec := serve(t, "/doctor/rays/{id}/ai", http.MethodGet, h.RayAI, httptest.NewRequest(http.MethodGet, "/doctor/rays/"+rayID.String()+"/ai", nil), &doctor)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Confidence: 87%")
}
