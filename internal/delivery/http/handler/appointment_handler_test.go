package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/usecase"
	"medray-api/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const doctorIDParam = "c9f0f895-fb98-4b91-a5f5-8c3c6d7e2b02"

func TestAppointmentHandler_Book(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		want    int
		message string
	}{
		{"created", `{"doctor_id":"` + doctorIDParam + `","appointment_time":"2030-01-02 10:00:00"}`, nil, http.StatusCreated, "Appointment booked successfully"},
		{"slot taken", `{"doctor_id":"` + doctorIDParam + `","appointment_time":"2030-01-02 10:00:00"}`, usecase.ErrSlotTaken, http.StatusConflict, "This time slot is already booked"},
		{"unknown doctor", `{"doctor_id":"` + doctorIDParam + `","appointment_time":"2030-01-02 10:00:00"}`, usecase.ErrDoctorNotFound, http.StatusNotFound, "Doctor not found"},
		{"in the past", `{"doctor_id":"` + doctorIDParam + `","appointment_time":"2020-01-02 10:00:00"}`, usecase.ErrAppointmentInPast, http.StatusUnprocessableEntity, "Validation failed"},
		{"bad format", `{"doctor_id":"` + doctorIDParam + `","appointment_time":"2030-01-02T10:00"}`, nil, http.StatusUnprocessableEntity, "Validation failed"},
		{"bad json", `{`, nil, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockAppointmentUsecase)
			uc.On("Book", mock.Anything, patient, mock.AnythingOfType("*dto.CreateAppointmentRequest")).
				Return(&dto.AppointmentResponse{AppointmentTime: "2030-01-02 10:00:00"}, tt.err).Maybe()
			h := NewAppointmentHandler(uc, validator.NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(tt.body))
			rec := serve(t, "/appointments", http.MethodPost, h.Book, req, &patient)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec).Message)
		})
	}
}

func TestAppointmentHandler_Book_RequiresIdentity(t *testing.T) {
	h := NewAppointmentHandler(new(mockAppointmentUsecase), validator.NewValidator())
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(`{}`))

	rec := serve(t, "/appointments", http.MethodPost, h.Book, req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppointmentHandler_AvailableSlots(t *testing.T) {
	uc := new(mockAppointmentUsecase)
	uc.On("AvailableSlots", mock.Anything, &dto.AvailableSlotsRequest{DoctorID: doctorIDParam, Date: "2030-01-02"}).
		Return([]string{"2030-01-02 09:00:00", "2030-01-02 09:30:00"}, nil)
	h := NewAppointmentHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/appointments/available?doctor_id="+doctorIDParam+"&date=2030-01-02", nil)
	rec := serve(t, "/appointments/available", http.MethodGet, h.AvailableSlots, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"2030-01-02 09:00:00", "2030-01-02 09:30:00"}, decodeBody(t, rec).Data)
}

func TestAppointmentHandler_AvailableSlots_FullDay(t *testing.T) {
	uc := new(mockAppointmentUsecase)
	uc.On("AvailableSlots", mock.Anything, mock.Anything).Return([]string{}, nil)
	h := NewAppointmentHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/appointments/available?doctor_id="+doctorIDParam+"&date=2030-01-02", nil)
	rec := serve(t, "/appointments/available", http.MethodGet, h.AvailableSlots, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Available slots retrieved successfully","data":[]}`, rec.Body.String())
}

func TestAppointmentHandler_AvailableSlots_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
		field string
	}{
		{"missing doctor", "?date=2030-01-02", nil, "doctor_id"},
		{"bad date", "?doctor_id=" + doctorIDParam + "&date=02-01-2030", nil, "date"},
		{"date in past", "?doctor_id=" + doctorIDParam + "&date=2020-01-02", usecase.ErrDateInPast, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockAppointmentUsecase)
			uc.On("AvailableSlots", mock.Anything, mock.Anything).Return(nil, tt.err).Maybe()
			h := NewAppointmentHandler(uc, validator.NewValidator())

			req := httptest.NewRequest(http.MethodGet, "/appointments/available"+tt.query, nil)
			rec := serve(t, "/appointments/available", http.MethodGet, h.AvailableSlots, req, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			fields, ok := decodeBody(t, rec).Error.(map[string]interface{})
			if assert.True(t, ok) {
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestAppointmentHandler_MyAppointment_None(t *testing.T) {
	uc := new(mockAppointmentUsecase)
	uc.On("MyAppointment", mock.Anything, patient).Return(nil, usecase.ErrNoUpcomingAppointment)
	h := NewAppointmentHandler(uc, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/appointments/my", nil)
	rec := serve(t, "/appointments/my", http.MethodGet, h.MyAppointment, req, &patient)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
