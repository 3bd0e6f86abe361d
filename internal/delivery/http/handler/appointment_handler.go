package handler

import (
	"errors"
	"net/http"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/usecase"
	"medray-api/pkg/response"
	"medray-api/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// Book creates an appointment at an exact time
// @Summary Book an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Create Appointment Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), identity, &req)
	if err != nil {
		h.writeError(w, err, "Failed to book appointment")
		return
	}

	response.Created(w, "Appointment booked successfully", appointment)
}

// AvailableSlots lists the free slots of a doctor on a date
// @Summary Available appointment slots
// @Tags Appointments
// @Produce json
// @Param doctor_id query string true "Doctor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments/available [get]
func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := dto.AvailableSlotsRequest{
		DoctorID: query.Get("doctor_id"),
		Date:     query.Get("date"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slots, err := h.appointmentUsecase.AvailableSlots(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

// MyAppointment returns the caller's next booked appointment
// @Summary Next appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/my [get]
func (h *AppointmentHandler) MyAppointment(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.MyAppointment(r.Context(), identity)
	if err != nil {
		h.writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrNoUpcomingAppointment):
		response.NotFound(w, "No upcoming appointment found")
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Conflict(w, "This time slot is already booked")
	case errors.Is(err, usecase.ErrInvalidAppointmentTime), errors.Is(err, usecase.ErrAppointmentInPast):
		fieldError(w, "appointment_time", err)
	case errors.Is(err, usecase.ErrCannotBookWithYourself):
		fieldError(w, "doctor_id", err)
	case errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrDateInPast):
		fieldError(w, "date", err)
	default:
		response.InternalServerError(w, fallback)
	}
}
