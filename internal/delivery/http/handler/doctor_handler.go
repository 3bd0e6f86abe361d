package handler

import (
	"errors"
	"net/http"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/usecase"
	"medray-api/pkg/response"
	"medray-api/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// ListPatients returns the doctor's patients with their rays and status
// @Summary List patients
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/patients [get]
func (h *DoctorHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	patients, err := h.doctorUsecase.ListPatients(r.Context(), identity)
	if err != nil {
		h.writeError(w, err, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// @Summary Add a medical note
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateNoteRequest true "Create Note Request"
// @Success 201 {object} response.Response
// @Router /doctor/notes [post]
func (h *DoctorHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.CreateNoteRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	note, err := h.doctorUsecase.CreateNote(r.Context(), identity, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create note")
		return
	}

	response.Created(w, "Note created successfully", note)
}

// @Summary Update a medical note
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body dto.UpdateNoteRequest true "Update Note Request"
// @Success 200 {object} response.Response
// @Router /doctor/notes/{id} [put]
func (h *DoctorHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "id", "note")
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	note, err := h.doctorUsecase.UpdateNote(r.Context(), identity, noteID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update note")
		return
	}

	response.Success(w, http.StatusOK, "Note updated successfully", note)
}

// @Summary Delete a medical note
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Response
// @Router /doctor/notes/{id} [delete]
func (h *DoctorHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "id", "note")
	if !ok {
		return
	}

	if err := h.doctorUsecase.DeleteNote(r.Context(), identity, noteID); err != nil {
		h.writeError(w, err, "Failed to delete note")
		return
	}

	response.Success(w, http.StatusOK, "Note deleted successfully", nil)
}

// @Summary Notes the doctor wrote about a patient
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /doctor/patients/{id}/notes [get]
func (h *DoctorHandler) PatientNotes(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	patientID, ok := pathID(w, r, "id", "patient")
	if !ok {
		return
	}

	notes, err := h.doctorUsecase.PatientNotes(r.Context(), identity, patientID)
	if err != nil {
		h.writeError(w, err, "Failed to get notes")
		return
	}

	response.Success(w, http.StatusOK, "Notes retrieved successfully", notes)
}

// @Summary AI analysis of a ray
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ray ID"
// @Success 200 {object} response.Response
// @Router /doctor/rays/{id}/ai [get]
func (h *DoctorHandler) RayAI(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	rayID, ok := pathID(w, r, "id", "ray")
	if !ok {
		return
	}

	result, err := h.doctorUsecase.RayAI(r.Context(), identity, rayID)
	if err != nil {
		h.writeError(w, err, "Failed to get ray analysis")
		return
	}

	response.Success(w, http.StatusOK, "Ray analysis retrieved successfully", result)
}

// @Summary Image of a patient's ray
// @Tags Doctor
// @Security BearerAuth
// @Produce image/jpeg,image/png
// @Param id path string true "Ray ID"
// @Router /doctor/rays/{id}/image [get]
func (h *DoctorHandler) RayImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	rayID, ok := pathID(w, r, "id", "ray")
	if !ok {
		return
	}

	image, err := h.doctorUsecase.RayImage(r.Context(), identity, rayID)
	if err != nil {
		h.writeError(w, err, "Failed to get ray image")
		return
	}

	writeImage(w, image)
}

// @Summary Set a patient's status
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SetPatientStatusRequest true "Set Patient Status Request"
// @Success 200 {object} response.Response
// @Router /doctor/patients/status [post]
func (h *DoctorHandler) SetPatientStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.SetPatientStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	status, err := h.doctorUsecase.SetPatientStatus(r.Context(), identity, &req)
	if err != nil {
		h.writeError(w, err, "Failed to set patient status")
		return
	}

	response.Success(w, http.StatusOK, "Patient status updated successfully", status)
}

func (h *DoctorHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrNotDoctor):
		response.Forbidden(w, "Only doctors can access this resource")
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	case errors.Is(err, usecase.ErrNoteNotFound):
		response.NotFound(w, "Note not found")
	case errors.Is(err, usecase.ErrRayNotFound):
		response.NotFound(w, "Ray not found")
	case errors.Is(err, usecase.ErrRayImageMissing):
		response.NotFound(w, "Ray image not found")
	default:
		response.InternalServerError(w, fallback)
	}
}
