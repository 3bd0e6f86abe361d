package converter

import (
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
)

// PatientToDoctorResponse converts a patient (with rays preloaded) into the
// doctor's patient list entry. status is the doctor's label for the patient.
func PatientToDoctorResponse(patient *entity.User, status entity.PatientStatusValue) dto.DoctorPatientResponse {
	return dto.DoctorPatientResponse{
		ID:               patient.ID,
		Name:             patient.Name,
		Email:            patient.Email,
		Age:              patient.Age,
		Gender:           patient.Gender,
		PhoneNumber:      patient.PhoneNumber,
		MedicalCondition: patient.MedicalCondition,
		Status:           string(status),
		Rays:             RaysToResponse(patient.Rays),
	}
}

func NoteToResponse(note *entity.MedicalNote) *dto.NoteResponse {
	if note == nil {
		return nil
	}

	return &dto.NoteResponse{
		ID:        note.ID,
		DoctorID:  note.DoctorID,
		PatientID: note.PatientID,
		RayID:     note.RayID,
		Note:      note.Note,
		Ray:       RayToResponse(note.Ray),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func NotesToResponse(notes []entity.MedicalNote) []dto.NoteResponse {
	responses := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		responses = append(responses, *NoteToResponse(&notes[i]))
	}
	return responses
}

func PatientStatusToResponse(status *entity.PatientStatus) *dto.PatientStatusResponse {
	if status == nil {
		return nil
	}

	return &dto.PatientStatusResponse{
		PatientID: status.PatientID,
		Status:    string(status.Status),
		UpdatedAt: status.UpdatedAt,
	}
}
