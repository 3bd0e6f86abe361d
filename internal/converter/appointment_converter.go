package converter

import (
	"time"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
)

// AppointmentToResponse renders the appointment time as wall-clock time in loc.
func AppointmentToResponse(appointment *entity.Appointment, loc *time.Location) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		AppointmentTime: appointment.AppointmentTime.In(loc).Format("2006-01-02 15:04:05"),
		Status:          string(appointment.Status),
		Doctor:          DoctorToResponse(appointment.Doctor),
		CreatedAt:       appointment.CreatedAt,
	}
}
