package converter

import (
	"testing"
	"time"

	"medray-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayToResponse(t *testing.T) {
	id := uuid.MustParse("0b7e1d2c-4a36-4a0e-9f7c-6e2f7a9d1c55")
	label := entity.DiagnosisPneumonia
	confidence := 87
	ray := &entity.Ray{
		ID:                    id,
		Temperature:           decimal.NewNullDecimal(decimal.RequireFromString("38.5")),
		AIStatus:              &label,
		AIConfidence:          &confidence,
		DifferentialDiagnosis: entity.JSON{"Cardiomegaly": 0.1},
		AnalysisState:         entity.AnalysisDone,
	}

	response := RayToResponse(ray)

	require.NotNil(t, response.Temperature)
	assert.Equal(t, 38.5, *response.Temperature)
	assert.Equal(t, "Pneumonia", *response.AIStatus)
	assert.Equal(t, "/api/v1/rays/0b7e1d2c-4a36-4a0e-9f7c-6e2f7a9d1c55/image", response.ImageURL)
	assert.Equal(t, "done", response.AnalysisState)
	assert.Equal(t, 0.1, response.DifferentialDiagnosis["Cardiomegaly"])
}

func TestRayToResponse_EmptyVitals(t *testing.T) {
	response := RayToResponse(&entity.Ray{AnalysisState: entity.AnalysisPending})

	assert.Nil(t, response.Temperature)
	assert.Nil(t, response.AIStatus)
	assert.Nil(t, response.DifferentialDiagnosis)
	assert.Nil(t, RayToResponse(nil))
}

func TestAppointmentToResponse_UsesClinicLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	appointment := &entity.Appointment{
		AppointmentTime: time.Date(2030, 3, 4, 2, 30, 0, 0, time.UTC),
		Status:          entity.AppointmentStatusBooked,
		Doctor:          &entity.User{Name: "Dr. House"},
	}

	response := AppointmentToResponse(appointment, jakarta)

	assert.Equal(t, "2030-03-04 09:30:00", response.AppointmentTime)
	assert.Equal(t, "booked", response.Status)
	assert.Equal(t, "Dr. House", response.Doctor.Name)
}

func TestPatientToDoctorResponse(t *testing.T) {
	patient := &entity.User{Name: "Jane", Rays: []entity.Ray{{AnalysisState: entity.AnalysisFailed}}}

	response := PatientToDoctorResponse(patient, entity.PatientStatusCritical)

	assert.Equal(t, "Critical", response.Status)
	require.Len(t, response.Rays, 1)
	assert.Equal(t, "failed", response.Rays[0].AnalysisState)
}
