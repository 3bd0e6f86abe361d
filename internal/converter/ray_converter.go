package converter

import (
	"fmt"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
)

const rayImageURLFormat = "/api/v1/rays/%s/image"

func RayToResponse(ray *entity.Ray) *dto.RayResponse {
	if ray == nil {
		return nil
	}

	response := &dto.RayResponse{
		ID:               ray.ID,
		UserID:           ray.UserID,
		ImageURL:         fmt.Sprintf(rayImageURLFormat, ray.ID),
		OriginalName:     ray.OriginalName,
		ContentType:      ray.ContentType,
		SizeBytes:        ray.SizeBytes,
		SystolicBP:       ray.SystolicBP,
		HeartRate:        ray.HeartRate,
		HasCough:         ray.HasCough,
		HasHeadaches:     ray.HasHeadaches,
		CanSmellTaste:    ray.CanSmellTaste,
		AISummary:        ray.AISummary,
		AIConfidence:     ray.AIConfidence,
		AnalysisState:    string(ray.AnalysisState),
		AnalysisAttempts: ray.AnalysisAttempts,
		AnalyzedAt:       ray.AnalyzedAt,
		CreatedAt:        ray.CreatedAt,
		UpdatedAt:        ray.UpdatedAt,
	}

	if ray.Temperature.Valid {
		temperature := ray.Temperature.Decimal.InexactFloat64()
		response.Temperature = &temperature
	}
	if ray.AIStatus != nil {
		status := string(*ray.AIStatus)
		response.AIStatus = &status
	}
	if len(ray.DifferentialDiagnosis) > 0 {
		response.DifferentialDiagnosis = ray.DifferentialDiagnosis
	}

	return response
}

func RaysToResponse(rays []entity.Ray) []dto.RayResponse {
	responses := make([]dto.RayResponse, 0, len(rays))
	for i := range rays {
		responses = append(responses, *RayToResponse(&rays[i]))
	}
	return responses
}
