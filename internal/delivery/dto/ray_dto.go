package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadRayRequest is assembled from a multipart form. Vitals are optional.
type UploadRayRequest struct {
	FileName      string   `form:"image"`
	Image         []byte   `form:"-"`
	Temperature   *float64 `form:"temperature" validate:"omitempty,gte=30,lte=45"`
	SystolicBP    *int     `form:"systolic_bp" validate:"omitempty,gte=70,lte=200"`
	HeartRate     *int     `form:"heart_rate" validate:"omitempty,gte=40,lte=200"`
	HasCough      bool     `form:"has_cough"`
	HasHeadaches  bool     `form:"has_headaches"`
	CanSmellTaste *bool    `form:"can_smell_taste"`
}

type RayResponse struct {
	ID                    uuid.UUID              `json:"id"`
	UserID                uuid.UUID              `json:"user_id"`
	ImageURL              string                 `json:"image_url"`
	OriginalName          string                 `json:"original_name"`
	ContentType           string                 `json:"content_type"`
	SizeBytes             int64                  `json:"size_bytes"`
	Temperature           *float64               `json:"temperature"`
	SystolicBP            *int                   `json:"systolic_bp"`
	HeartRate             *int                   `json:"heart_rate"`
	HasCough              bool                   `json:"has_cough"`
	HasHeadaches          bool                   `json:"has_headaches"`
	CanSmellTaste         bool                   `json:"can_smell_taste"`
	AIStatus              *string                `json:"ai_status"`
	AISummary             *string                `json:"ai_summary"`
	AIConfidence          *int                   `json:"ai_confidence"`
	DifferentialDiagnosis map[string]interface{} `json:"differential_diagnosis,omitempty"`
	AnalysisState         string                 `json:"analysis_state"`
	AnalysisAttempts      int                    `json:"analysis_attempts"`
	AnalyzedAt            *time.Time             `json:"analyzed_at"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// RayImage is the stored image of a ray, ready to be streamed.
type RayImage struct {
	ContentType string
	FileName    string
	Data        []byte
}
