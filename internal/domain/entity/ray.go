package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiagnosisLabel is the classifier verdict stored in ai_status
type DiagnosisLabel string

const (
	DiagnosisNormal       DiagnosisLabel = "Normal"
	DiagnosisCardiomegaly DiagnosisLabel = "Cardiomegaly"
	DiagnosisPneumonia    DiagnosisLabel = "Pneumonia"
)

// AnalysisState tracks the second (classification) phase of an upload.
type AnalysisState string

const (
	AnalysisPending AnalysisState = "pending"
	AnalysisDone    AnalysisState = "done"
	AnalysisFailed  AnalysisState = "failed"
)

// Ray is an uploaded chest X-ray with optional vitals and the AI verdict.
// The AI fields stay empty until the analysis update lands.
type Ray struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	ImagePath     string              `gorm:"type:varchar(255);not null" json:"image_path"`
	OriginalName  string              `gorm:"type:varchar(255)" json:"original_name"`
	ContentType   string              `gorm:"type:varchar(50)" json:"content_type"`
	SizeBytes     int64               `gorm:"not null;default:0" json:"size_bytes"`
	Temperature   decimal.NullDecimal `gorm:"type:decimal(4,1)" json:"temperature"`
	SystolicBP    *int                `gorm:"column:systolic_bp" json:"systolic_bp"`
	HeartRate     *int                `json:"heart_rate"`
	HasCough      bool                `gorm:"not null;default:false" json:"has_cough"`
	HasHeadaches  bool                `gorm:"not null;default:false" json:"has_headaches"`
	CanSmellTaste bool                `gorm:"not null;default:true" json:"can_smell_taste"`

	AIStatus              *DiagnosisLabel `gorm:"type:varchar(20)" json:"ai_status"`
	AISummary             *string         `gorm:"type:text" json:"ai_summary"`
	AIConfidence          *int            `json:"ai_confidence"`
	DifferentialDiagnosis JSON            `gorm:"type:jsonb" json:"differential_diagnosis"`

	AnalysisState    AnalysisState `gorm:"type:varchar(10);not null;default:'pending';index" json:"analysis_state"`
	AnalysisAttempts int           `gorm:"not null;default:0" json:"analysis_attempts"`
	AnalyzedAt       *time.Time    `json:"analyzed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Ray) TableName() string {
	return "rays"
}

// RayAnalysis is the outcome of one classification attempt.
// Status and Confidence are nil when the attempt failed.
type RayAnalysis struct {
	Status       *DiagnosisLabel
	Summary      string
	Confidence   *int
	Differential JSON
	State        AnalysisState
}
