package service

import (
	"encoding/json"
	"fmt"
	"math"

	"medray-api/internal/domain/entity"

	"github.com/spf13/cast"
)

const (
	summaryInvalidFormat = "AI analysis failed - invalid response format"
	findingPneumonia     = "Pneumonia detected in the chest X-ray."
	findingClear         = "No pneumonia detected in the chest X-ray."
)

// DiagnoseResponse maps a 2xx classifier body onto a ray analysis.
// Anything other than a non-empty JSON object is a failed analysis.
func DiagnoseResponse(body []byte) entity.RayAnalysis {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return failedAnalysis(summaryInvalidFormat)
	}

	label := entity.DiagnosisNormal
	finding := findingClear
	if cast.ToBool(payload["has_pneumonia"]) {
		label = entity.DiagnosisPneumonia
		finding = findingPneumonia
	}

	percent := ConfidencePercent(payload["confidence"])

	analysis := entity.RayAnalysis{
		Status:     &label,
		Summary:    fmt.Sprintf("Diagnosis: %s (Confidence: %d%%) - %s", label, percent, finding),
		Confidence: &percent,
		State:      entity.AnalysisDone,
	}
	if differential, ok := payload["differential_diagnosis"].(map[string]interface{}); ok {
		analysis.Differential = entity.JSON(differential)
	}
	return analysis
}

// DiagnoseRejected is the analysis for a non-2xx classifier reply.
func DiagnoseRejected(statusCode int) entity.RayAnalysis {
	return failedAnalysis(fmt.Sprintf("AI analysis failed - classifier returned status %d", statusCode))
}

// DiagnoseUnavailable is the analysis for a classifier that could not be reached.
func DiagnoseUnavailable(err error) entity.RayAnalysis {
	return failedAnalysis(fmt.Sprintf("AI service temporarily unavailable - %v", err))
}

// ConfidencePercent clamps a raw confidence to [0,1] and scales it to a whole
// percentage. Values that are not numeric count as zero.
func ConfidencePercent(raw interface{}) int {
	if _, isBool := raw.(bool); isBool {
		return 0
	}
	conf, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(conf) {
		return 0
	}
	conf = math.Max(0, math.Min(1, conf))
	return int(math.Round(conf * 100))
}

func failedAnalysis(summary string) entity.RayAnalysis {
	return entity.RayAnalysis{
		Summary: summary,
		State:   entity.AnalysisFailed,
	}
}
