package model

import "time"

// ConditionScore is the aggregated 0-100 paint/surface condition
type ConditionScore struct {
	Score       int    `json:"score" bson:"score"`
	Description string `json:"description" bson:"description"`
}

// WorkItem is one line of a labor estimate breakdown
type WorkItem struct {
	Task  string `json:"task" bson:"task"`
	Hours string `json:"hours" bson:"hours"`
}

// WorkEstimate maps findings to a labor-hour range
type WorkEstimate struct {
	MinHours  float64    `json:"minHours" bson:"minHours"`
	MaxHours  float64    `json:"maxHours" bson:"maxHours"`
	Breakdown []WorkItem `json:"breakdown" bson:"breakdown"`
}

// SurfaceAnalysisRequest asks for a paint/surface evaluation.
// At least one of Text or ImageURLs must be present.
type SurfaceAnalysisRequest struct {
	TenantID         string   `json:"tenantId,omitempty"`
	Text             string   `json:"text,omitempty"`
	ImageURLs        []string `json:"imageUrls,omitempty"`
	IncludeEstimates bool     `json:"includeEstimates,omitempty"`
}

// SurfaceAnalysisResponse is the composed surface evaluation result
type SurfaceAnalysisResponse struct {
	AnalysisID        string          `json:"analysisId" bson:"analysisId"`
	Summary           string          `json:"summary" bson:"summary"`
	RecommendedAction string          `json:"recommendedAction" bson:"recommendedAction"`
	TextAnalysis      *TextAnalysis   `json:"textAnalysis,omitempty" bson:"textAnalysis,omitempty"`
	ImageAnalyses     []ImageAnalysis `json:"imageAnalyses,omitempty" bson:"imageAnalyses,omitempty"`
	PaintCondition    *ConditionScore `json:"paintCondition,omitempty" bson:"paintCondition,omitempty"`
	WorkEstimate      *WorkEstimate   `json:"workEstimate,omitempty" bson:"workEstimate,omitempty"`
	Degraded          bool            `json:"degraded,omitempty" bson:"degraded,omitempty"`
	SkippedInputs     []string        `json:"skippedInputs,omitempty" bson:"skippedInputs,omitempty"`
	AnalyzedAt        time.Time       `json:"analyzedAt" bson:"analyzedAt"`
}

// TyreAnalysisRequest asks for a tyre evaluation
type TyreAnalysisRequest struct {
	TenantID     string                    `json:"tenantId,omitempty"`
	Season       string                    `json:"season"`
	Measurements []TyrePositionMeasurement `json:"measurements"`
}

// InspectionRequest is a combined inspection carrying surface and/or
// tyre fragments in one call
type InspectionRequest struct {
	TenantID string                  `json:"tenantId,omitempty"`
	Surface  *SurfaceAnalysisRequest `json:"surface,omitempty"`
	Tyres    *TyreAnalysisRequest    `json:"tyres,omitempty"`
}

// InspectionResponse composes both result fragments
type InspectionResponse struct {
	AnalysisID string                   `json:"analysisId"`
	Surface    *SurfaceAnalysisResponse `json:"surface,omitempty"`
	Tyres      *TyreAssessment          `json:"tyres,omitempty"`
	AnalyzedAt time.Time                `json:"analyzedAt"`
}

// AnalysisKind distinguishes stored analysis records
type AnalysisKind string

const (
	AnalysisKindSurface    AnalysisKind = "surface"
	AnalysisKindTyre       AnalysisKind = "tyre"
	AnalysisKindInspection AnalysisKind = "inspection"
)

// AnalysisRecord is the persisted audit trail entry for one evaluation.
// The engine itself never reads these back; they feed certificates and
// the tenant dashboard.
type AnalysisRecord struct {
	ID         string                   `json:"id" bson:"_id,omitempty"`
	AnalysisID string                   `json:"analysisId" bson:"analysisId"`
	TenantID   string                   `json:"tenantId" bson:"tenantId"`
	Kind       AnalysisKind             `json:"kind" bson:"kind"`
	Surface    *SurfaceAnalysisResponse `json:"surface,omitempty" bson:"surface,omitempty"`
	Tyres      *TyreAssessment          `json:"tyres,omitempty" bson:"tyres,omitempty"`
	CreatedAt  time.Time                `json:"createdAt" bson:"createdAt"`
}
