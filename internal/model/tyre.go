package model

import "strings"

// TyrePosition identifies one wheel on the vehicle
type TyrePosition string

const (
	PositionFrontLeft  TyrePosition = "FL"
	PositionFrontRight TyrePosition = "FR"
	PositionRearLeft   TyrePosition = "RL"
	PositionRearRight  TyrePosition = "RR"
)

// AllTyrePositions lists the four positions in reporting order
var AllTyrePositions = []TyrePosition{
	PositionFrontLeft, PositionFrontRight, PositionRearLeft, PositionRearRight,
}

// ParseTyrePosition maps an input position onto the closed set
func ParseTyrePosition(s string) (TyrePosition, bool) {
	switch TyrePosition(strings.ToUpper(strings.TrimSpace(s))) {
	case PositionFrontLeft:
		return PositionFrontLeft, true
	case PositionFrontRight:
		return PositionFrontRight, true
	case PositionRearLeft:
		return PositionRearLeft, true
	case PositionRearRight:
		return PositionRearRight, true
	}
	return "", false
}

// WearPattern describes how tread wear is distributed across a tyre
type WearPattern string

const (
	WearUnknown WearPattern = ""
	WearEven    WearPattern = "even"
	WearCenter  WearPattern = "center"
	WearEdges   WearPattern = "edges"
	WearUneven  WearPattern = "uneven"
)

// ParseWearPattern maps an upstream wear pattern onto the closed set.
// Unknown values are reported as not-ok so the caller can log.
func ParseWearPattern(s string) (WearPattern, bool) {
	switch WearPattern(strings.ToLower(strings.TrimSpace(s))) {
	case WearEven:
		return WearEven, true
	case WearCenter, "centre":
		return WearCenter, true
	case WearEdges, "edge":
		return WearEdges, true
	case WearUneven:
		return WearUneven, true
	case WearUnknown:
		return WearUnknown, true
	}
	return WearUnknown, false
}

// Season selects which tenant thresholds apply to a tyre evaluation
type Season string

const (
	SeasonSummer    Season = "summer"
	SeasonWinter    Season = "winter"
	SeasonAllSeason Season = "allseason"
)

// ParseSeason maps an input season onto the closed set
func ParseSeason(s string) (Season, bool) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case SeasonSummer:
		return SeasonSummer, true
	case SeasonWinter:
		return SeasonWinter, true
	case SeasonAllSeason, "all_season", "all-season":
		return SeasonAllSeason, true
	}
	return "", false
}

// TyrePositionMeasurement is one wheel's measurement as supplied by the
// caller. Nil pointer fields mean the value was not measured.
type TyrePositionMeasurement struct {
	Position       TyrePosition `json:"position" bson:"position"`
	TreadDepthMm   *float64     `json:"tread_depth_mm" bson:"treadDepthMm"`
	WearPattern    WearPattern  `json:"wear_pattern,omitempty" bson:"wearPattern,omitempty"`
	DamageDetected bool         `json:"damage_detected" bson:"damageDetected"`
	ProductionYear *int         `json:"production_year,omitempty" bson:"productionYear,omitempty"`
	ProductionWeek *int         `json:"production_week,omitempty" bson:"productionWeek,omitempty"`
	Confidence     float64      `json:"confidence" bson:"confidence"`
}

// WearStatus is the per-position verdict
type WearStatus string

const (
	WearStatusGood        WearStatus = "good"
	WearStatusWorn        WearStatus = "worn"
	WearStatusBad         WearStatus = "bad"
	WearStatusNotMeasured WearStatus = "not_measured"
)

// TyreRecommendationLevel is the overall machine-checkable verdict
type TyreRecommendationLevel string

const (
	TyreRecommendOK          TyreRecommendationLevel = "ok"
	TyreRecommendMonitor     TyreRecommendationLevel = "monitor"
	TyreRecommendReplaceSoon TyreRecommendationLevel = "replace_soon"
	TyreRecommendReplaceNow  TyreRecommendationLevel = "replace_now"
)

// TyrePositionStatus is one wheel's assessed condition
type TyrePositionStatus struct {
	Position     TyrePosition `json:"position" bson:"position"`
	TreadDepthMm *float64     `json:"tread_depth_mm" bson:"treadDepthMm"`
	WearStatus   WearStatus   `json:"wear_status" bson:"wearStatus"`
	AgeYears     *int         `json:"age_years,omitempty" bson:"ageYears,omitempty"`
	Damage       bool         `json:"damage,omitempty" bson:"damage,omitempty"`
	Notes        string       `json:"notes,omitempty" bson:"notes,omitempty"`
}

// TyreAssessment aggregates up to four wheel measurements into one
// overall condition and recommendation. Derived per evaluation call,
// never cached by the engine.
type TyreAssessment struct {
	Season               Season                  `json:"season" bson:"season"`
	Positions            []TyrePositionStatus    `json:"positions" bson:"positions"`
	OverallCondition     string                  `json:"overall_condition" bson:"overallCondition"`
	OverallTreadDepthMm  float64                 `json:"overall_tread_depth_mm" bson:"overallTreadDepthMm"`
	Recommendation       TyreRecommendationLevel `json:"overall_recommendation" bson:"recommendation"`
	Reasoning            string                  `json:"reasoning" bson:"reasoning"`
	RecommendedAction    string                  `json:"recommended_action,omitempty" bson:"recommendedAction,omitempty"`
	NotifyCustomerHint   bool                    `json:"notify_customer_hint,omitempty" bson:"notifyCustomerHint,omitempty"`
}
