package engine

import (
	"math"

	"garagehub/internal/model"
)

// ConfidenceFloor is the noise floor below which classifier observations
// are discarded. Design constant, not tenant-configurable.
const ConfidenceFloor = 0.35

// severityPenalty is the base score penalty per defect severity
var severityPenalty = map[model.Severity]float64{
	model.SeverityMinor:    3,
	model.SeverityModerate: 8,
	model.SeveritySevere:   18,
}

// ScoreSurface aggregates surface observations into a 0-100 condition
// score. Pure and deterministic: identical input always yields an
// identical result. An empty input returns the neutral score of 100.
func ScoreSurface(observations []model.Observation) model.ConditionScore {
	var penalty float64
	for _, obs := range observations {
		obs = obs.Normalize()
		if obs.Confidence < ConfidenceFloor || !obs.Tag.IsDefect() {
			continue
		}
		penalty += severityPenalty[obs.Severity] * obs.Confidence
	}

	if penalty < 0 {
		penalty = 0
	}
	if penalty > 100 {
		penalty = 100
	}

	score := 100 - int(math.Round(penalty))
	return model.ConditionScore{
		Score:       score,
		Description: describeScore(score),
	}
}

func describeScore(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 65:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}
