package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"garagehub/internal/model"
)

// AggregateTyres aggregates up to four per-wheel measurements into one
// overall condition and recommendation under the given tenant thresholds.
// The worst wheel governs: overall tread depth is the minimum across
// measured positions, and a single wheel below the minimum forces
// replace_now regardless of the others. The evaluation time is passed in
// so the tyre age gate is deterministic.
func AggregateTyres(measurements []model.TyrePositionMeasurement, policy model.ThresholdPolicy, season model.Season, now time.Time) (*model.TyreAssessment, error) {
	if len(measurements) == 0 {
		return nil, Validationf("tyre analysis requires at least one measurement")
	}
	if len(measurements) > len(model.AllTyrePositions) {
		return nil, Validationf("at most %d measurements allowed, got %d", len(model.AllTyrePositions), len(measurements))
	}

	byPos := make(map[model.TyrePosition]model.TyrePositionMeasurement, len(measurements))
	for _, m := range measurements {
		pos, ok := model.ParseTyrePosition(string(m.Position))
		if !ok {
			return nil, Validationf("unknown tyre position %q", m.Position)
		}
		if _, dup := byPos[pos]; dup {
			return nil, Validationf("duplicate measurement for position %s", pos)
		}
		if m.TreadDepthMm != nil && *m.TreadDepthMm < 0 {
			return nil, Validationf("%s: tread depth must be >= 0", pos)
		}
		if m.ProductionWeek != nil && (*m.ProductionWeek < 1 || *m.ProductionWeek > 52) {
			return nil, Validationf("%s: production week must be within 1..52", pos)
		}
		if m.Confidence < 0 || m.Confidence > 1 {
			return nil, Validationf("%s: confidence must be within [0,1]", pos)
		}
		byPos[pos] = m
	}

	// Only positions with a usable tread depth participate in the verdict.
	measured := 0
	for _, m := range byPos {
		if m.TreadDepthMm != nil {
			measured++
		}
	}
	if measured == 0 {
		return nil, fmt.Errorf("%w: no measurement carries a tread depth", ErrInsufficientData)
	}

	assessment := &model.TyreAssessment{
		Season:    season,
		Positions: make([]model.TyrePositionStatus, 0, len(model.AllTyrePositions)),
	}

	var (
		overallMin   float64
		haveOverall  bool
		badPositions []model.TyrePosition
		wornDrivers  []model.TyrePosition
		agedDrivers  []model.TyrePosition
		damaged      []model.TyrePosition
		missing      []model.TyrePosition
	)

	for _, pos := range model.AllTyrePositions {
		m, present := byPos[pos]
		if !present || m.TreadDepthMm == nil {
			if present && m.DamageDetected {
				// Damage on an unmeasured wheel still floors the verdict.
				damaged = append(damaged, pos)
				assessment.Positions = append(assessment.Positions, model.TyrePositionStatus{
					Position:   pos,
					WearStatus: model.WearStatusNotMeasured,
					Damage:     true,
					Notes:      "damage detected, tread not measured",
				})
				continue
			}
			missing = append(missing, pos)
			assessment.Positions = append(assessment.Positions, model.TyrePositionStatus{
				Position:   pos,
				WearStatus: model.WearStatusNotMeasured,
				Notes:      "not measured",
			})
			continue
		}

		depth := *m.TreadDepthMm
		if !haveOverall || depth < overallMin {
			overallMin = depth
			haveOverall = true
		}

		status := model.WearStatusGood
		var posNotes []string
		switch {
		case depth < policy.MinTreadMm:
			status = model.WearStatusBad
			badPositions = append(badPositions, pos)
			posNotes = append(posNotes, fmt.Sprintf("tread %smm below %smm minimum", mm(depth), mm(policy.MinTreadMm)))
		case depth < policy.WarningTreadMm:
			status = model.WearStatusWorn
			wornDrivers = append(wornDrivers, pos)
			posNotes = append(posNotes, fmt.Sprintf("tread %smm below %smm warning threshold", mm(depth), mm(policy.WarningTreadMm)))
		}

		var age *int
		if m.ProductionYear != nil {
			// Week-level precision is ignored for the age gate.
			a := now.Year() - *m.ProductionYear
			age = &a
			if a >= policy.MaxAgeYears {
				// Age can only worsen the per-position verdict.
				if status == model.WearStatusGood {
					status = model.WearStatusWorn
					wornDrivers = append(wornDrivers, pos)
				}
				agedDrivers = append(agedDrivers, pos)
				posNotes = append(posNotes, fmt.Sprintf("%d years old, at or beyond the %d year limit", a, policy.MaxAgeYears))
			}
		}

		if m.DamageDetected {
			damaged = append(damaged, pos)
			if status == model.WearStatusGood {
				status = model.WearStatusWorn
			}
			posNotes = append(posNotes, "damage detected")
		}

		assessment.Positions = append(assessment.Positions, model.TyrePositionStatus{
			Position:     pos,
			TreadDepthMm: m.TreadDepthMm,
			WearStatus:   status,
			AgeYears:     age,
			Damage:       m.DamageDetected,
			Notes:        strings.Join(posNotes, "; "),
		})
	}

	assessment.OverallTreadDepthMm = overallMin

	// Severity always dominates margin: one wheel below minimum forces
	// replace_now even if the rest are pristine.
	switch {
	case len(badPositions) > 0:
		assessment.Recommendation = model.TyreRecommendReplaceNow
	case len(wornDrivers) > 0:
		midpoint := policy.MinTreadMm + (policy.WarningTreadMm-policy.MinTreadMm)/2
		if overallMin < midpoint {
			assessment.Recommendation = model.TyreRecommendReplaceSoon
		} else {
			assessment.Recommendation = model.TyreRecommendMonitor
		}
	default:
		assessment.Recommendation = model.TyreRecommendOK
	}

	// Detected damage floors the verdict at replace_soon regardless of tread.
	if len(damaged) > 0 && (assessment.Recommendation == model.TyreRecommendOK || assessment.Recommendation == model.TyreRecommendMonitor) {
		assessment.Recommendation = model.TyreRecommendReplaceSoon
	}

	assessment.OverallCondition = overallCondition(assessment.Recommendation)
	assessment.RecommendedAction = recommendedAction(assessment.Recommendation)
	assessment.Reasoning = buildReasoning(policy, overallMin, badPositions, wornDrivers, agedDrivers, damaged, missing)

	return assessment, nil
}

func overallCondition(rec model.TyreRecommendationLevel) string {
	switch rec {
	case model.TyreRecommendReplaceNow:
		return "critical"
	case model.TyreRecommendReplaceSoon:
		return "worn"
	case model.TyreRecommendMonitor:
		return "fair"
	default:
		return "good"
	}
}

func recommendedAction(rec model.TyreRecommendationLevel) string {
	switch rec {
	case model.TyreRecommendReplaceNow:
		return "Replace the affected tyres immediately."
	case model.TyreRecommendReplaceSoon:
		return "Plan a tyre replacement soon."
	case model.TyreRecommendMonitor:
		return "Monitor tread wear at the next service."
	default:
		return "No action needed."
	}
}

// buildReasoning produces the deterministic customer-facing sentence
// naming the positions that drove the verdict. Downstream certificate
// and communication collaborators display it verbatim.
func buildReasoning(policy model.ThresholdPolicy, overallMin float64, bad, worn, aged, damaged, missing []model.TyrePosition) string {
	var parts []string

	if len(bad) > 0 {
		parts = append(parts, fmt.Sprintf("%s below the %smm minimum tread depth",
			joinPositions(bad), mm(policy.MinTreadMm)))
	}
	wornOnly := excludePositions(worn, bad)
	if len(wornOnly) > 0 {
		parts = append(parts, fmt.Sprintf("%s below the %smm warning threshold",
			joinPositions(wornOnly), mm(policy.WarningTreadMm)))
	}
	if len(aged) > 0 {
		parts = append(parts, fmt.Sprintf("%s at or beyond the %d year age limit",
			joinPositions(aged), policy.MaxAgeYears))
	}
	if len(damaged) > 0 {
		parts = append(parts, fmt.Sprintf("damage detected on %s", joinPositions(damaged)))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("all measured positions above the %smm warning threshold",
			mm(policy.WarningTreadMm)))
	}

	sentence := fmt.Sprintf("Lowest measured tread depth is %smm: %s.", mm(overallMin), strings.Join(parts, "; "))
	if len(missing) > 0 {
		sentence += fmt.Sprintf(" %s not measured.", joinPositions(missing))
	}
	return sentence
}

func excludePositions(positions, exclude []model.TyrePosition) []model.TyrePosition {
	var out []model.TyrePosition
	for _, p := range positions {
		found := false
		for _, e := range exclude {
			if p == e {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p)
		}
	}
	return out
}

func joinPositions(positions []model.TyrePosition) string {
	names := make([]string, len(positions))
	for i, p := range positions {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
