package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagehub/internal/model"
)

var testPolicy = model.ThresholdPolicy{MinTreadMm: 3, WarningTreadMm: 4, MaxAgeYears: 6}

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func measurement(pos model.TyrePosition, tread float64) model.TyrePositionMeasurement {
	return model.TyrePositionMeasurement{Position: pos, TreadDepthMm: fptr(tread), Confidence: 0.9}
}

func allFour(depths ...float64) []model.TyrePositionMeasurement {
	ms := make([]model.TyrePositionMeasurement, len(depths))
	for i, d := range depths {
		ms[i] = measurement(model.AllTyrePositions[i], d)
	}
	return ms
}

func TestAggregateTyres_AllGood(t *testing.T) {
	a, err := AggregateTyres(allFour(5.0, 5.0, 5.0, 5.0), testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.TyreRecommendOK, a.Recommendation)
	assert.Equal(t, 5.0, a.OverallTreadDepthMm)
	assert.Equal(t, "good", a.OverallCondition)
}

func TestAggregateTyres_WorstWheelForcesReplaceNow(t *testing.T) {
	a, err := AggregateTyres(allFour(2.5, 5.0, 5.0, 5.0), testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.TyreRecommendReplaceNow, a.Recommendation)
	assert.Equal(t, 2.5, a.OverallTreadDepthMm)
	assert.Contains(t, a.Reasoning, "FL")
}

func TestAggregateTyres_TieBreakSeverityDominatesMargin(t *testing.T) {
	// Three pristine wheels never outweigh one wheel below minimum.
	for _, depth := range []float64{0, 1.0, 2.9} {
		a, err := AggregateTyres(allFour(depth, 8.0, 8.0, 8.0), testPolicy, model.SeasonSummer, testNow)
		require.NoError(t, err)
		assert.Equal(t, model.TyreRecommendReplaceNow, a.Recommendation, "depth %.1f", depth)
	}
}

func TestAggregateTyres_BoundaryExactness(t *testing.T) {
	// Exactly at the minimum is worn, not bad: strict less-than.
	a, err := AggregateTyres(allFour(3.0, 5.0, 5.0, 5.0), testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.NotEqual(t, model.TyreRecommendReplaceNow, a.Recommendation)
	require.Equal(t, model.WearStatusWorn, a.Positions[0].WearStatus)
}

func TestAggregateTyres_WornMarginSplit(t *testing.T) {
	// Midpoint between min 3 and warning 4 is 3.5.
	soon, err := AggregateTyres(allFour(3.2, 5.0, 5.0, 5.0), testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendReplaceSoon, soon.Recommendation)

	monitor, err := AggregateTyres(allFour(3.7, 5.0, 5.0, 5.0), testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendMonitor, monitor.Recommendation)
}

func TestAggregateTyres_MissingPositionHonesty(t *testing.T) {
	ms := []model.TyrePositionMeasurement{
		measurement(model.PositionFrontLeft, 5.0),
		measurement(model.PositionFrontRight, 5.0),
	}

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.OverallTreadDepthMm, "missing positions are excluded, not zero")
	assert.Contains(t, a.Reasoning, "RL, RR not measured")

	require.Len(t, a.Positions, 4)
	for _, p := range a.Positions[2:] {
		assert.Equal(t, model.WearStatusNotMeasured, p.WearStatus)
	}
}

func TestAggregateTyres_AgeGateForcesWorn(t *testing.T) {
	ms := allFour(6.0, 6.0, 6.0, 6.0)
	ms[1].ProductionYear = iptr(2019) // 7 years old at testNow
	ms[1].ProductionWeek = iptr(12)

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	require.Equal(t, model.WearStatusWorn, a.Positions[1].WearStatus)
	assert.Contains(t, a.Reasoning, "FR")
	assert.Contains(t, a.Reasoning, "age limit")
	assert.NotEqual(t, model.TyreRecommendOK, a.Recommendation)
}

func TestAggregateTyres_AgeNeverImprovesVerdict(t *testing.T) {
	ms := allFour(2.0, 6.0, 6.0, 6.0)
	ms[0].ProductionYear = iptr(testNow.Year()) // brand-new but bald

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendReplaceNow, a.Recommendation)
}

func TestAggregateTyres_DamageFloorsReplaceSoon(t *testing.T) {
	ms := allFour(6.0, 6.0, 6.0, 6.0)
	ms[2].DamageDetected = true

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.TyreRecommendReplaceSoon, a.Recommendation)
	assert.Contains(t, a.Reasoning, "damage detected on RL")
}

func TestAggregateTyres_DamageDoesNotDowngradeReplaceNow(t *testing.T) {
	ms := allFour(1.0, 6.0, 6.0, 6.0)
	ms[1].DamageDetected = true

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendReplaceNow, a.Recommendation)
}

func TestAggregateTyres_NoMeasurements(t *testing.T) {
	_, err := AggregateTyres(nil, testPolicy, model.SeasonSummer, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAggregateTyres_AllTreadDepthsNil(t *testing.T) {
	ms := []model.TyrePositionMeasurement{
		{Position: model.PositionFrontLeft, Confidence: 0.9},
		{Position: model.PositionFrontRight, Confidence: 0.9},
	}

	_, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestAggregateTyres_DuplicatePositionRejected(t *testing.T) {
	ms := []model.TyrePositionMeasurement{
		measurement(model.PositionFrontLeft, 5.0),
		measurement(model.PositionFrontLeft, 4.0),
	}

	_, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAggregateTyres_Deterministic(t *testing.T) {
	ms := allFour(3.4, 4.2, 5.1, 2.8)
	ms[0].ProductionYear = iptr(2020)
	ms[3].DamageDetected = true

	first, err := AggregateTyres(ms, testPolicy, model.SeasonWinter, testNow)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := AggregateTyres(ms, testPolicy, model.SeasonWinter, testNow)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestAggregateTyres_ReasoningNeverCallsMissingGood(t *testing.T) {
	ms := []model.TyrePositionMeasurement{measurement(model.PositionRearRight, 5.0)}

	a, err := AggregateTyres(ms, testPolicy, model.SeasonSummer, testNow)
	require.NoError(t, err)

	assert.Contains(t, a.Reasoning, "FL, FR, RL not measured")
	for _, p := range a.Positions[:3] {
		require.NotEqual(t, model.WearStatusGood, p.WearStatus)
	}
	assert.False(t, strings.Contains(p0notes(a), "good"))
}

func p0notes(a *model.TyreAssessment) string {
	var sb strings.Builder
	for _, p := range a.Positions {
		if p.WearStatus == model.WearStatusNotMeasured {
			sb.WriteString(p.Notes)
		}
	}
	return sb.String()
}
