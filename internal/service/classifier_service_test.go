package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagehub/internal/config"
	"garagehub/internal/model"
)

func newMockClassifier() *ClassifierService {
	cfg := config.DefaultAIConfig()
	cfg.APIKey = ""
	return NewClassifierService(cfg)
}

func TestMockClassifyImage_Deterministic(t *testing.T) {
	svc := newMockClassifier()

	first, err := svc.ClassifyImage(context.Background(), "https://img/hood.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, first.Observations)

	for i := 0; i < 5; i++ {
		again, err := svc.ClassifyImage(context.Background(), "https://img/hood.jpg")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMockClassifyImage_NormalizedObservations(t *testing.T) {
	svc := newMockClassifier()

	result, err := svc.ClassifyImage(context.Background(), "https://img/door.jpg")
	require.NoError(t, err)

	for _, obs := range result.Observations {
		_, known := model.ParseTag(string(obs.Tag))
		assert.True(t, known, "mock produced unknown tag %q", obs.Tag)
		assert.GreaterOrEqual(t, obs.Confidence, 0.0)
		assert.LessOrEqual(t, obs.Confidence, 1.0)
		if obs.Tag.IsDefect() {
			assert.NotEqual(t, model.SeverityNone, obs.Severity)
		}
	}
}

func TestMockAnalyzeText_MatchesKeywords(t *testing.T) {
	svc := newMockClassifier()

	result, err := svc.AnalyzeText(context.Background(), "deep scratch on the hood and some oxidation")
	require.NoError(t, err)

	tags := make(map[model.Tag]bool)
	for _, obs := range result.Observations {
		tags[obs.Tag] = true
	}
	assert.True(t, tags[model.TagScratch])
	assert.True(t, tags[model.TagOxidation])
}

func TestParsePayload_StripsCodeFences(t *testing.T) {
	svc := newMockClassifier()

	payload, err := svc.parsePayload("```json\n{\"summary\":\"ok\",\"observations\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "ok", payload.Summary)

	payload, err = svc.parsePayload("\n```\n{\"summary\":\"bare fence\"}\n```\n")
	require.NoError(t, err)
	assert.Equal(t, "bare fence", payload.Summary)

	payload, err = svc.parsePayload(`{"summary":"plain"}`)
	require.NoError(t, err)
	assert.Equal(t, "plain", payload.Summary)

	_, err = svc.parsePayload("not json at all")
	assert.Error(t, err)
}

func TestMapObservations_DropsUnknownTags(t *testing.T) {
	svc := newMockClassifier()

	payload, err := svc.parsePayload(`{
		"summary": "mixed",
		"observations": [
			{"tag": "flux_capacitor", "confidence": 0.9, "severity": "minor"},
			{"tag": "scratches", "confidence": 1.4, "severity": "heavy"}
		]
	}`)
	require.NoError(t, err)

	obs := svc.mapObservations(payload)
	require.Len(t, obs, 1)
	assert.Equal(t, model.TagScratch, obs[0].Tag)
	assert.Equal(t, 1.0, obs[0].Confidence)
	assert.Equal(t, model.SeveritySevere, obs[0].Severity)
}
