package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagehub/internal/engine"
	"garagehub/internal/model"
)

type fakeClassifier struct {
	imageErrs map[string]error
	textErr   error
	severity  model.Severity
	delay     time.Duration
}

func (f *fakeClassifier) ClassifyImage(ctx context.Context, imageURL string) (*ImageClassification, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.imageErrs[imageURL]; err != nil {
		return nil, err
	}
	sev := f.severity
	if sev == "" {
		sev = model.SeverityModerate
	}
	return &ImageClassification{
		Summary: "scratches on panel",
		Observations: []model.Observation{
			{RegionID: imageURL, Tag: model.TagScratch, Confidence: 0.9, Severity: sev},
		},
	}, nil
}

func (f *fakeClassifier) AnalyzeText(ctx context.Context, text string) (*model.TextAnalysis, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	return &model.TextAnalysis{
		Summary: "reported oxidation",
		Observations: []model.Observation{
			{Tag: model.TagOxidation, Confidence: 0.8, Severity: model.SeverityMinor},
		},
	}, nil
}

type fakePolicyRepo struct {
	policies map[string]*model.TenantTyrePolicy
}

func (f *fakePolicyRepo) GetByTenantID(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	return f.policies[tenantID], nil
}

func (f *fakePolicyRepo) Upsert(ctx context.Context, policy *model.TenantTyrePolicy) error {
	if f.policies == nil {
		f.policies = make(map[string]*model.TenantTyrePolicy)
	}
	f.policies[policy.TenantID] = policy
	return nil
}

type fakePolicyCache struct{}

func (fakePolicyCache) Get(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	return nil, nil
}
func (fakePolicyCache) Set(ctx context.Context, policy *model.TenantTyrePolicy) error   { return nil }
func (fakePolicyCache) Invalidate(ctx context.Context, tenantID string) error           { return nil }

type fakeAnalysisRepo struct {
	saved []*model.AnalysisRecord
}

func (f *fakeAnalysisRepo) Save(ctx context.Context, record *model.AnalysisRecord) error {
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeAnalysisRepo) GetByAnalysisID(ctx context.Context, tenantID, analysisID string) (*model.AnalysisRecord, error) {
	for _, r := range f.saved {
		if r.TenantID == tenantID && r.AnalysisID == analysisID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAnalysisRepo) ListByTenant(ctx context.Context, tenantID string, limit int64) ([]*model.AnalysisRecord, error) {
	var out []*model.AnalysisRecord
	for _, r := range f.saved {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeStatsCache struct {
	surface int
	tyres   int
}

func (f *fakeStatsCache) RecordSurface(ctx context.Context, tenantID string, score int) error {
	f.surface++
	return nil
}

func (f *fakeStatsCache) RecordTyres(ctx context.Context, tenantID string, rec model.TyreRecommendationLevel) error {
	f.tyres++
	return nil
}

func (f *fakeStatsCache) GetStats(ctx context.Context, tenantID string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) BroadcastToTenant(tenantID string, msgType string, payload interface{}) {
	f.events = append(f.events, msgType)
}

type fixture struct {
	svc        *AnalysisService
	classifier *fakeClassifier
	repo       *fakeAnalysisRepo
	stats      *fakeStatsCache
	broadcast  *fakeBroadcaster
	policies   *fakePolicyRepo
}

func newFixture() *fixture {
	f := &fixture{
		classifier: &fakeClassifier{},
		repo:       &fakeAnalysisRepo{},
		stats:      &fakeStatsCache{},
		broadcast:  &fakeBroadcaster{},
		policies: &fakePolicyRepo{policies: map[string]*model.TenantTyrePolicy{
			"tenant-1": {
				TenantID:                "tenant-1",
				SummerMinTreadMm:        3,
				SummerWarningTreadMm:    4,
				WinterMinTreadMm:        4,
				WinterWarningTreadMm:    5,
				AllSeasonMinTreadMm:     3,
				AllSeasonWarningTreadMm: 4,
				MaxTyreAgeYears:         6,
			},
		}},
	}
	policySvc := NewPolicyService(f.policies, fakePolicyCache{})
	f.svc = NewAnalysisService(f.classifier, policySvc, f.repo, f.stats)
	f.svc.SetBroadcaster(f.broadcast)
	f.svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestEvaluateSurface_RequiresInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrValidation))
	assert.Empty(t, f.repo.saved)
}

func TestEvaluateSurface_ScoresAndRecords(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs:        []string{"https://img/hood.jpg", "https://img/door.jpg"},
		Text:             "light oxidation on the roof",
		IncludeEstimates: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.PaintCondition)
	// Two moderate scratches at 0.9 plus one minor oxidation at 0.8:
	// 100 - round(8*0.9 + 8*0.9 + 3*0.8) = 83.
	assert.Equal(t, 83, resp.PaintCondition.Score)
	assert.False(t, resp.Degraded)
	assert.Len(t, resp.ImageAnalyses, 2)
	require.NotNil(t, resp.TextAnalysis)
	require.NotNil(t, resp.WorkEstimate)
	assert.Greater(t, resp.WorkEstimate.MaxHours, resp.WorkEstimate.MinHours)

	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, model.AnalysisKindSurface, f.repo.saved[0].Kind)
	assert.Equal(t, 1, f.stats.surface)
	assert.Equal(t, []string{"analysis_completed"}, f.broadcast.events)
}

func TestEvaluateSurface_OmitsEstimateUnlessRequested(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs: []string{"https://img/hood.jpg"},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.WorkEstimate)
}

func TestEvaluateSurface_PartialFailureDegrades(t *testing.T) {
	f := newFixture()
	f.classifier.imageErrs = map[string]error{
		"https://img/bad.jpg": errors.New("upstream 503"),
	}

	resp, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs: []string{"https://img/good.jpg", "https://img/bad.jpg"},
	})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	assert.Equal(t, []string{"https://img/bad.jpg"}, resp.SkippedInputs)
	assert.Len(t, resp.ImageAnalyses, 1)
	require.NotNil(t, resp.PaintCondition)
}

func TestEvaluateSurface_TotalFailureAborts(t *testing.T) {
	f := newFixture()
	f.classifier.imageErrs = map[string]error{
		"https://img/a.jpg": errors.New("upstream 503"),
		"https://img/b.jpg": errors.New("upstream 503"),
	}
	f.classifier.textErr = errors.New("upstream 503")

	_, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs: []string{"https://img/a.jpg", "https://img/b.jpg"},
		Text:      "scratched everywhere",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUpstreamClassification))
	assert.Empty(t, f.repo.saved)
}

func TestEvaluateSurface_DeadlineExpiry(t *testing.T) {
	f := newFixture()
	f.classifier.delay = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.svc.EvaluateSurface(ctx, "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs: []string{"https://img/slow.jpg"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUpstreamClassification))
	assert.Empty(t, f.repo.saved)
}

func TestEvaluateTyres_UsesTenantPolicy(t *testing.T) {
	f := newFixture()
	tread := 4.5

	// 4.5mm is fine for summer thresholds but below the winter warning.
	summer, err := f.svc.EvaluateTyres(context.Background(), "tenant-1", &model.TyreAnalysisRequest{
		Season: "summer",
		Measurements: []model.TyrePositionMeasurement{
			{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendOK, summer.Recommendation)

	winter, err := f.svc.EvaluateTyres(context.Background(), "tenant-1", &model.TyreAnalysisRequest{
		Season: "winter",
		Measurements: []model.TyrePositionMeasurement{
			{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, model.TyreRecommendOK, winter.Recommendation)

	assert.Equal(t, 2, f.stats.tyres)
	require.Len(t, f.repo.saved, 2)
	assert.Equal(t, model.AnalysisKindTyre, f.repo.saved[0].Kind)
}

func TestEvaluateTyres_UnknownSeason(t *testing.T) {
	f := newFixture()
	tread := 5.0

	_, err := f.svc.EvaluateTyres(context.Background(), "tenant-1", &model.TyreAnalysisRequest{
		Season: "monsoon",
		Measurements: []model.TyrePositionMeasurement{
			{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrValidation))
}

func TestEvaluateTyres_PolicyNotConfigured(t *testing.T) {
	f := newFixture()
	tread := 5.0

	_, err := f.svc.EvaluateTyres(context.Background(), "tenant-unknown", &model.TyreAnalysisRequest{
		Season: "summer",
		Measurements: []model.TyrePositionMeasurement{
			{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrPolicyNotConfigured))
	assert.Empty(t, f.repo.saved)
}

func TestEvaluateTyres_NotifyHint(t *testing.T) {
	f := newFixture()
	f.policies.policies["tenant-1"].NotifyCustomerOnLowTread = true
	tread := 2.0

	resp, err := f.svc.EvaluateTyres(context.Background(), "tenant-1", &model.TyreAnalysisRequest{
		Season: "summer",
		Measurements: []model.TyrePositionMeasurement{
			{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TyreRecommendReplaceNow, resp.Recommendation)
	assert.True(t, resp.NotifyCustomerHint)
}

func TestEvaluateInspection_RequiresFragment(t *testing.T) {
	f := newFixture()

	_, err := f.svc.EvaluateInspection(context.Background(), "tenant-1", &model.InspectionRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrValidation))
}

func TestEvaluateInspection_Combined(t *testing.T) {
	f := newFixture()
	tread := 5.0

	resp, err := f.svc.EvaluateInspection(context.Background(), "tenant-1", &model.InspectionRequest{
		Surface: &model.SurfaceAnalysisRequest{ImageURLs: []string{"https://img/hood.jpg"}},
		Tyres: &model.TyreAnalysisRequest{
			Season: "summer",
			Measurements: []model.TyrePositionMeasurement{
				{Position: model.PositionFrontLeft, TreadDepthMm: &tread},
			},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Surface)
	require.NotNil(t, resp.Tyres)
	assert.Equal(t, model.TyreRecommendOK, resp.Tyres.Recommendation)

	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, model.AnalysisKindInspection, f.repo.saved[0].Kind)
	assert.Equal(t, 1, f.stats.surface)
	assert.Equal(t, 1, f.stats.tyres)
}

func TestEvaluateInspection_TyreValidationFailsWholeCall(t *testing.T) {
	f := newFixture()

	_, err := f.svc.EvaluateInspection(context.Background(), "tenant-1", &model.InspectionRequest{
		Surface: &model.SurfaceAnalysisRequest{ImageURLs: []string{"https://img/hood.jpg"}},
		Tyres:   &model.TyreAnalysisRequest{Season: "summer"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrValidation))
	assert.Empty(t, f.repo.saved)
}

func TestGetAndListAnalyses(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.EvaluateSurface(context.Background(), "tenant-1", &model.SurfaceAnalysisRequest{
		ImageURLs: []string{"https://img/hood.jpg"},
	})
	require.NoError(t, err)

	record, err := f.svc.GetAnalysis(context.Background(), "tenant-1", resp.AnalysisID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, resp.AnalysisID, record.AnalysisID)

	other, err := f.svc.GetAnalysis(context.Background(), "tenant-2", resp.AnalysisID)
	require.NoError(t, err)
	assert.Nil(t, other)

	list, err := f.svc.ListAnalyses(context.Background(), "tenant-1", 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
