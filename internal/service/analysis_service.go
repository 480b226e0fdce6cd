package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"garagehub/internal/cache"
	"garagehub/internal/engine"
	"garagehub/internal/model"
	"garagehub/internal/repository"
)

const (
	// perCallTimeout bounds each classifier call so one slow image
	// cannot block the others.
	perCallTimeout = 15 * time.Second

	// overallTimeout is the aggregate deadline for one evaluation.
	overallTimeout = 45 * time.Second

	maxConcurrentClassifications = 4
)

// AnalysisService orchestrates vehicle condition evaluations: it fans
// classification out to the upstream oracle, runs the pure engine over
// the observations and composes the response. The service holds no
// cross-call state; concurrent evaluations are fully independent.
type AnalysisService struct {
	classifier   Classifier
	policySvc    *PolicyService
	analysisRepo repository.AnalysisRepo
	statsCache   cache.StatsCache
	broadcaster  Broadcaster
	now          func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(classifier Classifier, policySvc *PolicyService, analysisRepo repository.AnalysisRepo, statsCache cache.StatsCache) *AnalysisService {
	return &AnalysisService{
		classifier:   classifier,
		policySvc:    policySvc,
		analysisRepo: analysisRepo,
		statsCache:   statsCache,
		now:          time.Now,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *AnalysisService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// EvaluateSurface runs a surface analysis and records the result
func (s *AnalysisService) EvaluateSurface(ctx context.Context, tenantID string, req *model.SurfaceAnalysisRequest) (*model.SurfaceAnalysisResponse, error) {
	result, err := s.evaluateSurface(ctx, req)
	if err != nil {
		return nil, err
	}

	record := &model.AnalysisRecord{
		AnalysisID: result.AnalysisID,
		TenantID:   tenantID,
		Kind:       model.AnalysisKindSurface,
		Surface:    result,
	}
	if err := s.finish(ctx, tenantID, record); err != nil {
		return nil, err
	}
	return result, nil
}

// EvaluateTyres runs a tyre analysis under the tenant's threshold
// policy and records the result
func (s *AnalysisService) EvaluateTyres(ctx context.Context, tenantID string, req *model.TyreAnalysisRequest) (*model.TyreAssessment, error) {
	result, err := s.evaluateTyres(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	record := &model.AnalysisRecord{
		AnalysisID: uuid.New().String(),
		TenantID:   tenantID,
		Kind:       model.AnalysisKindTyre,
		Tyres:      result,
	}
	if err := s.finish(ctx, tenantID, record); err != nil {
		return nil, err
	}
	return result, nil
}

// EvaluateInspection runs a combined inspection carrying surface and/or
// tyre fragments, producing both result fragments in one response. If
// either fragment fails validation the whole call fails; there is no
// partial success for a malformed request.
func (s *AnalysisService) EvaluateInspection(ctx context.Context, tenantID string, req *model.InspectionRequest) (*model.InspectionResponse, error) {
	if req.Surface == nil && req.Tyres == nil {
		return nil, engine.Validationf("inspection requires a surface or tyres fragment")
	}

	resp := &model.InspectionResponse{
		AnalysisID: uuid.New().String(),
		AnalyzedAt: s.now(),
	}

	if req.Surface != nil {
		surface, err := s.evaluateSurface(ctx, req.Surface)
		if err != nil {
			return nil, err
		}
		resp.Surface = surface
	}
	if req.Tyres != nil {
		tyres, err := s.evaluateTyres(ctx, tenantID, req.Tyres)
		if err != nil {
			return nil, err
		}
		resp.Tyres = tyres
	}

	record := &model.AnalysisRecord{
		AnalysisID: resp.AnalysisID,
		TenantID:   tenantID,
		Kind:       model.AnalysisKindInspection,
		Surface:    resp.Surface,
		Tyres:      resp.Tyres,
	}
	if err := s.finish(ctx, tenantID, record); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAnalysis returns one stored analysis record for the tenant
func (s *AnalysisService) GetAnalysis(ctx context.Context, tenantID, analysisID string) (*model.AnalysisRecord, error) {
	return s.analysisRepo.GetByAnalysisID(ctx, tenantID, analysisID)
}

// ListAnalyses returns the tenant's most recent analysis records
func (s *AnalysisService) ListAnalyses(ctx context.Context, tenantID string, limit int64) ([]*model.AnalysisRecord, error) {
	return s.analysisRepo.ListByTenant(ctx, tenantID, limit)
}

func (s *AnalysisService) evaluateSurface(ctx context.Context, req *model.SurfaceAnalysisRequest) (*model.SurfaceAnalysisResponse, error) {
	if req.Text == "" && len(req.ImageURLs) == 0 {
		return nil, engine.Validationf("either text or imageUrls must be provided")
	}

	classified, err := s.classify(ctx, req)
	if err != nil {
		return nil, err
	}

	observations := make([]model.Observation, 0)
	for _, ia := range classified.images {
		observations = append(observations, ia.observations...)
	}
	if classified.text != nil {
		observations = append(observations, classified.text.Observations...)
	}

	score := engine.ScoreSurface(observations)

	resp := &model.SurfaceAnalysisResponse{
		AnalysisID:     uuid.New().String(),
		TextAnalysis:   classified.text,
		PaintCondition: &score,
		Degraded:       len(classified.skipped) > 0,
		SkippedInputs:  classified.skipped,
		AnalyzedAt:     s.now(),
	}

	for _, ia := range classified.images {
		resp.ImageAnalyses = append(resp.ImageAnalyses, ia.toModel())
	}

	defects := 0
	for _, obs := range observations {
		if obs.Tag.IsDefect() && obs.Confidence >= engine.ConfidenceFloor {
			defects++
		}
	}
	resp.Summary = fmt.Sprintf("Paint condition %s (%d/100) with %d qualifying finding(s).",
		score.Description, score.Score, defects)
	resp.RecommendedAction = surfaceAction(score.Description)

	if req.IncludeEstimates {
		estimate := engine.EstimateWork(observations)
		resp.WorkEstimate = &estimate
	}

	return resp, nil
}

func (s *AnalysisService) evaluateTyres(ctx context.Context, tenantID string, req *model.TyreAnalysisRequest) (*model.TyreAssessment, error) {
	season, ok := model.ParseSeason(req.Season)
	if !ok {
		return nil, engine.Validationf("unknown season %q", req.Season)
	}
	if len(req.Measurements) == 0 {
		return nil, engine.Validationf("tyre analysis requires at least one measurement")
	}

	policy, err := s.policySvc.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	thresholds, err := policy.ThresholdsFor(season)
	if err != nil {
		return nil, engine.Validationf("%v", err)
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("stored policy for tenant %s is invalid: %w", tenantID, err)
	}

	assessment, err := engine.AggregateTyres(req.Measurements, thresholds, season, s.now())
	if err != nil {
		return nil, err
	}

	assessment.NotifyCustomerHint = notifyHint(policy, thresholds, assessment)
	return assessment, nil
}

// classifiedInputs is the fan-in result of one classification round
type classifiedInputs struct {
	images  []imageResult
	text    *model.TextAnalysis
	skipped []string
}

type imageResult struct {
	url             string
	summary         string
	observations    []model.Observation
	recommendations []string
}

func (r imageResult) toModel() model.ImageAnalysis {
	ia := model.ImageAnalysis{
		ImageURL:        r.url,
		Analysis:        r.summary,
		Recommendations: r.recommendations,
	}
	seen := make(map[model.Tag]bool)
	for _, obs := range r.observations {
		if !seen[obs.Tag] {
			seen[obs.Tag] = true
			ia.Tags = append(ia.Tags, obs.Tag)
		}
		if obs.Confidence > ia.Confidence {
			ia.Confidence = obs.Confidence
		}
		if severityRank(obs.Severity) > severityRank(ia.Severity) {
			ia.Severity = obs.Severity
		}
	}
	return ia
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityMinor:
		return 1
	case model.SeverityModerate:
		return 2
	case model.SeveritySevere:
		return 3
	default:
		return 0
	}
}

// classify fans the independent classifier calls out concurrently. Each
// call gets its own timeout so one hung call cannot block the rest, the
// round as a whole is bounded by an aggregate deadline, and cancelling
// the evaluation cancels every still-pending call. Partial failure
// degrades the result; total failure aborts it.
func (s *AnalysisService) classify(ctx context.Context, req *model.SurfaceAnalysisRequest) (*classifiedInputs, error) {
	ctx, cancel := context.WithTimeout(ctx, overallTimeout)
	defer cancel()

	type slot struct {
		result imageResult
		err    error
	}
	slots := make([]slot, len(req.ImageURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentClassifications)

	for i, url := range req.ImageURLs {
		i, url := i, url
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, perCallTimeout)
			defer cancel()

			classification, err := s.classifier.ClassifyImage(callCtx, url)
			if err != nil {
				slots[i] = slot{err: err}
				return nil
			}
			slots[i] = slot{result: imageResult{
				url:             url,
				summary:         classification.Summary,
				observations:    classification.Observations,
				recommendations: classification.Recommendations,
			}}
			return nil
		})
	}

	var textAnalysis *model.TextAnalysis
	var textErr error
	if req.Text != "" {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, perCallTimeout)
			defer cancel()
			textAnalysis, textErr = s.classifier.AnalyzeText(callCtx, req.Text)
			return nil
		})
	}

	// Goroutines report failures through their slots, so Wait only
	// surfaces context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: classification deadline exceeded", engine.ErrUpstreamClassification)
		}
		return nil, err
	}

	out := &classifiedInputs{}
	totalCalls := len(req.ImageURLs)
	failed := 0

	for i, sl := range slots {
		if sl.err != nil {
			log.Printf("[Analysis] Image classification failed for %s: %v", req.ImageURLs[i], sl.err)
			out.skipped = append(out.skipped, req.ImageURLs[i])
			failed++
			continue
		}
		out.images = append(out.images, sl.result)
	}

	if req.Text != "" {
		totalCalls++
		if textErr != nil {
			log.Printf("[Analysis] Text analysis failed: %v", textErr)
			out.skipped = append(out.skipped, "text")
			failed++
		} else {
			out.text = textAnalysis
		}
	}

	// No scoring on zero evidence.
	if totalCalls > 0 && failed == totalCalls {
		return nil, fmt.Errorf("%w: all %d classification call(s) failed", engine.ErrUpstreamClassification, totalCalls)
	}

	return out, nil
}

// finish persists the audit record and feeds the dashboard. Stats and
// broadcast failures are logged, not surfaced: the evaluation already
// succeeded.
func (s *AnalysisService) finish(ctx context.Context, tenantID string, record *model.AnalysisRecord) error {
	if err := s.analysisRepo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}

	if record.Surface != nil && record.Surface.PaintCondition != nil {
		if err := s.statsCache.RecordSurface(ctx, tenantID, record.Surface.PaintCondition.Score); err != nil {
			log.Printf("[Analysis] Stats update failed for tenant %s: %v", tenantID, err)
		}
	}
	if record.Tyres != nil {
		if err := s.statsCache.RecordTyres(ctx, tenantID, record.Tyres.Recommendation); err != nil {
			log.Printf("[Analysis] Stats update failed for tenant %s: %v", tenantID, err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTenant(tenantID, "analysis_completed", analysisEvent(record))
	}
	return nil
}

func analysisEvent(record *model.AnalysisRecord) map[string]interface{} {
	event := map[string]interface{}{
		"analysisId": record.AnalysisID,
		"kind":       record.Kind,
	}
	if record.Surface != nil && record.Surface.PaintCondition != nil {
		event["paintScore"] = record.Surface.PaintCondition.Score
	}
	if record.Tyres != nil {
		event["tyreRecommendation"] = record.Tyres.Recommendation
	}
	return event
}

func surfaceAction(description string) string {
	switch description {
	case "excellent":
		return "No corrective work needed; maintain with regular washing."
	case "good":
		return "Light polishing recommended to address minor findings."
	case "fair":
		return "Multi-stage paint correction recommended."
	default:
		return "Full correction and refinishing recommended."
	}
}

// notifyHint applies the tenant's notification preferences to the
// assessment. Delivery itself is an external collaborator's concern.
func notifyHint(policy *model.TenantTyrePolicy, thresholds model.ThresholdPolicy, assessment *model.TyreAssessment) bool {
	if policy.NotifyCustomerOnLowTread &&
		(assessment.Recommendation == model.TyreRecommendReplaceSoon || assessment.Recommendation == model.TyreRecommendReplaceNow) {
		return true
	}
	if policy.NotifyCustomerOnOldTyres {
		for _, pos := range assessment.Positions {
			if pos.AgeYears != nil && *pos.AgeYears >= thresholds.MaxAgeYears {
				return true
			}
		}
	}
	return false
}
