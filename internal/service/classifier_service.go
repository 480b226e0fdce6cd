package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"garagehub/internal/config"
	"garagehub/internal/model"
)

// ImageClassification is the classifier's output for one image
type ImageClassification struct {
	Summary         string
	Observations    []model.Observation
	Recommendations []string
}

// Classifier is the upstream AI oracle boundary. Implementations may be
// a remote model or a deterministic double; the engine core never
// depends on which.
type Classifier interface {
	ClassifyImage(ctx context.Context, imageURL string) (*ImageClassification, error)
	AnalyzeText(ctx context.Context, text string) (*model.TextAnalysis, error)
}

// ClassifierService classifies vehicle surface images and free-text
// damage descriptions via the Gemini API. When no API key is configured
// it falls back to a deterministic mock classifier.
type ClassifierService struct {
	config *config.AIConfig
	client *http.Client
}

// NewClassifierService creates a new classifier service
func NewClassifierService(cfg *config.AIConfig) *ClassifierService {
	return &ClassifierService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// classifierPayload is the JSON schema the models are instructed to return
type classifierPayload struct {
	Summary      string `json:"summary"`
	Observations []struct {
		RegionID   string  `json:"regionId"`
		Tag        string  `json:"tag"`
		Severity   string  `json:"severity"`
		Confidence float64 `json:"confidence"`
		Analysis   string  `json:"analysis"`
	} `json:"observations"`
	Recommendations []string `json:"recommendations"`
}

// ClassifyImage classifies one vehicle surface photo
func (s *ClassifierService) ClassifyImage(ctx context.Context, imageURL string) (*ImageClassification, error) {
	if !s.config.IsEnabled() {
		return s.mockClassifyImage(imageURL), nil
	}

	imageData, mimeType, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", imageURL, err)
	}

	response, err := s.callGemini(ctx, s.config.Models.Vision, imagePrompt, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	payload, err := s.parsePayload(response)
	if err != nil {
		return nil, err
	}

	return &ImageClassification{
		Summary:         payload.Summary,
		Observations:    s.mapObservations(payload),
		Recommendations: payload.Recommendations,
	}, nil
}

// AnalyzeText analyzes a free-text damage description
func (s *ClassifierService) AnalyzeText(ctx context.Context, text string) (*model.TextAnalysis, error) {
	if !s.config.IsEnabled() {
		return s.mockAnalyzeText(text), nil
	}

	prompt := textPrompt + "\n\nDescription:\n" + text
	response, err := s.callGemini(ctx, s.config.Models.Text, prompt, nil, "")
	if err != nil {
		return nil, err
	}

	payload, err := s.parsePayload(response)
	if err != nil {
		return nil, err
	}

	return &model.TextAnalysis{
		Summary:      payload.Summary,
		Observations: s.mapObservations(payload),
	}, nil
}

// mapObservations converts the loosely-typed upstream vocabulary onto
// the closed observation model, logging and skipping values that cannot
// be mapped rather than coercing them to a default condition.
func (s *ClassifierService) mapObservations(payload *classifierPayload) []model.Observation {
	observations := make([]model.Observation, 0, len(payload.Observations))
	for _, raw := range payload.Observations {
		tag, ok := model.ParseTag(raw.Tag)
		if !ok {
			log.Printf("[Classifier] Unrecognized tag %q, skipping observation", raw.Tag)
			continue
		}
		severity, ok := model.ParseSeverity(raw.Severity)
		if !ok {
			log.Printf("[Classifier] Unrecognized severity %q for tag %s, falling back to minor", raw.Severity, tag)
			severity = model.SeverityMinor
		}
		confidence := raw.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		observations = append(observations, model.Observation{
			RegionID:   raw.RegionID,
			Tag:        tag,
			Severity:   severity,
			Confidence: confidence,
			Analysis:   raw.Analysis,
		}.Normalize())
	}
	return observations
}

func (s *ClassifierService) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", err
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return data, mimeType, nil
}

// callGemini makes a request to the Gemini API; imageData is optional
func (s *ClassifierService) callGemini(ctx context.Context, modelName, prompt string, imageData []byte, mimeType string) (string, error) {
	parts := []map[string]interface{}{
		{"text": prompt},
	}
	if imageData != nil {
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]string{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("classifier API error %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from classifier")
}

func (s *ClassifierService) parsePayload(response string) (*classifierPayload, error) {
	// Models wrap JSON in markdown code fences despite the prompt.
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload classifierPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	return &payload, nil
}

const imagePrompt = `You are inspecting a vehicle surface photo for a detailing shop. Return ONLY valid JSON matching this schema:
{
  "summary": "one sentence describing the overall surface state",
  "observations": [{
    "regionId": "panel or area, e.g. hood, front_left_door",
    "tag": "scratch|swirl|dent|chip|oxidation|water_spot|contamination|clean|coated|polished",
    "severity": "minor|moderate|severe (omit for non-defect tags)",
    "confidence": 0.0 to 1.0,
    "analysis": "short description of the finding"
  }],
  "recommendations": ["short actionable recommendation"]
}

Report every visible defect as its own observation with the region it sits on. Do not invent defects that are not visible.`

const textPrompt = `You are reading a customer's description of their vehicle's paintwork for a detailing shop. Return ONLY valid JSON:
{
  "summary": "one sentence restating the customer's concern",
  "observations": [{
    "regionId": "panel or area mentioned, or 'unspecified'",
    "tag": "scratch|swirl|dent|chip|oxidation|water_spot|contamination|clean|coated|polished",
    "severity": "minor|moderate|severe",
    "confidence": 0.0 to 1.0,
    "analysis": "what the customer reported"
  }],
  "recommendations": []
}

Only extract what the text states; confidence reflects how explicit the description is.`

// Mock implementations, used when no API key is configured. Both are
// deterministic: the same input always produces the same observations.

var mockDefects = []struct {
	tag      model.Tag
	severity model.Severity
	region   string
	analysis string
}{
	{model.TagSwirl, model.SeverityMinor, "hood", "Fine swirl marks visible under direct light."},
	{model.TagScratch, model.SeverityModerate, "front_left_door", "Clear-coat scratch running across the panel."},
	{model.TagWaterSpot, model.SeverityMinor, "roof", "Mineral water spots across the panel."},
	{model.TagOxidation, model.SeverityModerate, "rear_bumper", "Dull, oxidized patch on the trim."},
	{model.TagChip, model.SeverityMinor, "front_bumper", "Small stone chip near the grille."},
}

func (s *ClassifierService) mockClassifyImage(imageURL string) *ImageClassification {
	h := fnv.New32a()
	h.Write([]byte(imageURL))
	pick := mockDefects[int(h.Sum32())%len(mockDefects)]

	return &ImageClassification{
		Summary: "Mock classification based on image URL.",
		Observations: []model.Observation{
			{
				RegionID:   pick.region,
				Tag:        pick.tag,
				Severity:   pick.severity,
				Confidence: 0.82,
				Analysis:   pick.analysis,
			},
			{
				RegionID:   "overall",
				Tag:        model.TagClean,
				Confidence: 0.6,
				Analysis:   "Remaining surface appears clean.",
			},
		},
		Recommendations: []string{"Enable the classifier API key for real image analysis."},
	}
}

func (s *ClassifierService) mockAnalyzeText(text string) *model.TextAnalysis {
	lowered := strings.ToLower(text)
	var observations []model.Observation
	for _, pick := range mockDefects {
		if strings.Contains(lowered, string(pick.tag)) {
			observations = append(observations, model.Observation{
				RegionID:   "unspecified",
				Tag:        pick.tag,
				Severity:   pick.severity,
				Confidence: 0.7,
				Analysis:   "Mentioned in customer description.",
			})
		}
	}

	return &model.TextAnalysis{
		Summary:      "Mock text analysis based on keyword matching.",
		Observations: observations,
	}
}
