package model

import "strings"

// Tag classifies a surface observation produced by the upstream classifier
type Tag string

const (
	TagScratch       Tag = "scratch"
	TagSwirl         Tag = "swirl"
	TagDent          Tag = "dent"
	TagChip          Tag = "chip"
	TagOxidation     Tag = "oxidation"
	TagWaterSpot     Tag = "water_spot"
	TagContamination Tag = "contamination"
	TagClean         Tag = "clean"
	TagCoated        Tag = "coated"
	TagPolished      Tag = "polished"
	TagBefore        Tag = "before"
	TagAfter         Tag = "after"
)

// Severity grades a defect observation
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// tagAliases maps known upstream vocabulary variants onto the closed tag set
var tagAliases = map[string]Tag{
	"scratches":   TagScratch,
	"swirl_marks": TagSwirl,
	"swirls":      TagSwirl,
	"ding":        TagDent,
	"stone_chip":  TagChip,
	"rock_chip":   TagChip,
	"oxidized":    TagOxidation,
	"water_spots": TagWaterSpot,
	"waterspot":   TagWaterSpot,
	"tar":         TagContamination,
	"overspray":   TagContamination,
	"fallout":     TagContamination,
	"ceramic":     TagCoated,
}

// ParseTag maps an upstream tag value onto the closed tag set.
// Returns false for values that cannot be mapped; callers must log and
// skip those rather than coerce them to a default condition.
func ParseTag(s string) (Tag, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Tag(v) {
	case TagScratch, TagSwirl, TagDent, TagChip, TagOxidation, TagWaterSpot,
		TagContamination, TagClean, TagCoated, TagPolished, TagBefore, TagAfter:
		return Tag(v), true
	}
	if t, ok := tagAliases[v]; ok {
		return t, true
	}
	return "", false
}

// IsDefect reports whether the tag describes damage rather than a
// neutral or positive surface state
func (t Tag) IsDefect() bool {
	switch t {
	case TagScratch, TagSwirl, TagDent, TagChip, TagOxidation, TagWaterSpot, TagContamination:
		return true
	}
	return false
}

// ParseSeverity maps an upstream severity value onto the closed set.
// Unknown values are reported as not-ok so the caller can log before
// falling back to minor.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityMinor:
		return SeverityMinor, true
	case SeverityModerate, "medium":
		return SeverityModerate, true
	case SeveritySevere, "critical", "heavy":
		return SeveritySevere, true
	case SeverityNone:
		return SeverityNone, true
	}
	return SeverityNone, false
}

// Observation is one classified finding about a vehicle surface region.
// Observations are immutable once created: they are produced by the
// classifier boundary and consumed exactly once per scoring call.
type Observation struct {
	RegionID   string   `json:"regionId" bson:"regionId"`
	Tag        Tag      `json:"tag" bson:"tag"`
	Confidence float64  `json:"confidence" bson:"confidence"`
	Severity   Severity `json:"severity,omitempty" bson:"severity,omitempty"`
	Analysis   string   `json:"analysis,omitempty" bson:"analysis,omitempty"`
}

// Normalize enforces the tag/severity invariant: defect tags always carry
// a severity (defaulting to minor when the classifier omitted it) and
// non-defect tags never do. Returns a copy; the receiver is not mutated.
func (o Observation) Normalize() Observation {
	if o.Tag.IsDefect() {
		if o.Severity == SeverityNone {
			o.Severity = SeverityMinor
		}
	} else {
		o.Severity = SeverityNone
	}
	return o
}

// TextAnalysis is the classifier's reading of free-text damage descriptions
type TextAnalysis struct {
	Summary      string        `json:"summary" bson:"summary"`
	Observations []Observation `json:"observations,omitempty" bson:"observations,omitempty"`
}

// ImageAnalysis is the per-image fragment of a surface analysis response
type ImageAnalysis struct {
	ImageURL        string   `json:"imageUrl" bson:"imageUrl"`
	Tags            []Tag    `json:"tags" bson:"tags"`
	Confidence      float64  `json:"confidence" bson:"confidence"`
	Analysis        string   `json:"analysis" bson:"analysis"`
	Severity        Severity `json:"severity,omitempty" bson:"severity,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" bson:"recommendations,omitempty"`
}
