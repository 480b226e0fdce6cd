package engine

import (
	"fmt"
	"strconv"
	"strings"

	"garagehub/internal/model"
)

// taskRate is one entry of the static task-cost table
type taskRate struct {
	MinHours float64
	MaxHours float64
	Label    string
}

// taskTable maps (tag, severity) to a labor-hour range and task label.
// Hours are monotone in severity within each tag.
var taskTable = map[model.Tag]map[model.Severity]taskRate{
	model.TagScratch: {
		model.SeverityMinor:    {0.5, 1, "light polishing"},
		model.SeverityModerate: {1, 2, "machine polishing"},
		model.SeveritySevere:   {1.5, 3, "wet sanding and polishing"},
	},
	model.TagSwirl: {
		model.SeverityMinor:    {0.5, 1, "single-stage polish"},
		model.SeverityModerate: {1, 2, "two-stage polish"},
		model.SeveritySevere:   {2, 3, "compound and polish"},
	},
	model.TagDent: {
		model.SeverityMinor:    {0.5, 1.5, "paintless dent removal"},
		model.SeverityModerate: {1.5, 3, "dent repair"},
		model.SeveritySevere:   {3, 6, "panel repair and refinish"},
	},
	model.TagChip: {
		model.SeverityMinor:    {0.25, 0.5, "chip touch-up"},
		model.SeverityModerate: {0.5, 1, "chip fill and level"},
		model.SeveritySevere:   {2, 4, "panel respray"},
	},
	model.TagOxidation: {
		model.SeverityMinor:    {0.5, 1, "decontamination wash"},
		model.SeverityModerate: {1, 2, "decontamination and seal"},
		model.SeveritySevere:   {2, 4, "heavy correction and seal"},
	},
	model.TagWaterSpot: {
		model.SeverityMinor:    {0.25, 0.5, "spot removal"},
		model.SeverityModerate: {0.5, 1, "chemical spot removal"},
		model.SeveritySevere:   {1, 2, "polish and spot removal"},
	},
	model.TagContamination: {
		model.SeverityMinor:    {0.5, 1, "clay bar treatment"},
		model.SeverityModerate: {1, 1.5, "clay and iron decontamination"},
		model.SeveritySevere:   {1.5, 2.5, "full decontamination detail"},
	},
}

// EstimateWork maps severity-tagged findings to a labor-hour range with
// a per-task breakdown. Observations below the confidence floor are
// ignored. Repeated defects that resolve to a task label already in the
// breakdown are applied once; additional like-for-like work is covered
// by severity escalation, not multiplicity. Returns an empty estimate
// (never nil breakdown) when nothing qualifies.
func EstimateWork(observations []model.Observation) model.WorkEstimate {
	est := model.WorkEstimate{Breakdown: []model.WorkItem{}}
	seen := make(map[string]bool)

	for _, obs := range observations {
		obs = obs.Normalize()
		if obs.Confidence < ConfidenceFloor || !obs.Tag.IsDefect() {
			continue
		}
		rates, ok := taskTable[obs.Tag]
		if !ok {
			continue
		}
		rate, ok := rates[obs.Severity]
		if !ok {
			continue
		}
		if seen[rate.Label] {
			continue
		}
		seen[rate.Label] = true

		est.MinHours += rate.MinHours
		est.MaxHours += rate.MaxHours
		est.Breakdown = append(est.Breakdown, model.WorkItem{
			Task:  rate.Label,
			Hours: formatHourRange(rate.MinHours, rate.MaxHours),
		})
	}

	return est
}

func formatHourRange(min, max float64) string {
	return fmt.Sprintf("%s-%sh", trimHours(min), trimHours(max))
}

func trimHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
