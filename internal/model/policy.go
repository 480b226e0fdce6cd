package model

import (
	"fmt"
	"time"
)

// ThresholdPolicy is the season-resolved limits applied to one tyre
// evaluation. Invariant: WarningTreadMm > MinTreadMm >= 0, MaxAgeYears > 0.
type ThresholdPolicy struct {
	MinTreadMm     float64 `json:"min_tread_mm"`
	WarningTreadMm float64 `json:"warning_tread_mm"`
	MaxAgeYears    int     `json:"max_age_years"`
}

// Validate checks the threshold invariants
func (p ThresholdPolicy) Validate() error {
	if p.MinTreadMm < 0 {
		return fmt.Errorf("min tread must be >= 0, got %.2f", p.MinTreadMm)
	}
	if p.WarningTreadMm <= p.MinTreadMm {
		return fmt.Errorf("warning tread (%.2f) must be greater than min tread (%.2f)",
			p.WarningTreadMm, p.MinTreadMm)
	}
	if p.MaxAgeYears <= 0 {
		return fmt.Errorf("max tyre age must be positive, got %d", p.MaxAgeYears)
	}
	return nil
}

// TenantTyrePolicy is the per-tenant threshold configuration document.
// Written by tenant administration, read-only to the analysis engine.
type TenantTyrePolicy struct {
	TenantID string `json:"tenantId" bson:"tenantId"`

	SummerMinTreadMm        float64 `json:"summer_min_tread_mm" bson:"summerMinTreadMm"`
	WinterMinTreadMm        float64 `json:"winter_min_tread_mm" bson:"winterMinTreadMm"`
	AllSeasonMinTreadMm     float64 `json:"allseason_min_tread_mm" bson:"allseasonMinTreadMm"`
	SummerWarningTreadMm    float64 `json:"summer_warning_tread_mm" bson:"summerWarningTreadMm"`
	WinterWarningTreadMm    float64 `json:"winter_warning_tread_mm" bson:"winterWarningTreadMm"`
	AllSeasonWarningTreadMm float64 `json:"allseason_warning_tread_mm" bson:"allseasonWarningTreadMm"`
	MaxTyreAgeYears         int     `json:"max_tyre_age_years" bson:"maxTyreAgeYears"`

	NotifyCustomerOnLowTread bool `json:"notify_customer_on_low_tread" bson:"notifyCustomerOnLowTread"`
	NotifyCustomerOnOldTyres bool `json:"notify_customer_on_old_tyres" bson:"notifyCustomerOnOldTyres"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ThresholdsFor resolves the threshold set for a season
func (p *TenantTyrePolicy) ThresholdsFor(season Season) (ThresholdPolicy, error) {
	var t ThresholdPolicy
	t.MaxAgeYears = p.MaxTyreAgeYears
	switch season {
	case SeasonSummer:
		t.MinTreadMm = p.SummerMinTreadMm
		t.WarningTreadMm = p.SummerWarningTreadMm
	case SeasonWinter:
		t.MinTreadMm = p.WinterMinTreadMm
		t.WarningTreadMm = p.WinterWarningTreadMm
	case SeasonAllSeason:
		t.MinTreadMm = p.AllSeasonMinTreadMm
		t.WarningTreadMm = p.AllSeasonWarningTreadMm
	default:
		return t, fmt.Errorf("unknown season %q", season)
	}
	return t, nil
}

// Validate checks all three seasonal threshold sets
func (p *TenantTyrePolicy) Validate() error {
	for _, season := range []Season{SeasonSummer, SeasonWinter, SeasonAllSeason} {
		t, err := p.ThresholdsFor(season)
		if err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", season, err)
		}
	}
	return nil
}
