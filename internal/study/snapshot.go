package study

import (
	"time"

	"valora/server/internal/valuation"
)

// Snapshot is the lossless serialized form of a Study, used by the
// persistence and report-generation collaborators.
type Snapshot struct {
	ID             string                                     `json:"id"`
	Owner          string                                     `json:"owner"`
	Target         TargetProperty                             `json:"target"`
	EvaluationType string                                     `json:"evaluation_type"`
	FactorNames    []string                                   `json:"factor_names"`
	Comparables    []valuation.Comparable                     `json:"comparables"`
	Analysis       *valuation.StatisticalAnalysis             `json:"analysis"`
	Valuations     map[valuation.Standard]valuation.Valuation `json:"valuations"`
	Selected       *valuation.Standard                        `json:"selected_standard,omitempty"`
	ReportURL      string                                     `json:"report_url,omitempty"`
	SlidesURL      string                                     `json:"slides_url,omitempty"`
	CreatedAt      time.Time                                  `json:"created_at"`
	UpdatedAt      time.Time                                  `json:"updated_at"`
}

// Snapshot returns the serialized form of the study.
func (s *Study) Snapshot() Snapshot {
	var selected *valuation.Standard
	if s.selected != nil {
		v := *s.selected
		selected = &v
	}
	return Snapshot{
		ID:             s.id,
		Owner:          s.owner,
		Target:         copyTarget(s.target),
		EvaluationType: s.evaluationType,
		FactorNames:    copyStrings(s.factorNames),
		Comparables:    copyComparables(s.comparables),
		Analysis:       s.analysis,
		Valuations:     copyValuations(s.valuations),
		Selected:       selected,
		ReportURL:      s.reportURL,
		SlidesURL:      s.slidesURL,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
}

// FromSnapshot rebuilds a Study from its serialized form, re-running the
// construction validation.
func FromSnapshot(snap Snapshot) (*Study, error) {
	if snap.ID == "" {
		return nil, valuation.NewValidationError("study.id", "id is required")
	}
	rebuilt, err := New(Params{
		Owner:          snap.Owner,
		Target:         snap.Target,
		EvaluationType: snap.EvaluationType,
		FactorNames:    snap.FactorNames,
		Comparables:    snap.Comparables,
		Analysis:       snap.Analysis,
		Valuations:     snap.Valuations,
	}, func() string { return snap.ID })
	if err != nil {
		return nil, err
	}
	if snap.Selected != nil {
		if err := rebuilt.SelectStandard(*snap.Selected); err != nil {
			return nil, err
		}
	}
	rebuilt.reportURL = snap.ReportURL
	rebuilt.slidesURL = snap.SlidesURL
	rebuilt.createdAt = snap.CreatedAt
	rebuilt.updatedAt = snap.UpdatedAt
	return rebuilt, nil
}
