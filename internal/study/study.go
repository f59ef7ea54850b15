// Package study owns the valuation study aggregate: one user-initiated
// comparative-market study, from submitted comparables to per-standard
// valuations and report artifacts.
package study

import (
	"time"

	"github.com/google/uuid"

	"valora/server/internal/valuation"
)

// minComparables is the smallest comparable set a study accepts.
const minComparables = 3

// IDGenerator produces study identifiers. Tests inject a deterministic one;
// production uses NewUUID.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// TargetProperty describes the subject of a study.
type TargetProperty struct {
	Address   string             `json:"address"`
	Area      valuation.Area     `json:"area"`
	Factors   map[string]float64 `json:"factors"`
	Latitude  *float64           `json:"latitude,omitempty"`
	Longitude *float64           `json:"longitude,omitempty"`
}

// Study is the aggregate for one valuation study. The comparable list,
// analysis and valuations are fixed at construction; only the selected
// standard, artifact URLs and timestamps change afterward.
type Study struct {
	id             string
	owner          string
	target         TargetProperty
	evaluationType string
	factorNames    []string
	comparables    []valuation.Comparable
	analysis       *valuation.StatisticalAnalysis
	valuations     map[valuation.Standard]valuation.Valuation
	selected       *valuation.Standard
	reportURL      string
	slidesURL      string
	createdAt      time.Time
	updatedAt      time.Time
}

// Params carries everything needed to build a Study.
type Params struct {
	Owner          string
	Target         TargetProperty
	EvaluationType string
	FactorNames    []string
	Comparables    []valuation.Comparable
	Analysis       *valuation.StatisticalAnalysis
	Valuations     map[valuation.Standard]valuation.Valuation
}

// New validates and builds a Study, generating its identifier.
func New(params Params, generateID IDGenerator) (*Study, error) {
	if generateID == nil {
		generateID = NewUUID
	}
	if params.Owner == "" {
		return nil, valuation.NewValidationError("study.owner", "owner is required")
	}
	if params.Target.Address == "" {
		return nil, valuation.NewValidationError("study.target", "target address is required")
	}
	if len(params.Comparables) < minComparables {
		return nil, valuation.NewValidationError("study.comparables", "at least 3 comparables are required")
	}
	if len(params.FactorNames) == 0 {
		return nil, valuation.NewValidationError("study.factors", "at least one factor name is required")
	}
	if len(params.Valuations) == 0 {
		return nil, valuation.NewValidationError("study.valuations", "at least one valuation is required")
	}
	if params.Analysis == nil {
		return nil, valuation.NewValidationError("study.analysis", "statistical analysis is required")
	}
	currency := params.Comparables[0].Price().Currency()
	for _, comparable := range params.Comparables[1:] {
		if comparable.Price().Currency() != currency {
			return nil, valuation.NewValidationError("study.comparables", "comparable prices must share a single currency")
		}
	}

	now := time.Now().UTC()
	return &Study{
		id:             generateID(),
		owner:          params.Owner,
		target:         copyTarget(params.Target),
		evaluationType: params.EvaluationType,
		factorNames:    copyStrings(params.FactorNames),
		comparables:    copyComparables(params.Comparables),
		analysis:       params.Analysis,
		valuations:     copyValuations(params.Valuations),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (s *Study) ID() string                               { return s.id }
func (s *Study) Owner() string                            { return s.owner }
func (s *Study) EvaluationType() string                   { return s.evaluationType }
func (s *Study) Analysis() *valuation.StatisticalAnalysis { return s.analysis }
func (s *Study) ReportURL() string                        { return s.reportURL }
func (s *Study) SlidesURL() string                        { return s.slidesURL }
func (s *Study) CreatedAt() time.Time                     { return s.createdAt }
func (s *Study) UpdatedAt() time.Time                     { return s.updatedAt }

// Target returns a copy of the target property description.
func (s *Study) Target() TargetProperty { return copyTarget(s.target) }

// FactorNames returns a copy of the factor names used by the study.
func (s *Study) FactorNames() []string { return copyStrings(s.factorNames) }

// Comparables returns a copy of the comparable list.
func (s *Study) Comparables() []valuation.Comparable { return copyComparables(s.comparables) }

// Valuations returns a copy of the per-standard valuation map.
func (s *Study) Valuations() map[valuation.Standard]valuation.Valuation {
	return copyValuations(s.valuations)
}

// SelectedStandard returns the selected finish standard, or false when none
// has been selected yet.
func (s *Study) SelectedStandard() (valuation.Standard, bool) {
	if s.selected == nil {
		return "", false
	}
	return *s.selected, true
}

// SelectStandard records the chosen finish standard. Choosing a tag with no
// computed valuation fails with a BusinessRuleError and leaves the current
// selection unchanged.
func (s *Study) SelectStandard(tag valuation.Standard) error {
	if _, ok := s.valuations[tag]; !ok {
		return valuation.NewBusinessRuleError("standard_selection", "no valuation computed for standard "+string(tag))
	}
	selected := tag
	s.selected = &selected
	s.updatedAt = time.Now().UTC()
	return nil
}

// SetReportURL attaches the generated report artifact.
func (s *Study) SetReportURL(url string) error {
	if url == "" {
		return valuation.NewValidationError("study.report_url", "report URL must not be empty")
	}
	s.reportURL = url
	s.updatedAt = time.Now().UTC()
	return nil
}

// SetSlidesURL attaches the generated slide deck artifact.
func (s *Study) SetSlidesURL(url string) error {
	if url == "" {
		return valuation.NewValidationError("study.slides_url", "slides URL must not be empty")
	}
	s.slidesURL = url
	s.updatedAt = time.Now().UTC()
	return nil
}

// ValuationRange returns the smallest and largest total value across the
// computed standards, walking the fixed standard order so ties resolve
// deterministically.
func (s *Study) ValuationRange() (min, max valuation.Money) {
	first := true
	for _, standard := range valuation.StandardOrder {
		v, ok := s.valuations[standard]
		if !ok {
			continue
		}
		total := v.TotalValue()
		if first {
			min, max = total, total
			first = false
			continue
		}
		if total.Amount() < min.Amount() {
			min = total
		}
		if total.Amount() > max.Amount() {
			max = total
		}
	}
	return min, max
}

func copyTarget(t TargetProperty) TargetProperty {
	result := t
	result.Factors = make(map[string]float64, len(t.Factors))
	for name, score := range t.Factors {
		result.Factors[name] = score
	}
	if t.Latitude != nil {
		lat := *t.Latitude
		result.Latitude = &lat
	}
	if t.Longitude != nil {
		lon := *t.Longitude
		result.Longitude = &lon
	}
	return result
}

func copyStrings(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func copyComparables(samples []valuation.Comparable) []valuation.Comparable {
	result := make([]valuation.Comparable, len(samples))
	copy(result, samples)
	return result
}

func copyValuations(valuations map[valuation.Standard]valuation.Valuation) map[valuation.Standard]valuation.Valuation {
	result := make(map[valuation.Standard]valuation.Valuation, len(valuations))
	for standard, v := range valuations {
		result[standard] = v
	}
	return result
}
