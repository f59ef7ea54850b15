package valuation

import (
	"encoding/json"
	"math"
)

// Standard is one of the five fixed finish-standard tiers. Each tier carries
// a fixed multiplier relative to the fully renovated baseline of 1.0.
type Standard string

const (
	StandardOriginal   Standard = "original"
	StandardBasic      Standard = "basic"
	StandardRenovated  Standard = "renovated"
	StandardModernized Standard = "modernized"
	StandardHighEnd    Standard = "high_end"
)

// StandardOrder is the fixed iteration order for the five standards. Range
// over this instead of the valuation map so results never depend on map
// iteration order.
var StandardOrder = []Standard{
	StandardOriginal,
	StandardBasic,
	StandardRenovated,
	StandardModernized,
	StandardHighEnd,
}

var standardMultipliers = map[Standard]float64{
	StandardOriginal:   0.90,
	StandardBasic:      0.95,
	StandardRenovated:  1.00,
	StandardModernized: 1.05,
	StandardHighEnd:    1.10,
}

// maxPerceptionAdjustment bounds the perception percentage at ±50.
const maxPerceptionAdjustment = 50

// IsValidStandard reports whether the tag is one of the five fixed standards.
func IsValidStandard(tag Standard) bool {
	_, ok := standardMultipliers[tag]
	return ok
}

// Valuation is the computed value of the target property under one finish
// standard. Immutable; one instance per standard per run.
type Valuation struct {
	standard     Standard
	pricePerArea Money
	totalValue   Money
}

func (v Valuation) Standard() Standard  { return v.standard }
func (v Valuation) PricePerArea() Money { return v.pricePerArea }
func (v Valuation) TotalValue() Money   { return v.totalValue }

type valuationJSON struct {
	Standard     Standard `json:"standard"`
	PricePerArea Money    `json:"price_per_area"`
	TotalValue   Money    `json:"total_value"`
}

func (v Valuation) MarshalJSON() ([]byte, error) {
	return json.Marshal(valuationJSON{
		Standard:     v.standard,
		PricePerArea: v.pricePerArea,
		TotalValue:   v.totalValue,
	})
}

func (v *Valuation) UnmarshalJSON(data []byte) error {
	var raw valuationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !IsValidStandard(raw.Standard) {
		return NewValidationError("valuation.standard", "unknown finish standard: "+string(raw.Standard))
	}
	*v = Valuation{
		standard:     raw.Standard,
		pricePerArea: raw.PricePerArea,
		totalValue:   raw.TotalValue,
	}
	return nil
}

// CalculateValuations converts the analysis base price per area into one
// Valuation per finish standard for the target area. The perception
// adjustment is a percentage in [-50, 50] applied uniformly across all
// standards.
func CalculateValuations(analysis *StatisticalAnalysis, targetArea Area, perception float64) (map[Standard]Valuation, error) {
	if analysis == nil {
		return nil, NewValidationError("calculator.analysis", "analysis is required")
	}
	if math.IsNaN(perception) || math.IsInf(perception, 0) ||
		perception < -maxPerceptionAdjustment || perception > maxPerceptionAdjustment {
		return nil, NewValidationError("calculator.perception", "perception adjustment must be between -50 and 50")
	}

	base := analysis.Mean()
	valuations := make(map[Standard]Valuation, len(StandardOrder))
	for _, standard := range StandardOrder {
		effective := base * standardMultipliers[standard] * (1 + perception/100)
		pricePerArea, err := NewMoney(effective, analysis.Currency())
		if err != nil {
			return nil, err
		}
		totalValue, err := pricePerArea.MulFactor(targetArea.Value())
		if err != nil {
			return nil, err
		}
		valuations[standard] = Valuation{
			standard:     standard,
			pricePerArea: pricePerArea,
			totalValue:   totalValue,
		}
	}
	return valuations, nil
}
