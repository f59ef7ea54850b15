package valuation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAnalysis returns an analysis whose retained mean price-per-area is
// exactly the given value.
func newTestAnalysis(t *testing.T, mean float64) *StatisticalAnalysis {
	t.Helper()
	analysis, err := Analyze(newTestComparables(t, []float64{mean, mean, mean}))
	require.NoError(t, err)
	require.Equal(t, mean, analysis.Mean())
	return analysis
}

func TestCalculateValuations_BaselineStandards(t *testing.T) {
	analysis := newTestAnalysis(t, 5000)
	area, err := NewArea(90)
	require.NoError(t, err)

	valuations, err := CalculateValuations(analysis, area, 0)
	require.NoError(t, err)
	require.Len(t, valuations, 5)

	renovated := valuations[StandardRenovated]
	assert.Equal(t, 5000.0, renovated.PricePerArea().Amount())
	assert.Equal(t, 450000.0, renovated.TotalValue().Amount())

	highEnd := valuations[StandardHighEnd]
	assert.Equal(t, 5500.0, highEnd.PricePerArea().Amount())
	assert.Equal(t, 495000.0, highEnd.TotalValue().Amount())

	original := valuations[StandardOriginal]
	assert.Equal(t, 4500.0, original.PricePerArea().Amount())
	assert.Equal(t, 405000.0, original.TotalValue().Amount())
}

func TestCalculateValuations_PerceptionScalesUniformly(t *testing.T) {
	analysis := newTestAnalysis(t, 5000)
	area, err := NewArea(90)
	require.NoError(t, err)

	baseline, err := CalculateValuations(analysis, area, 0)
	require.NoError(t, err)
	adjusted, err := CalculateValuations(analysis, area, 10)
	require.NoError(t, err)

	for _, standard := range StandardOrder {
		expected := baseline[standard].TotalValue().Amount() * 1.10
		assert.InDelta(t, expected, adjusted[standard].TotalValue().Amount(), 0.01,
			"standard %s", standard)
	}
}

func TestCalculateValuations_PerceptionBounds(t *testing.T) {
	analysis := newTestAnalysis(t, 5000)
	area, err := NewArea(90)
	require.NoError(t, err)

	var validationErr *ValidationError
	_, err = CalculateValuations(analysis, area, 50.01)
	assert.ErrorAs(t, err, &validationErr)

	_, err = CalculateValuations(analysis, area, -50.01)
	assert.ErrorAs(t, err, &validationErr)

	// Both bounds are inclusive.
	_, err = CalculateValuations(analysis, area, 50)
	assert.NoError(t, err)
	_, err = CalculateValuations(analysis, area, -50)
	assert.NoError(t, err)
}

func TestCalculateValuations_NilAnalysis(t *testing.T) {
	area, err := NewArea(90)
	require.NoError(t, err)

	_, err = CalculateValuations(nil, area, 0)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestValuation_JSONRoundTrip(t *testing.T) {
	analysis := newTestAnalysis(t, 5000)
	area, err := NewArea(90)
	require.NoError(t, err)

	valuations, err := CalculateValuations(analysis, area, 5)
	require.NoError(t, err)

	original := valuations[StandardModernized]
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Valuation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Standard(), decoded.Standard())
	assert.InDelta(t, original.PricePerArea().Amount(), decoded.PricePerArea().Amount(), 0.01)
	assert.InDelta(t, original.TotalValue().Amount(), decoded.TotalValue().Amount(), 0.01)
}

func TestValuation_UnmarshalRejectsUnknownStandard(t *testing.T) {
	var decoded Valuation
	err := json.Unmarshal([]byte(`{"standard":"luxury","price_per_area":{"amount":"1","currency":"EUR"},"total_value":{"amount":"1","currency":"EUR"}}`), &decoded)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
