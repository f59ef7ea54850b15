package valuation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestComparable builds a comparable with the given price, a 1 m² area
// so price-per-area equals the price, and the given factor scores.
func newTestComparable(t *testing.T, id string, price float64, scores map[string]float64) Comparable {
	t.Helper()
	area, err := NewArea(1)
	require.NoError(t, err)
	money, err := NewMoney(price, "EUR")
	require.NoError(t, err)
	c, err := NewComparable(ComparableInput{
		ID:       id,
		Location: "Rua das Flores " + id,
		Area:     area,
		Price:    money,
		Status:   StatusSold,
		Scores:   scores,
	})
	require.NoError(t, err)
	return c
}

func newTestComparables(t *testing.T, prices []float64) []Comparable {
	t.Helper()
	samples := make([]Comparable, len(prices))
	for i, price := range prices {
		samples[i] = newTestComparable(t, fmt.Sprintf("comp-%d", i+1), price, nil)
	}
	return samples
}

func TestHomogenize_MatchingProfileKeepsPrice(t *testing.T) {
	sample := newTestComparable(t, "c1", 250000, map[string]float64{"bedrooms": 3, "bathrooms": 2})
	target := map[string]float64{"bedrooms": 3, "bathrooms": 2}

	result, err := Homogenize([]Comparable{sample}, target)
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.True(t, result[0].Homogenized().Equal(sample.Price()))
}

func TestHomogenize_SuperiorComparableIsDiscounted(t *testing.T) {
	sample := newTestComparable(t, "c1", 100000, map[string]float64{"bedrooms": 4})
	target := map[string]float64{"bedrooms": 3}

	result, err := Homogenize([]Comparable{sample}, target)
	require.NoError(t, err)

	assert.Equal(t, 90000.0, result[0].Homogenized().Amount())
}

func TestHomogenize_InferiorComparableIsInflated(t *testing.T) {
	sample := newTestComparable(t, "c1", 100000, map[string]float64{"bedrooms": 2})
	target := map[string]float64{"bedrooms": 3}

	result, err := Homogenize([]Comparable{sample}, target)
	require.NoError(t, err)

	assert.Equal(t, 110000.0, result[0].Homogenized().Amount())
}

func TestHomogenize_AdjustmentsCompound(t *testing.T) {
	sample := newTestComparable(t, "c1", 100000, map[string]float64{"bedrooms": 4, "parking": 0})
	target := map[string]float64{"bedrooms": 3, "parking": 1}

	result, err := Homogenize([]Comparable{sample}, target)
	require.NoError(t, err)

	// One superior and one inferior factor: 100000 × 0.9 × 1.1.
	assert.Equal(t, 99000.0, result[0].Homogenized().Amount())
}

func TestHomogenize_UnsharedFactorsAreIgnored(t *testing.T) {
	sample := newTestComparable(t, "c1", 100000, map[string]float64{"pool": 1})
	target := map[string]float64{"bedrooms": 3}

	result, err := Homogenize([]Comparable{sample}, target)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, result[0].Homogenized().Amount())
}

func TestHomogenize_DoesNotMutateInput(t *testing.T) {
	sample := newTestComparable(t, "c1", 100000, map[string]float64{"bedrooms": 5})
	input := []Comparable{sample}

	_, err := Homogenize(input, map[string]float64{"bedrooms": 1})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, input[0].Homogenized().Amount())
	assert.Equal(t, 100000.0, sample.Price().Amount())
}

func TestHomogenize_ResultIsIndependentOfFactorOrder(t *testing.T) {
	// Many shared factors so the accumulated float product would drift at the
	// ULP level if the multiplication order ever varied between runs.
	scores := map[string]float64{
		"bedrooms": 4, "bathrooms": 1, "parking": 0, "balcony": 2,
		"floor": 9, "elevator": 0, "storage": 3, "garden": 1,
	}
	target := map[string]float64{
		"bedrooms": 3, "bathrooms": 2, "parking": 1, "balcony": 1,
		"floor": 5, "elevator": 1, "storage": 2, "garden": 2,
	}

	first, err := Homogenize([]Comparable{newTestComparable(t, "c1", 123456.78, scores)}, target)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		sample := newTestComparable(t, "c1", 123456.78, scores)
		result, err := Homogenize([]Comparable{sample}, target)
		require.NoError(t, err)
		assert.True(t, result[0].Homogenized().Equal(first[0].Homogenized()))
	}
}
