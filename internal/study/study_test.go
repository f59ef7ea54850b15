package study

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valora/server/internal/valuation"
)

func fixedID() string { return "study-test-1" }

func newTestParams(t *testing.T) Params {
	t.Helper()

	var comparables []valuation.Comparable
	area, err := valuation.NewArea(1)
	require.NoError(t, err)
	for i, price := range []float64{4000, 4100, 4200} {
		money, err := valuation.NewMoney(price, "EUR")
		require.NoError(t, err)
		c, err := valuation.NewComparable(valuation.ComparableInput{
			ID:       fmt.Sprintf("comp-%d", i+1),
			Location: fmt.Sprintf("Av. Central %d", i+1),
			Area:     area,
			Price:    money,
			Status:   valuation.StatusSold,
			Scores:   map[string]float64{"bedrooms": 3},
		})
		require.NoError(t, err)
		comparables = append(comparables, c)
	}

	analysis, err := valuation.Analyze(comparables)
	require.NoError(t, err)

	targetArea, err := valuation.NewArea(90)
	require.NoError(t, err)
	valuations, err := valuation.CalculateValuations(analysis, targetArea, 0)
	require.NoError(t, err)

	return Params{
		Owner: "broker-7",
		Target: TargetProperty{
			Address: "Praça da Matriz 10",
			Area:    targetArea,
			Factors: map[string]float64{"bedrooms": 3},
		},
		EvaluationType: "market_comparison",
		FactorNames:    []string{"bedrooms"},
		Comparables:    comparables,
		Analysis:       analysis,
		Valuations:     valuations,
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "Missing owner", mutate: func(p *Params) { p.Owner = "" }},
		{name: "Missing address", mutate: func(p *Params) { p.Target.Address = "" }},
		{name: "Too few comparables", mutate: func(p *Params) { p.Comparables = p.Comparables[:2] }},
		{name: "No factor names", mutate: func(p *Params) { p.FactorNames = nil }},
		{name: "No valuations", mutate: func(p *Params) { p.Valuations = nil }},
		{name: "No analysis", mutate: func(p *Params) { p.Analysis = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := newTestParams(t)
			tt.mutate(&params)
			_, err := New(params, fixedID)
			var validationErr *valuation.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestNew_UsesInjectedIDGenerator(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)
	assert.Equal(t, "study-test-1", s.ID())
	assert.Equal(t, "broker-7", s.Owner())
	assert.False(t, s.CreatedAt().IsZero())
}

func TestStudy_SelectStandard(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)

	_, ok := s.SelectedStandard()
	assert.False(t, ok)

	require.NoError(t, s.SelectStandard(valuation.StandardRenovated))
	selected, ok := s.SelectedStandard()
	assert.True(t, ok)
	assert.Equal(t, valuation.StandardRenovated, selected)
}

func TestStudy_SelectUnknownStandardLeavesSelectionUnchanged(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)
	require.NoError(t, s.SelectStandard(valuation.StandardBasic))

	err = s.SelectStandard(valuation.Standard("renovted"))
	var businessErr *valuation.BusinessRuleError
	require.ErrorAs(t, err, &businessErr)
	assert.Contains(t, businessErr.Detail, "renovted")

	selected, ok := s.SelectedStandard()
	assert.True(t, ok)
	assert.Equal(t, valuation.StandardBasic, selected)
}

func TestStudy_ArtifactURLs(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)

	assert.Error(t, s.SetReportURL(""))
	assert.Error(t, s.SetSlidesURL(""))

	require.NoError(t, s.SetReportURL("https://reports.example/r/1"))
	require.NoError(t, s.SetSlidesURL("https://slides.example/s/1"))
	assert.Equal(t, "https://reports.example/r/1", s.ReportURL())
	assert.Equal(t, "https://slides.example/s/1", s.SlidesURL())
}

func TestStudy_ValuationRange(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)

	min, max := s.ValuationRange()
	valuations := s.Valuations()

	// The range spans the cheapest (original) and the priciest (high_end)
	// standards.
	assert.True(t, min.Equal(valuations[valuation.StandardOriginal].TotalValue()))
	assert.True(t, max.Equal(valuations[valuation.StandardHighEnd].TotalValue()))
}

func TestStudy_SnapshotRoundTrip(t *testing.T) {
	s, err := New(newTestParams(t), fixedID)
	require.NoError(t, err)
	require.NoError(t, s.SelectStandard(valuation.StandardModernized))
	require.NoError(t, s.SetReportURL("https://reports.example/r/2"))

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	rebuilt, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, s.ID(), rebuilt.ID())
	assert.Equal(t, s.Owner(), rebuilt.Owner())
	assert.Equal(t, s.Target().Address, rebuilt.Target().Address)
	assert.InDelta(t, s.Analysis().Mean(), rebuilt.Analysis().Mean(), 0.01)
	assert.Equal(t, len(s.Comparables()), len(rebuilt.Comparables()))
	assert.Equal(t, s.ReportURL(), rebuilt.ReportURL())

	selected, ok := rebuilt.SelectedStandard()
	require.True(t, ok)
	assert.Equal(t, valuation.StandardModernized, selected)

	originalMin, originalMax := s.ValuationRange()
	rebuiltMin, rebuiltMax := rebuilt.ValuationRange()
	assert.InDelta(t, originalMin.Amount(), rebuiltMin.Amount(), 0.01)
	assert.InDelta(t, originalMax.Amount(), rebuiltMax.Amount(), 0.01)
}
