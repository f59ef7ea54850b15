package valuation

import (
	"encoding/json"
	"math"
	"sort"
)

// Classification bands of the two-pass trimmed filter, relative to the
// median of the relevant subset.
const (
	outlierLowerBound  = 0.6
	outlierUpperBound  = 1.4
	excludedLowerBound = 0.8
	excludedUpperBound = 1.2
)

// minRetainedSamples is the smallest subset the filter may hand to the final
// statistics; below it the filter falls back to the unfiltered sample set.
const minRetainedSamples = 3

// reliableCVThreshold is the coefficient-of-variation ceiling, in percent,
// under which an analysis counts as reliable.
const reliableCVThreshold = 30

// Precision grades an analysis by its coefficient of variation. It is
// descriptive only and never gates the computation.
type Precision string

const (
	PrecisionExcellent  Precision = "excellent"
	PrecisionGood       Precision = "good"
	PrecisionAcceptable Precision = "acceptable"
	PrecisionLow        Precision = "low"
)

// StatisticalAnalysis holds the result of the two-pass trimmed statistics
// over a set of homogenized comparables. Immutable once built.
type StatisticalAnalysis struct {
	samples  []Comparable
	currency string

	mean   float64
	median float64
	stdDev float64
	cv     float64
	min    float64
	max    float64

	outliers []Comparable
	excluded []Comparable
	retained []Comparable

	// degraded marks the low-sample fallback where the filter was discarded
	// and the statistics cover the full unfiltered sample set.
	degraded bool
}

// Analyze runs the two-pass trimmed statistics over homogenized samples.
//
// Pass 1 computes mean/median/stddev/CV over all price-per-area values and
// rejects as outliers the samples outside [0.6, 1.4] times the median. When
// at least three normal candidates remain, pass 2 rejects as excluded the
// candidates outside [0.8, 1.2] times the candidates' median and the final
// statistics cover only the retained subset. With fewer than three normal
// candidates, or fewer than three retained, the classification is discarded
// and the pass-1 statistics over all samples are returned with the degraded
// flag set.
func Analyze(samples []Comparable) (*StatisticalAnalysis, error) {
	if len(samples) == 0 {
		return nil, NewValidationError("analysis.samples", "at least one homogenized sample is required")
	}
	currency := samples[0].Homogenized().Currency()
	for _, sample := range samples[1:] {
		if sample.Homogenized().Currency() != currency {
			return nil, NewValidationError("analysis.samples", "samples must share a single currency")
		}
	}

	values := pricePerAreaValues(samples)
	firstPass := describe(values)
	if firstPass.mean == 0 {
		return nil, NewValidationError("analysis.samples", "mean price per area is zero")
	}

	analysis := &StatisticalAnalysis{
		samples:  copySamples(samples),
		currency: currency,
	}

	var candidates, outliers []Comparable
	for _, sample := range samples {
		v := sample.PricePerArea()
		if v < outlierLowerBound*firstPass.median || v > outlierUpperBound*firstPass.median {
			outliers = append(outliers, sample)
		} else {
			candidates = append(candidates, sample)
		}
	}

	if len(candidates) >= minRetainedSamples {
		candidateMedian := describe(pricePerAreaValues(candidates)).median
		var retained, excluded []Comparable
		for _, sample := range candidates {
			v := sample.PricePerArea()
			if v < excludedLowerBound*candidateMedian || v > excludedUpperBound*candidateMedian {
				excluded = append(excluded, sample)
			} else {
				retained = append(retained, sample)
			}
		}

		if len(retained) >= minRetainedSamples {
			analysis.outliers = outliers
			analysis.excluded = excluded
			analysis.retained = retained
			analysis.apply(describe(pricePerAreaValues(retained)))
			return analysis, nil
		}
	}

	// Too little data to filter: revert to the unfiltered statistics so a
	// result always exists, flagged as degraded.
	analysis.retained = copySamples(samples)
	analysis.degraded = true
	analysis.apply(firstPass)
	return analysis, nil
}

func (a *StatisticalAnalysis) apply(d description) {
	a.mean = d.mean
	a.median = d.median
	a.stdDev = d.stdDev
	a.cv = d.cv
	a.min = d.min
	a.max = d.max
}

// Samples returns a copy of the full input sample set.
func (a *StatisticalAnalysis) Samples() []Comparable { return copySamples(a.samples) }

// Outliers returns the samples rejected at the first pass.
func (a *StatisticalAnalysis) Outliers() []Comparable { return copySamples(a.outliers) }

// Excluded returns the samples rejected at the second pass.
func (a *StatisticalAnalysis) Excluded() []Comparable { return copySamples(a.excluded) }

// Retained returns the samples behind the final statistics.
func (a *StatisticalAnalysis) Retained() []Comparable { return copySamples(a.retained) }

// Mean returns the mean price per area of the retained subset.
func (a *StatisticalAnalysis) Mean() float64 { return a.mean }

// Median returns the median price per area of the retained subset.
func (a *StatisticalAnalysis) Median() float64 { return a.median }

// StdDev returns the population standard deviation of the retained subset.
func (a *StatisticalAnalysis) StdDev() float64 { return a.stdDev }

// CV returns the coefficient of variation in percent.
func (a *StatisticalAnalysis) CV() float64 { return a.cv }

// Min returns the smallest retained price per area.
func (a *StatisticalAnalysis) Min() float64 { return a.min }

// Max returns the largest retained price per area.
func (a *StatisticalAnalysis) Max() float64 { return a.max }

// Currency returns the shared currency of the analyzed samples.
func (a *StatisticalAnalysis) Currency() string { return a.currency }

// Degraded reports whether the low-sample fallback discarded the filter.
func (a *StatisticalAnalysis) Degraded() bool { return a.degraded }

// IsReliable reports whether the final CV is under 30% with at least three
// retained samples.
func (a *StatisticalAnalysis) IsReliable() bool {
	return a.cv < reliableCVThreshold && len(a.retained) >= minRetainedSamples
}

// Precision grades the final coefficient of variation.
func (a *StatisticalAnalysis) Precision() Precision {
	switch {
	case a.cv <= 10:
		return PrecisionExcellent
	case a.cv <= 20:
		return PrecisionGood
	case a.cv <= 30:
		return PrecisionAcceptable
	default:
		return PrecisionLow
	}
}

type analysisJSON struct {
	Samples  []Comparable `json:"samples"`
	Currency string       `json:"currency"`
	Mean     float64      `json:"mean"`
	Median   float64      `json:"median"`
	StdDev   float64      `json:"std_dev"`
	CV       float64      `json:"cv"`
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
	Outliers []Comparable `json:"outliers"`
	Excluded []Comparable `json:"excluded"`
	Retained []Comparable `json:"retained"`
	Degraded bool         `json:"degraded"`
}

func (a *StatisticalAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(analysisJSON{
		Samples:  a.samples,
		Currency: a.currency,
		Mean:     a.mean,
		Median:   a.median,
		StdDev:   a.stdDev,
		CV:       a.cv,
		Min:      a.min,
		Max:      a.max,
		Outliers: a.outliers,
		Excluded: a.excluded,
		Retained: a.retained,
		Degraded: a.degraded,
	})
}

func (a *StatisticalAnalysis) UnmarshalJSON(data []byte) error {
	var raw analysisJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Retained) == 0 {
		return NewValidationError("analysis.retained", "at least one retained sample is required")
	}
	if raw.CV < 0 || math.IsNaN(raw.CV) || math.IsInf(raw.CV, 0) {
		return NewValidationError("analysis.cv", "coefficient of variation must be non-negative and finite")
	}
	*a = StatisticalAnalysis{
		samples:  raw.Samples,
		currency: raw.Currency,
		mean:     raw.Mean,
		median:   raw.Median,
		stdDev:   raw.StdDev,
		cv:       raw.CV,
		min:      raw.Min,
		max:      raw.Max,
		outliers: raw.Outliers,
		excluded: raw.Excluded,
		retained: raw.Retained,
		degraded: raw.Degraded,
	}
	return nil
}

type description struct {
	mean   float64
	median float64
	stdDev float64
	cv     float64
	min    float64
	max    float64
}

func describe(values []float64) description {
	var d description
	n := float64(len(values))

	var sum float64
	d.min = values[0]
	d.max = values[0]
	for _, v := range values {
		sum += v
		if v < d.min {
			d.min = v
		}
		if v > d.max {
			d.max = v
		}
	}
	d.mean = sum / n

	var squaredDiff float64
	for _, v := range values {
		squaredDiff += (v - d.mean) * (v - d.mean)
	}
	d.stdDev = math.Sqrt(squaredDiff / n)

	d.median = median(values)
	if d.mean != 0 {
		d.cv = 100 * d.stdDev / d.mean
	}
	return d
}

// median uses the classic middle element, or the average of the two middle
// elements for even counts.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func pricePerAreaValues(samples []Comparable) []float64 {
	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.PricePerArea()
	}
	return values
}

func copySamples(samples []Comparable) []Comparable {
	result := make([]Comparable, len(samples))
	copy(result, samples)
	return result
}
