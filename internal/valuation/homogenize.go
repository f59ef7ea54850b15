package valuation

import "sort"

// adjustmentStep is the per-factor adjustment applied during homogenization.
const adjustmentStep = 0.10

// Homogenize adjusts each comparable's price toward the target factor
// profile and returns new instances; the input list is never mutated.
//
// A comparable that scores above the target on a factor is superior to the
// subject property, so its price overstates the subject's value and gets
// discounted. An inferior comparable is inflated. Factors present on only
// one side are ignored.
func Homogenize(samples []Comparable, targetProfile map[string]float64) ([]Comparable, error) {
	result := make([]Comparable, 0, len(samples))
	for _, sample := range samples {
		// Walk factors in sorted order so the accumulated float product is
		// identical across runs regardless of map iteration order.
		names := make([]string, 0, len(sample.scores))
		for name := range sample.scores {
			names = append(names, name)
		}
		sort.Strings(names)

		factor := 1.0
		for _, name := range names {
			sampleScore := sample.scores[name]
			targetScore, ok := targetProfile[name]
			if !ok {
				continue
			}
			switch {
			case sampleScore > targetScore:
				factor *= 1 - adjustmentStep
			case sampleScore < targetScore:
				factor *= 1 + adjustmentStep
			}
		}
		homogenized, err := sample.price.MulFactor(factor)
		if err != nil {
			return nil, err
		}
		result = append(result, sample.withHomogenized(homogenized))
	}
	return result, nil
}
