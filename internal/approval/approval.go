// Package approval implements the payment-approval calculator: a direct
// percentage comparison between a requested installment and the buyer's
// income commitment capacity.
package approval

import (
	"math"

	"valora/server/internal/valuation"
)

// DefaultCommitmentLimit is the share of monthly income, in percent, that
// installments may consume when the caller does not override it.
const DefaultCommitmentLimit = 30

// Request carries the figures for one approval check. All monetary values
// share the installment's currency.
type Request struct {
	MonthlyIncome      valuation.Money
	MonthlyObligations valuation.Money
	Installment        valuation.Money
	// CommitmentLimit in percent; zero means DefaultCommitmentLimit.
	CommitmentLimit float64
}

// Result reports the outcome of an approval check.
type Result struct {
	Approved        bool            `json:"approved"`
	Capacity        valuation.Money `json:"capacity"`
	Margin          valuation.Money `json:"margin"`
	CommittedIncome float64         `json:"committed_income_pct"`
	CommitmentLimit float64         `json:"commitment_limit_pct"`
}

// Evaluate runs the percentage comparison. The installment is approved when
// it fits inside the income capacity left after existing obligations.
func Evaluate(req Request) (Result, error) {
	limit := req.CommitmentLimit
	if limit == 0 {
		limit = DefaultCommitmentLimit
	}
	if math.IsNaN(limit) || limit <= 0 || limit > 100 {
		return Result{}, valuation.NewValidationError("approval.commitment_limit", "commitment limit must be in (0, 100]")
	}
	if req.MonthlyIncome.IsZero() {
		return Result{}, valuation.NewValidationError("approval.monthly_income", "monthly income must be positive")
	}
	if req.Installment.IsZero() {
		return Result{}, valuation.NewValidationError("approval.installment", "installment must be positive")
	}
	currency := req.MonthlyIncome.Currency()
	if req.MonthlyObligations.Currency() != currency || req.Installment.Currency() != currency {
		return Result{}, valuation.NewValidationError("approval.currency", "all amounts must share a single currency")
	}

	allowance, err := req.MonthlyIncome.MulFactor(limit / 100)
	if err != nil {
		return Result{}, err
	}
	capacity, err := allowance.Sub(req.MonthlyObligations)
	if err != nil {
		// Obligations already exceed the allowance: zero capacity, rejected.
		capacity, _ = valuation.NewMoney(0, req.MonthlyIncome.Currency())
	}

	result := Result{
		Capacity:        capacity,
		CommittedIncome: round2(100 * (req.MonthlyObligations.Amount() + req.Installment.Amount()) / req.MonthlyIncome.Amount()),
		CommitmentLimit: limit,
	}

	margin, err := capacity.Sub(req.Installment)
	if err != nil {
		result.Approved = false
		result.Margin, _ = valuation.NewMoney(0, req.Installment.Currency())
		return result, nil
	}
	result.Approved = true
	result.Margin = margin
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
