package valuation

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// MaxArea is the largest floor area accepted, in square meters.
const MaxArea = 1_000_000

// Money is an immutable amount in a single currency, rounded to two decimals.
// Arithmetic between two Money values requires matching currencies.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates and builds a Money value.
func NewMoney(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, NewValidationError("money.amount", "amount must be finite")
	}
	if amount < 0 {
		return Money{}, NewValidationError("money.amount", "amount must not be negative")
	}
	if currency == "" {
		return Money{}, NewValidationError("money.currency", "currency is required")
	}
	return Money{
		amount:   decimal.NewFromFloat(amount).Round(2),
		currency: currency,
	}, nil
}

// Amount returns the rounded amount as a float64.
func (m Money) Amount() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Currency returns the currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns a new Money holding the sum of both amounts.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, NewValidationError("money.currency", "currency mismatch: "+m.currency+" vs "+other.currency)
	}
	return Money{amount: m.amount.Add(other.amount).Round(2), currency: m.currency}, nil
}

// Sub returns a new Money holding the difference. A negative result violates
// the non-negative invariant and fails.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, NewValidationError("money.currency", "currency mismatch: "+m.currency+" vs "+other.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, NewValidationError("money.amount", "subtraction result must not be negative")
	}
	return Money{amount: result.Round(2), currency: m.currency}, nil
}

// MulFactor scales the amount by a non-negative finite factor.
func (m Money) MulFactor(factor float64) (Money, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return Money{}, NewValidationError("money.factor", "factor must be finite and non-negative")
	}
	return Money{
		amount:   m.amount.Mul(decimal.NewFromFloat(factor)).Round(2),
		currency: m.currency,
	}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal reports whether both values hold the same amount and currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, _ := raw.Amount.Float64()
	parsed, err := NewMoney(f, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Percentage is an immutable value in [0, 100], rounded to two decimals.
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates and builds a Percentage.
func NewPercentage(value float64) (Percentage, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Percentage{}, NewValidationError("percentage.value", "value must be finite")
	}
	if value < 0 || value > 100 {
		return Percentage{}, NewValidationError("percentage.value", "value must be between 0 and 100")
	}
	return Percentage{value: decimal.NewFromFloat(value).Round(2)}, nil
}

// Value returns the percentage as a float64 in [0, 100].
func (p Percentage) Value() float64 {
	f, _ := p.value.Float64()
	return f
}

// Factor returns the percentage as a decimal factor in [0, 1].
func (p Percentage) Factor() float64 {
	f, _ := p.value.Div(decimal.NewFromInt(100)).Float64()
	return f
}

// Add returns a new Percentage; the result must stay inside [0, 100].
func (p Percentage) Add(other Percentage) (Percentage, error) {
	return NewPercentage(p.Value() + other.Value())
}

// Sub returns a new Percentage; the result must stay inside [0, 100].
func (p Percentage) Sub(other Percentage) (Percentage, error) {
	return NewPercentage(p.Value() - other.Value())
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value)
}

func (p *Percentage) UnmarshalJSON(data []byte) error {
	var raw decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, _ := raw.Float64()
	parsed, err := NewPercentage(f)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Area is an immutable floor area in square meters, rounded to two decimals.
type Area struct {
	value decimal.Decimal
}

// NewArea validates and builds an Area.
func NewArea(value float64) (Area, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Area{}, NewValidationError("area.value", "value must be finite")
	}
	if value <= 0 {
		return Area{}, NewValidationError("area.value", "value must be positive")
	}
	if value > MaxArea {
		return Area{}, NewValidationError("area.value", "value exceeds maximum supported area")
	}
	return Area{value: decimal.NewFromFloat(value).Round(2)}, nil
}

// Value returns the area in square meters.
func (a Area) Value() float64 {
	f, _ := a.value.Float64()
	return f
}

func (a Area) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value)
}

func (a *Area) UnmarshalJSON(data []byte) error {
	var raw decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, _ := raw.Float64()
	parsed, err := NewArea(f)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
