package valuation

import "fmt"

// ValidationError reports input that violates an invariant of the valuation
// domain. These failures are deterministic and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// BusinessRuleError reports an operation that is well-formed but not allowed
// by a business rule, such as selecting a finish standard that was never
// computed.
type BusinessRuleError struct {
	Rule   string
	Detail string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Detail)
}

// NewBusinessRuleError builds a BusinessRuleError for the given rule.
func NewBusinessRuleError(rule, detail string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Detail: detail}
}
