package domain

// ValidationError reports input that violates a FinancialRecord invariant.
// It is always recoverable by the user resubmitting corrected input and is
// never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.cause }
