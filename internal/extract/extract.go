// Package extract turns raw submission payloads into candidate financial
// records. Three front doors share the domain validator as a common funnel:
// slash-style direct commands, the strict JSON the text oracle is
// schema-bound to, and the KEY: value block the vision oracle produces.
package extract

// ExtractionError reports oracle output that is malformed, empty, or violates
// the agreed shape. It is never retried automatically: a deterministic schema
// violation would fail the same way on every attempt.
type ExtractionError struct {
	Reason string
	cause  error
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.cause }

// WrapError builds an ExtractionError around an underlying failure.
func WrapError(reason string, cause error) *ExtractionError {
	return &ExtractionError{Reason: reason, cause: cause}
}
