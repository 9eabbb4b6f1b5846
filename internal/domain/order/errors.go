package order

import "fmt"

// FailureKind classifies submission failures for retry and display decisions.
type FailureKind string

const (
	// FailureValidation means the order payload was rejected server-side.
	FailureValidation FailureKind = "validation"
	// FailureDeclined means the payment was refused.
	FailureDeclined FailureKind = "payment_declined"
	// FailureTransport covers network errors and timeouts; always retryable.
	FailureTransport FailureKind = "transport"
)

// SubmitError is a structured submission failure. The checkout session
// survives it: the user retries from Review without re-entering data.
type SubmitError struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order submission failed (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("order submission failed (%s)", e.Kind)
}

func (e *SubmitError) Unwrap() error { return e.Cause }

// Retryable reports whether the user should be offered a retry.
// Transport failures always are; a declined payment can be retried after
// changing the method; validation failures need the payload fixed first.
func (e *SubmitError) Retryable() bool {
	return e.Kind == FailureTransport || e.Kind == FailureDeclined
}
