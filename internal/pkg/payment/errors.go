package payment

import "errors"

var (
	// ErrPriceNotFound is returned when a checkout request references a price
	// that is not part of the configured catalog. No remote call is made.
	ErrPriceNotFound = errors.New("price not found")

	// ErrMissingSignature is returned when a webhook request carries no
	// signature header at all.
	ErrMissingSignature = errors.New("missing webhook signature")

	// ErrInvalidSignature is returned when the signature header does not match
	// the raw payload under the shared secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// ValidationError reports the first offending field of a request body. The
// message is deterministic for identical input so clients and tests can match
// on it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a field validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
