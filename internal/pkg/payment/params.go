package payment

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var paramValidate = validator.New()

// fieldCheck validates one request field. Checks run in declaration order and
// the first failure wins, so the error text for a given request is stable.
type fieldCheck struct {
	name  string
	check func(r CreateCheckoutSessionRequest) *ValidationError
}

var checkoutFieldChecks = []fieldCheck{
	{name: "priceId", check: func(r CreateCheckoutSessionRequest) *ValidationError {
		return requireString("priceId", r.PriceID)
	}},
	{name: "mode", check: func(r CreateCheckoutSessionRequest) *ValidationError {
		return requireOneOf("mode", r.Mode, ModePayment, ModeSubscription)
	}},
	{name: "successUrl", check: func(r CreateCheckoutSessionRequest) *ValidationError {
		return requireURL("successUrl", r.SuccessURL)
	}},
	{name: "cancelUrl", check: func(r CreateCheckoutSessionRequest) *ValidationError {
		return requireURL("cancelUrl", r.CancelURL)
	}},
}

// ValidateCheckoutParams checks the request body before any remote call or
// persistence write happens. A missing field is a validation error, never a
// fault.
func ValidateCheckoutParams(r CreateCheckoutSessionRequest) error {
	for _, fc := range checkoutFieldChecks {
		if verr := fc.check(r); verr != nil {
			return verr
		}
	}
	return nil
}

func requireString(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("missing required field: %s", field),
		}
	}
	return nil
}

func requireOneOf(field, value string, allowed ...string) *ValidationError {
	if verr := requireString(field, value); verr != nil {
		return verr
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid value for field %s: must be one of %s", field, strings.Join(allowed, ", ")),
	}
}

func requireURL(field, value string) *ValidationError {
	if verr := requireString(field, value); verr != nil {
		return verr
	}
	if err := paramValidate.Var(value, "url"); err != nil {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid value for field %s: must be a valid URL", field),
		}
	}
	return nil
}
