package expense

import "errors"

var (
	// ErrInvalidInput indicates manual input that could not be parsed as a
	// JSON object.
	ErrInvalidInput = errors.New("input is not a valid JSON object")

	// ErrMissingField indicates an entry without a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount indicates an amount that is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnsupportedCurrency indicates a currency with no conversion rate
	// into the settlement currency.
	ErrUnsupportedCurrency = errors.New("no conversion rate configured for currency")
)
