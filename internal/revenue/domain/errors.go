package domain

import "errors"

var (
	// ErrNoBillingTerms marks a record without usable price or cadence. It contributes 0.
	ErrNoBillingTerms       = errors.New("no_billing_terms")
	ErrMalformedBillingData = errors.New("malformed_billing_data")
	ErrUnknownProcessor     = errors.New("unknown_processor")
	ErrCalculationFailed    = errors.New("calculation_failed")
	ErrInvalidPeriod        = errors.New("invalid_period")
)
