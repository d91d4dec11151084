package domain

import "errors"

var (
	ErrProviderUnavailable = errors.New("billing_provider_unavailable")
)
