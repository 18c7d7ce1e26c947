package domain

import "errors"

var (
	// ErrInvalidOptions indicates an engine was constructed with bad settings.
	ErrInvalidOptions = errors.New("invalid engine options")

	// ErrClassifierUnavailable indicates the NLI backend cannot be reached.
	// The contradiction engine falls back to rule-based scoring.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrTaxonomyNotFound indicates the reference taxonomy file is missing.
	ErrTaxonomyNotFound = errors.New("reference taxonomy not found")
)
