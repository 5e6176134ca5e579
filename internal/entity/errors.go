package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrMissingAPIKey marks a configuration error: the bearer credential is
	// absent. It is raised before any network attempt and is fatal to every
	// API operation until the environment is fixed.
	ErrMissingAPIKey = errors.New("vault API key is not configured: set VAULT_API_KEY")

	// ErrEmptyVaultAddress marks a request submitted without a vault address.
	ErrEmptyVaultAddress = errors.New("vault address is required")
)

// NetworkError is a transport-level failure: no response reached the server.
type NetworkError struct {
	Op    string // verb-level description, e.g. "fetch vault info"
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error while trying to %s: check connectivity and that the API allows requests from this origin (CORS)", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx HTTP response from the upstream API. Message carries
// the best-effort text extracted from the {message,error} envelope, or a
// generated fallback embedding the HTTP status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsConfigurationError reports whether err stems from missing credentials
// rather than from the network or the API.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}
