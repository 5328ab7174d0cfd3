package spider

import "errors"

// Domain errors
var (
	// Input errors
	ErrInvalidSecurityCode = errors.New("invalid security code")
	ErrUnknownIndicator    = errors.New("unknown indicator")

	// Document errors
	ErrSchemaNotFound = errors.New("document schema not found")
	ErrParse          = errors.New("no numeral found")

	// External API errors
	ErrFetch                = errors.New("document fetch failed")
	ErrReferenceUnavailable = errors.New("reference table API unavailable")
)

// IsNotFoundError checks if the error means an expected document shape was absent
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

// IsExternalError checks if the error originates from an upstream provider
func IsExternalError(err error) bool {
	return errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrReferenceUnavailable)
}

// IsInputError checks if the error is a caller contract violation
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidSecurityCode) ||
		errors.Is(err, ErrUnknownIndicator)
}
