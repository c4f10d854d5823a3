// Package errors provides severity-aware error types.
package errors

import (
	"errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// EstimateError is a structured error with context.
type EstimateError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Room        string   `json:"room,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *EstimateError) Error() string {
	if e.Room != "" {
		return fmt.Sprintf("[%s] %s: %s (room: %s)", e.Severity, e.Code, e.Message, e.Room)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeInvalidDimensions = "INVALID_DIMENSIONS"
	ErrCodeUnknownTier       = "UNKNOWN_TIER"
	ErrCodeUnknownSpecies    = "UNKNOWN_SPECIES"
	ErrCodeInvalidCatalog    = "INVALID_CATALOG"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewInvalidDimensionsError creates an error for rejected room measurements.
// The message is shown to the user as is.
func NewInvalidDimensionsError(message, room string) *EstimateError {
	return &EstimateError{
		Code:        ErrCodeInvalidDimensions,
		Message:     message,
		Severity:    SeverityError,
		Room:        room,
		Recoverable: true,
	}
}

// NewUnknownTierError creates an error for a pricing tier missing from the catalog.
func NewUnknownTierError(tier string) *EstimateError {
	return &EstimateError{
		Code:     ErrCodeUnknownTier,
		Message:  fmt.Sprintf("No pricing tier named %q", tier),
		Severity: SeverityError,
	}
}

// NewUnknownSpeciesError creates an error for a hardwood species missing from the catalog.
func NewUnknownSpeciesError(species string) *EstimateError {
	return &EstimateError{
		Code:     ErrCodeUnknownSpecies,
		Message:  fmt.Sprintf("No hardwood species named %q", species),
		Severity: SeverityError,
	}
}

// NewInvalidCatalogError creates an error for a malformed pricing catalog.
func NewInvalidCatalogError(format string, args ...any) *EstimateError {
	return &EstimateError{
		Code:     ErrCodeInvalidCatalog,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityFatal,
	}
}

// NewInvalidRequestError creates an error for a request that cannot be priced.
func NewInvalidRequestError(format string, args ...any) *EstimateError {
	return &EstimateError{
		Code:        ErrCodeInvalidRequest,
		Message:     fmt.Sprintf(format, args...),
		Severity:    SeverityError,
		Recoverable: true,
	}
}

// HasCode reports whether err wraps an *EstimateError with the given code.
func HasCode(err error, code string) bool {
	var e *EstimateError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
