package spacetime

import (
	"errors"
	"fmt"
)

// InvalidConfigError reports a call made with parameters that can never
// produce a meaningful result (zero step, probability outside [0,1], ...).
//
// It is returned synchronously and is never retried. Geometric outcomes such
// as "parallel" or "no interaction" are not errors and never use this type.
type InvalidConfigError struct {
	// Code identifies the error category.
	Code InvalidConfigCode

	// Field names the offending parameter.
	Field string

	// Message is a human-readable description.
	Message string
}

// InvalidConfigCode categorizes configuration errors.
type InvalidConfigCode string

const (
	// CodeInvalidStep indicates a zero time step.
	CodeInvalidStep InvalidConfigCode = "INVALID_STEP"

	// CodeInvalidRange indicates a step whose sign points away from the end time.
	CodeInvalidRange InvalidConfigCode = "INVALID_RANGE"

	// CodeInvalidProbability indicates a probability outside [0,1].
	CodeInvalidProbability InvalidConfigCode = "INVALID_PROBABILITY"

	// CodeInvalidDirection indicates a light direction other than -1 or +1.
	CodeInvalidDirection InvalidConfigCode = "INVALID_DIRECTION"

	// CodeInvalidLightSpeed indicates a non-positive light speed.
	CodeInvalidLightSpeed InvalidConfigCode = "INVALID_LIGHT_SPEED"

	// CodeInvalidPredicate indicates a missing predicate.
	CodeInvalidPredicate InvalidConfigCode = "INVALID_PREDICATE"

	// CodeNonFinite indicates a NaN or infinite parameter.
	CodeNonFinite InvalidConfigCode = "NON_FINITE"
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidConfigError creates an InvalidConfigError.
func NewInvalidConfigError(code InvalidConfigCode, field, message string) *InvalidConfigError {
	return &InvalidConfigError{Code: code, Field: field, Message: message}
}

// IsInvalidConfig returns true if err is, or wraps, an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var ice *InvalidConfigError
	return errors.As(err, &ice)
}

// InvalidConfigCodeOf returns the code of a wrapped InvalidConfigError, or ""
// if err is not one.
func InvalidConfigCodeOf(err error) InvalidConfigCode {
	var ice *InvalidConfigError
	if errors.As(err, &ice) {
		return ice.Code
	}
	return ""
}
