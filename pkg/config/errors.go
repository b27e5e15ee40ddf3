package config

import (
	"fmt"

	"github.com/Opentrons/OpenTrons/pkg/errors"
)

// Config errors are HostErrors so callers can classify them with
// errors.IsConfig.

// NewConfigError creates a validation error not tied to a single option.
func NewConfigError(section, option, message string) *errors.HostError {
	return errors.New(errors.ErrConfigValidation, message).
		SetSection(section).
		SetOption(option)
}

// ErrMissingOption returns an error for a required but missing option.
func ErrMissingOption(section, option string) *errors.HostError {
	return errors.New(errors.ErrConfigOption,
		fmt.Sprintf("option '%s' in section '%s' must be specified", option, section)).
		SetSection(section).
		SetOption(option)
}

// ErrMissingSection returns an error for a missing section.
func ErrMissingSection(section string) *errors.HostError {
	return errors.ConfigSectionError(section)
}

// ErrInvalidValue returns an error for a value that failed to parse.
func ErrInvalidValue(section, option, value, expected string) *errors.HostError {
	return errors.ConfigValidationError(section, option,
		fmt.Sprintf("invalid value '%s', expected %s", value, expected))
}

// ErrOutOfRange returns an error for a value outside the allowed range.
func ErrOutOfRange(section, option string, value float64, constraint string) *errors.HostError {
	return errors.ConfigValidationError(section, option, fmt.Sprintf("value %v %s", value, constraint))
}

// ErrInvalidChoice returns an error for an invalid choice value.
func ErrInvalidChoice(section, option, value string, choices []string) *errors.HostError {
	return errors.ConfigValidationError(section, option,
		fmt.Sprintf("'%s' is not a valid choice (valid: %v)", value, choices))
}
