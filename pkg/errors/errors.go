// Unified error handling for the motion planning core
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfigSection    ErrorCode = "CONFIG_SECTION"
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Definition decoding errors
	ErrDefinitionInvalid ErrorCode = "DEFINITION_INVALID"

	// Not-found errors
	ErrSlotDoesNotExist    ErrorCode = "SLOT_DOES_NOT_EXIST"
	ErrLabwareDoesNotExist ErrorCode = "LABWARE_DOES_NOT_EXIST"
	ErrWellDoesNotExist    ErrorCode = "WELL_DOES_NOT_EXIST"
	ErrPipetteDoesNotExist ErrorCode = "PIPETTE_DOES_NOT_EXIST"

	// State errors
	ErrLabwareAlreadyExists ErrorCode = "LABWARE_ALREADY_EXISTS"
	ErrLabwareIsNotTipRack  ErrorCode = "LABWARE_IS_NOT_TIP_RACK"
	ErrNoLabwareLoaded      ErrorCode = "NO_LABWARE_LOADED"

	// Planning errors
	ErrMotionPlanning   ErrorCode = "MOTION_PLANNING"
	ErrFailedToPlanMove ErrorCode = "FAILED_TO_PLAN_MOVE"

	// Malformed command notifications
	ErrInvalidCommand ErrorCode = "INVALID_COMMAND"
)

// HostError is the unified error type for the planning core
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section or store name
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// SetContext adds additional context
func (e *HostError) SetContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Config errors

// ConfigSectionError creates an error for missing config section
func ConfigSectionError(section string) *HostError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigValidationError creates an error for config validation failure
func ConfigValidationError(section, option string, reason string) *HostError {
	return New(ErrConfigValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetSection(section).
		SetOption(option)
}

// DefinitionError creates an error for a definition document that could not be decoded
func DefinitionError(kind string, err error) *HostError {
	return Wrap(err, ErrDefinitionInvalid, fmt.Sprintf("unable to decode %s definition", kind))
}

// Not-found errors

// SlotDoesNotExistError creates an error for a slot missing from the deck definition
func SlotDoesNotExistError(slot, deckID string) *HostError {
	return New(ErrSlotDoesNotExist, fmt.Sprintf("Slot ID %s does not exist in deck %s", slot, deckID)).
		SetContext("slot", slot)
}

// LabwareDoesNotExistError creates an error for an unknown labware id
func LabwareDoesNotExistError(labwareID string) *HostError {
	return New(ErrLabwareDoesNotExist, fmt.Sprintf("Labware %s not found.", labwareID)).
		SetContext("labware_id", labwareID)
}

// WellDoesNotExistError creates an error for an unknown well in a known labware
func WellDoesNotExistError(labwareID, wellName string) *HostError {
	return New(ErrWellDoesNotExist, fmt.Sprintf("Well %s does not exist in labware %s.", wellName, labwareID)).
		SetContext("labware_id", labwareID).
		SetContext("well_name", wellName)
}

// PipetteDoesNotExistError creates an error for an unknown pipette id
func PipetteDoesNotExistError(pipetteID string) *HostError {
	return New(ErrPipetteDoesNotExist, fmt.Sprintf("Pipette %s not found.", pipetteID)).
		SetContext("pipette_id", pipetteID)
}

// State errors

// LabwareAlreadyExistsError creates an error for a load request reusing an id
func LabwareAlreadyExistsError(labwareID string) *HostError {
	return New(ErrLabwareAlreadyExists, fmt.Sprintf("Labware %s is already loaded.", labwareID)).
		SetContext("labware_id", labwareID)
}

// LabwareIsNotTipRackError creates an error for tip geometry requested on a non-circular well
func LabwareIsNotTipRackError(labwareID, wellName string) *HostError {
	return New(ErrLabwareIsNotTipRack, fmt.Sprintf("Well %s in labware %s is not circular.", wellName, labwareID)).
		SetContext("labware_id", labwareID).
		SetContext("well_name", wellName)
}

// NoLabwareLoadedError creates an error for a deck-wide query on an empty deck
func NoLabwareLoadedError() *HostError {
	return New(ErrNoLabwareLoaded, "no labware is loaded on the deck")
}

// Planning errors

// MotionPlanningError creates an error for a path that cannot be planned safely
func MotionPlanningError(message string) *HostError {
	return New(ErrMotionPlanning, message)
}

// FailedToPlanMoveError wraps a planning failure raised while resolving a move to a well
func FailedToPlanMoveError(err error) *HostError {
	return Wrap(err, ErrFailedToPlanMove, "failed to plan move")
}

// Is reports whether any error in err's chain is a HostError with the given code
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var hostErr *HostError
		if !stderrors.As(err, &hostErr) {
			return false
		}
		if hostErr.Code == code {
			return true
		}
		err = hostErr.Err
	}
	return false
}

// IsNotFound checks if error is a not-found error
func IsNotFound(err error) bool {
	return Is(err, ErrSlotDoesNotExist) ||
		Is(err, ErrLabwareDoesNotExist) ||
		Is(err, ErrWellDoesNotExist) ||
		Is(err, ErrPipetteDoesNotExist)
}

// IsPlanning checks if error is a planning infeasibility
func IsPlanning(err error) bool {
	return Is(err, ErrMotionPlanning) || Is(err, ErrFailedToPlanMove)
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation)
}
