// Package command defines the completed-command notifications the state
// stores react to. Sequencing and execution of commands happen elsewhere;
// a Completed value is only produced once the hardware has confirmed the
// command finished (or failed).
package command

import (
	"time"

	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// Type names a command.
type Type string

const (
	TypeLoadLabware           Type = "loadLabware"
	TypeLoadPipette           Type = "loadPipette"
	TypeSetLabwareCalibration Type = "setLabwareCalibration"
	TypeMoveToWell            Type = "moveToWell"
	TypeAspirate              Type = "aspirate"
	TypeDispense              Type = "dispense"
	TypePickUpTip             Type = "pickUpTip"
	TypeDropTip               Type = "dropTip"
	TypeHome                  Type = "home"
)

// Request is the input of a command. The set of requests is closed.
type Request interface {
	CommandType() Type
	isRequest()
}

// Result is the output of a successfully completed command.
type Result interface {
	isResult()
}

// Completed is a finished command. Result is nil when Error is set.
type Completed struct {
	ID          string
	Request     Request
	Result      Result
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time
}

// Succeeded reports whether the command reached hardware confirmation.
func (c Completed) Succeeded() bool {
	return c.Error == nil && c.Result != nil
}

// WellTarget addresses a well for a pipette.
type WellTarget struct {
	PipetteID string
	LabwareID string
	WellName  string
}

// Target returns the addressed well.
func (w WellTarget) Target() WellTarget {
	return w
}

// LoadLabwareRequest places a labware definition in a slot. An empty
// LabwareID asks the store to generate one.
type LoadLabwareRequest struct {
	LabwareID   string
	Slot        types.DeckSlotName
	Definition  definition.Labware
	Calibration types.Point
}

// LoadLabwareResult reports the id the labware was loaded under.
type LoadLabwareResult struct {
	LabwareID string
}

// LoadPipetteRequest attaches a pipette to a mount.
type LoadPipetteRequest struct {
	PipetteID   string
	PipetteName string
	Mount       types.MountType
	// TipOverlap maps labware definition URIs (and "default") to the
	// distance a tip overlaps the nozzle. Nil means use the configured table.
	TipOverlap map[string]float64
}

// LoadPipetteResult reports the loaded pipette id.
type LoadPipetteResult struct {
	PipetteID string
}

// SetLabwareCalibrationRequest replaces a labware's calibration offset.
type SetLabwareCalibrationRequest struct {
	LabwareID   string
	Calibration types.Point
}

// SetLabwareCalibrationResult is empty.
type SetLabwareCalibrationResult struct{}

// MoveToWellRequest moves a pipette to the top of a well.
type MoveToWellRequest struct {
	WellTarget
}

// MoveToWellResult is empty.
type MoveToWellResult struct{}

// AspirateRequest draws liquid from a well.
type AspirateRequest struct {
	WellTarget
	Volume float64
}

// AspirateResult reports the volume aspirated.
type AspirateResult struct {
	Volume float64
}

// DispenseRequest expels liquid into a well.
type DispenseRequest struct {
	WellTarget
	Volume float64
}

// DispenseResult reports the volume dispensed.
type DispenseResult struct {
	Volume float64
}

// PickUpTipRequest picks up a tip from a tip rack well.
type PickUpTipRequest struct {
	WellTarget
}

// PickUpTipResult is empty.
type PickUpTipResult struct{}

// DropTipRequest drops the attached tip into a well.
type DropTipRequest struct {
	WellTarget
}

// DropTipResult is empty.
type DropTipResult struct{}

// HomeRequest homes the gantry.
type HomeRequest struct {
	Axes []string
}

// HomeResult is empty.
type HomeResult struct{}

func (LoadLabwareRequest) CommandType() Type           { return TypeLoadLabware }
func (LoadPipetteRequest) CommandType() Type           { return TypeLoadPipette }
func (SetLabwareCalibrationRequest) CommandType() Type { return TypeSetLabwareCalibration }
func (MoveToWellRequest) CommandType() Type            { return TypeMoveToWell }
func (AspirateRequest) CommandType() Type              { return TypeAspirate }
func (DispenseRequest) CommandType() Type              { return TypeDispense }
func (PickUpTipRequest) CommandType() Type             { return TypePickUpTip }
func (DropTipRequest) CommandType() Type               { return TypeDropTip }
func (HomeRequest) CommandType() Type                  { return TypeHome }

func (LoadLabwareRequest) isRequest()           {}
func (LoadPipetteRequest) isRequest()           {}
func (SetLabwareCalibrationRequest) isRequest() {}
func (MoveToWellRequest) isRequest()            {}
func (AspirateRequest) isRequest()              {}
func (DispenseRequest) isRequest()              {}
func (PickUpTipRequest) isRequest()             {}
func (DropTipRequest) isRequest()               {}
func (HomeRequest) isRequest()                  {}

func (LoadLabwareResult) isResult()           {}
func (LoadPipetteResult) isResult()           {}
func (SetLabwareCalibrationResult) isResult() {}
func (MoveToWellResult) isResult()            {}
func (AspirateResult) isResult()              {}
func (DispenseResult) isResult()              {}
func (PickUpTipResult) isResult()             {}
func (DropTipResult) isResult()               {}
func (HomeResult) isResult()                  {}
