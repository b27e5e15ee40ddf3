package motion

import (
	"github.com/Opentrons/OpenTrons/pkg/command"
)

// LocationData is the last well a pipette was deliberately moved to.
type LocationData struct {
	PipetteID string
	LabwareID string
	WellName  string
}

// LocationTracker remembers where the active instrument last went.
type LocationTracker interface {
	// CurrentLocation returns the tracked location, if any.
	CurrentLocation() (LocationData, bool)
	// RecordCompletedMove overwrites the tracked location. Callers invoke
	// it only after hardware confirmed a move-to-well, aspirate or
	// dispense.
	RecordCompletedMove(pipetteID, labwareID, wellName string)
	// Reset forgets the tracked location.
	Reset()
}

// singleLocation tracks one location for the whole system: a move by any
// pipette replaces the location of the previous one.
type singleLocation struct {
	current *LocationData
}

// NewLocationTracker returns the system-wide single-location tracker.
func NewLocationTracker() LocationTracker {
	return &singleLocation{}
}

func (l *singleLocation) CurrentLocation() (LocationData, bool) {
	if l.current == nil {
		return LocationData{}, false
	}
	return *l.current, true
}

func (l *singleLocation) RecordCompletedMove(pipetteID, labwareID, wellName string) {
	l.current = &LocationData{PipetteID: pipetteID, LabwareID: labwareID, WellName: wellName}
}

func (l *singleLocation) Reset() {
	l.current = nil
}

// trackedTarget returns the well a completed command leaves the pipette
// at, for the commands that update the tracked location.
func trackedTarget(cmd command.Completed) (command.WellTarget, bool) {
	if !cmd.Succeeded() {
		return command.WellTarget{}, false
	}
	switch cmd.Result.(type) {
	case command.MoveToWellResult, command.AspirateResult, command.DispenseResult:
	default:
		return command.WellTarget{}, false
	}
	switch req := cmd.Request.(type) {
	case command.MoveToWellRequest:
		return req.Target(), true
	case command.AspirateRequest:
		return req.Target(), true
	case command.DispenseRequest:
		return req.Target(), true
	}
	return command.WellTarget{}, false
}
