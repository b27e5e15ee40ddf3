package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostErrorMessage(t *testing.T) {
	err := LabwareDoesNotExistError("plate")
	assert.Equal(t, "[LABWARE_DOES_NOT_EXIST] Labware plate not found.", err.Error())
	assert.Equal(t, "plate", err.Context["labware_id"])

	wrapped := Wrap(stderrors.New("eof"), ErrDefinitionInvalid, "unable to decode deck definition")
	assert.Equal(t, "[DEFINITION_INVALID] unable to decode deck definition: eof", wrapped.Error())
}

func TestSlotDoesNotExistMessage(t *testing.T) {
	err := SlotDoesNotExistError("13", "ot2_standard")
	assert.Equal(t, "Slot ID 13 does not exist in deck ot2_standard", err.Message)
}

func TestIsWalksChain(t *testing.T) {
	planning := MotionPlanningError("too high")
	failed := FailedToPlanMoveError(planning)
	outer := fmt.Errorf("moving to A1: %w", failed)

	assert.True(t, Is(outer, ErrFailedToPlanMove))
	assert.True(t, Is(outer, ErrMotionPlanning))
	assert.False(t, Is(outer, ErrLabwareDoesNotExist))
	assert.True(t, IsPlanning(planning))
	assert.True(t, stderrors.Is(outer, planning))

	var hostErr *HostError
	assert.True(t, stderrors.As(outer, &hostErr))
	assert.Equal(t, ErrFailedToPlanMove, hostErr.Code)
}

func TestIsNonHostError(t *testing.T) {
	assert.False(t, Is(nil, ErrMotionPlanning))
	assert.False(t, Is(stderrors.New("plain"), ErrMotionPlanning))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
		config   bool
		planning bool
	}{
		{"slot", SlotDoesNotExistError("13", "deck"), true, false, false},
		{"labware", LabwareDoesNotExistError("x"), true, false, false},
		{"well", WellDoesNotExistError("x", "Z1"), true, false, false},
		{"pipette", PipetteDoesNotExistError("p"), true, false, false},
		{"section", ConfigSectionError("motion"), false, true, false},
		{"validation", ConfigValidationError("motion", "max_travel_z", "bad"), false, true, false},
		{"planning", MotionPlanningError("x"), false, false, true},
		{"already exists", LabwareAlreadyExistsError("x"), false, false, false},
		{"no labware", NoLabwareLoadedError(), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.config, IsConfig(tt.err))
			assert.Equal(t, tt.planning, IsPlanning(tt.err))
		})
	}
}
