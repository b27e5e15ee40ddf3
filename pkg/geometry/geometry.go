// Package geometry turns deck and labware state into absolute positions:
// well locations, labware heights and tip dimensions.
package geometry

import (
	"math"

	"github.com/Opentrons/OpenTrons/pkg/deck"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/labware"
	"github.com/Opentrons/OpenTrons/pkg/pipette"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// TipGeometry is what the hardware controller needs to handle a tip.
type TipGeometry struct {
	EffectiveLength float64
	Diameter        float64
	Volume          int
}

// WellOrigin is the reference point within a well that a WellLocation
// offset is applied to.
type WellOrigin int

const (
	WellOriginTop WellOrigin = iota
	WellOriginBottom
	WellOriginCenter
)

// WellLocation selects a point relative to a well. The zero value is the
// top of the well.
type WellLocation struct {
	Origin WellOrigin
	Offset types.Point
}

// State answers geometry queries. It holds no state of its own.
type State struct {
	deck    *deck.Deck
	labware *labware.Store
}

// New creates a geometry view over a deck and a labware store.
func New(d *deck.Deck, lw *labware.Store) *State {
	return &State{deck: d, labware: lw}
}

// SlotPosition returns the anchor position of a deck slot.
func (s *State) SlotPosition(slot types.DeckSlotName) (types.Point, error) {
	return s.deck.SlotPosition(slot)
}

// WellPosition returns the absolute position of the top of a well: slot
// position plus calibration offset plus well offset, with the well depth
// added to z.
func (s *State) WellPosition(labwareID, wellName string) (types.Point, error) {
	return s.WellPositionAt(labwareID, wellName, WellLocation{})
}

// WellPositionAt returns the absolute position of a point relative to a well.
func (s *State) WellPositionAt(labwareID, wellName string, loc WellLocation) (types.Point, error) {
	data, err := s.labware.Get(labwareID)
	if err != nil {
		return types.Point{}, err
	}
	well, err := s.labware.WellDefinition(labwareID, wellName)
	if err != nil {
		return types.Point{}, err
	}
	slotPos, err := s.deck.SlotPosition(data.Location.Slot)
	if err != nil {
		return types.Point{}, err
	}

	var depth float64
	switch loc.Origin {
	case WellOriginTop:
		depth = well.Depth
	case WellOriginCenter:
		depth = well.Depth / 2
	case WellOriginBottom:
		depth = 0
	}

	return slotPos.
		Add(data.Calibration).
		Add(types.Point{X: well.X, Y: well.Y, Z: well.Z + depth}).
		Add(loc.Offset), nil
}

// LabwareHighestZ returns the highest point a labware occupies: slot z
// plus the labware's z dimension plus its calibration z.
func (s *State) LabwareHighestZ(labwareID string) (float64, error) {
	data, err := s.labware.Get(labwareID)
	if err != nil {
		return 0, err
	}
	return s.highestZ(data)
}

// AllLabwareHighestZ returns the highest point of any loaded labware. An
// empty deck is an error rather than zero so a move is never planned
// without a clearance floor.
func (s *State) AllLabwareHighestZ() (float64, error) {
	all := s.labware.All()
	if len(all) == 0 {
		return 0, errors.NoLabwareLoadedError()
	}
	highest := math.Inf(-1)
	for _, data := range all {
		z, err := s.highestZ(data)
		if err != nil {
			return 0, err
		}
		highest = math.Max(highest, z)
	}
	return highest, nil
}

func (s *State) highestZ(data labware.Data) (float64, error) {
	slotPos, err := s.deck.SlotPosition(data.Location.Slot)
	if err != nil {
		return 0, err
	}
	return slotPos.Z + data.Definition.Dimensions.ZDimension + data.Calibration.Z, nil
}

// HasQuirk reports whether a labware's definition lists quirk.
func (s *State) HasQuirk(labwareID, quirk string) (bool, error) {
	return s.labware.HasQuirk(labwareID, quirk)
}

// EffectiveTipLength returns the nominal tip length of a tip rack less the
// distance the tip overlaps the nozzle.
func (s *State) EffectiveTipLength(labwareID string, overlap pipette.TipOverlap) (float64, error) {
	uri, err := s.labware.DefinitionURI(labwareID)
	if err != nil {
		return 0, err
	}
	nominal, err := s.labware.TipLength(labwareID)
	if err != nil {
		return 0, err
	}
	return nominal - overlap.For(uri), nil
}

// TipGeometry returns the effective length, diameter and volume of the tip
// in a tip rack well.
func (s *State) TipGeometry(labwareID, wellName string, overlap pipette.TipOverlap) (TipGeometry, error) {
	well, err := s.labware.WellDefinition(labwareID, wellName)
	if err != nil {
		return TipGeometry{}, err
	}
	if well.Shape != definition.ShapeCircular {
		return TipGeometry{}, errors.LabwareIsNotTipRackError(labwareID, wellName)
	}
	length, err := s.EffectiveTipLength(labwareID, overlap)
	if err != nil {
		return TipGeometry{}, err
	}
	return TipGeometry{
		EffectiveLength: length,
		Diameter:        well.Diameter,
		Volume:          int(well.TotalLiquidVolume),
	}, nil
}
