// Package motion holds the motion-planning state: the last location the
// active pipette was moved to, the critical point a pipette is currently
// positioned by, and the waypoints of a move to a well.
//
// State is not synchronized. HandleCompletedCommand must only be called
// from the goroutine that sequences commands, one command at a time; a
// command that did not complete must never be passed in.
package motion

import (
	"github.com/Opentrons/OpenTrons/pkg/command"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/motionplan"
	"github.com/Opentrons/OpenTrons/pkg/pipette"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// Geometry is the geometry the planner needs.
type Geometry interface {
	WellPosition(labwareID, wellName string) (types.Point, error)
	LabwareHighestZ(labwareID string) (float64, error)
	AllLabwareHighestZ() (float64, error)
	HasQuirk(labwareID, quirk string) (bool, error)
}

// Pipettes looks up loaded pipettes.
type Pipettes interface {
	Get(pipetteID string) (pipette.Data, error)
}

// PipetteLocationData is what the hardware needs to know where a pipette
// currently is.
type PipetteLocationData struct {
	Mount         types.MountType
	CriticalPoint types.CriticalPoint
}

// Plan is a planned move to a well.
type Plan struct {
	Move      motionplan.MoveType
	Waypoints []motionplan.Waypoint
}

// State resolves pipette locations and plans moves.
type State struct {
	geometry Geometry
	pipettes Pipettes
	tracker  LocationTracker
	log      *log.Logger
}

// NewState creates motion state. A nil tracker uses NewLocationTracker.
func NewState(geometry Geometry, pipettes Pipettes, tracker LocationTracker) *State {
	if tracker == nil {
		tracker = NewLocationTracker()
	}
	return &State{
		geometry: geometry,
		pipettes: pipettes,
		tracker:  tracker,
		log:      log.GetLogger("motion"),
	}
}

// CurrentLocation returns the last tracked location.
func (s *State) CurrentLocation() (LocationData, bool) {
	return s.tracker.CurrentLocation()
}

// Reset forgets the tracked location.
func (s *State) Reset() {
	s.tracker.Reset()
}

// HandleCompletedCommand records the location of completed move-to-well,
// aspirate and dispense commands. Everything else, and any command that
// did not succeed, leaves the tracked location untouched.
func (s *State) HandleCompletedCommand(cmd command.Completed) error {
	target, ok := trackedTarget(cmd)
	if !ok {
		return nil
	}
	s.tracker.RecordCompletedMove(target.PipetteID, target.LabwareID, target.WellName)
	s.log.WithFields(log.Fields{
		"pipette_id": target.PipetteID,
		"labware_id": target.LabwareID,
		"well_name":  target.WellName,
		"command":    cmd.Request.CommandType(),
	}).Debug("location updated")
	return nil
}

// PipetteLocation returns the mount of a pipette and the critical point it
// is positioned by. A pipette last moved to labware that requires
// centering stays XY-centered until it is deliberately moved elsewhere.
func (s *State) PipetteLocation(pipetteID string) (PipetteLocationData, error) {
	data, err := s.pipettes.Get(pipetteID)
	if err != nil {
		return PipetteLocationData{}, err
	}

	cp := types.CriticalPointNone
	if loc, ok := s.tracker.CurrentLocation(); ok && loc.PipetteID == pipetteID {
		center, err := s.geometry.HasQuirk(loc.LabwareID, definition.QuirkCenterMultichannelOnWells)
		if err != nil {
			return PipetteLocationData{}, err
		}
		if center {
			cp = types.CriticalPointXYCenter
		}
	}
	return PipetteLocationData{Mount: data.Mount, CriticalPoint: cp}, nil
}

// MovementWaypoints returns the waypoints from origin to the top of a well.
func (s *State) MovementWaypoints(
	pipetteID, labwareID, wellName string,
	origin types.Point,
	originCP types.CriticalPoint,
	maxTravelZ float64,
) ([]motionplan.Waypoint, error) {
	plan, err := s.PlanMove(pipetteID, labwareID, wellName, origin, originCP, maxTravelZ)
	if err != nil {
		return nil, err
	}
	return plan.Waypoints, nil
}

// PlanMove is MovementWaypoints that also reports the chosen move type.
func (s *State) PlanMove(
	pipetteID, labwareID, wellName string,
	origin types.Point,
	originCP types.CriticalPoint,
	maxTravelZ float64,
) (Plan, error) {
	dest, err := s.geometry.WellPosition(labwareID, wellName)
	if err != nil {
		return Plan{}, err
	}
	center, err := s.geometry.HasQuirk(labwareID, definition.QuirkCenterMultichannelOnWells)
	if err != nil {
		return Plan{}, err
	}
	destCP := types.CriticalPointNone
	if center {
		destCP = types.CriticalPointXYCenter
	}

	move, err := s.moveType(pipetteID, labwareID, wellName)
	if err != nil {
		return Plan{}, err
	}

	entry := s.log.WithFields(log.Fields{
		"pipette_id": pipetteID,
		"labware_id": labwareID,
		"well_name":  wellName,
		"move_type":  move.String(),
	})

	waypoints, err := motionplan.GetWaypoints(motionplan.Request{
		Move:       move,
		Origin:     origin,
		OriginCP:   originCP,
		Dest:       dest,
		DestCP:     destCP,
		MaxTravelZ: maxTravelZ,
	})
	if err != nil {
		entry.WithError(err).Warn("unable to plan move")
		return Plan{}, errors.FailedToPlanMoveError(err)
	}

	entry.WithField("waypoints", len(waypoints)).Debug("move planned")
	return Plan{Move: move, Waypoints: waypoints}, nil
}

// moveType picks the strategy from the tracked location. Staying in the
// same well is direct, another well of the same labware only has to clear
// that labware, and anything else has to clear the whole deck.
func (s *State) moveType(pipetteID, labwareID, wellName string) (motionplan.MoveType, error) {
	loc, ok := s.tracker.CurrentLocation()
	if ok && loc.PipetteID == pipetteID && loc.LabwareID == labwareID {
		if loc.WellName == wellName {
			return motionplan.Direct{}, nil
		}
		z, err := s.geometry.LabwareHighestZ(labwareID)
		if err != nil {
			return nil, err
		}
		return motionplan.InLabwareArc{MinTravelZ: z}, nil
	}

	z, err := s.geometry.AllLabwareHighestZ()
	if err != nil {
		return nil, err
	}
	return motionplan.GeneralArc{MinTravelZ: z}, nil
}
