// Package motionplan generates the waypoints of a gantry move. Arc moves
// rise straight up to a safe height, travel horizontally at that height
// and descend straight onto the destination, so the instrument is never
// below the clearance floor while its XY position changes.
package motionplan

import (
	"fmt"
	"math"

	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// MoveType is the strategy for a move. The set of move types is closed:
// Direct, InLabwareArc and GeneralArc.
type MoveType interface {
	fmt.Stringer
	isMoveType()
}

// Direct moves in a straight line with no clearance requirement.
type Direct struct{}

// InLabwareArc arcs between two wells of the same labware. MinTravelZ is
// the top of that labware.
type InLabwareArc struct {
	MinTravelZ float64
}

// GeneralArc arcs across the deck. MinTravelZ is the top of the tallest
// labware on the deck.
type GeneralArc struct {
	MinTravelZ float64
}

func (Direct) String() string       { return "direct" }
func (InLabwareArc) String() string { return "in_labware_arc" }
func (GeneralArc) String() string   { return "general_arc" }

func (Direct) isMoveType()       {}
func (InLabwareArc) isMoveType() {}
func (GeneralArc) isMoveType()   {}

// Waypoint is one target of a planned path.
type Waypoint struct {
	Position      types.Point
	CriticalPoint types.CriticalPoint
}

// XY is a horizontal position.
type XY struct {
	X float64
	Y float64
}

// Request describes a move to plan.
type Request struct {
	Move       MoveType
	Origin     types.Point
	OriginCP   types.CriticalPoint
	Dest       types.Point
	DestCP     types.CriticalPoint
	MaxTravelZ float64
	// XYWaypoints are extra horizontal stops, visited in order at the
	// safe height between the rise and the final traverse.
	XYWaypoints []XY
}

// GetWaypoints returns the path for a move. A direct move is the single
// destination waypoint. An arc move is the rise, any extra XY stops, the
// traverse and the descent. If the required safe height exceeds
// MaxTravelZ no path is returned.
func GetWaypoints(req Request) ([]Waypoint, error) {
	if err := checkFinite(req); err != nil {
		return nil, err
	}

	destWaypoint := Waypoint{Position: req.Dest, CriticalPoint: req.DestCP}

	var minTravelZ float64
	switch move := req.Move.(type) {
	case Direct:
		return []Waypoint{destWaypoint}, nil
	case InLabwareArc:
		minTravelZ = move.MinTravelZ
	case GeneralArc:
		minTravelZ = move.MinTravelZ
	case nil:
		return nil, errors.MotionPlanningError("no move type given")
	default:
		panic(fmt.Sprintf("motionplan: unhandled move type %T", move))
	}

	safeZ := SafeHeight(req.Origin.Z, req.Dest.Z, minTravelZ)
	if safeZ > req.MaxTravelZ {
		return nil, errors.MotionPlanningError(fmt.Sprintf(
			"%s from %s to %s needs a travel height of %.3f, above the maximum of %.3f",
			req.Move, req.Origin, req.Dest, safeZ, req.MaxTravelZ)).
			SetContext("safe_z", safeZ).
			SetContext("max_travel_z", req.MaxTravelZ)
	}

	waypoints := make([]Waypoint, 0, 3+len(req.XYWaypoints))
	waypoints = append(waypoints, Waypoint{Position: req.Origin.WithZ(safeZ), CriticalPoint: req.OriginCP})
	for _, xy := range req.XYWaypoints {
		waypoints = append(waypoints, Waypoint{
			Position:      types.Point{X: xy.X, Y: xy.Y, Z: safeZ},
			CriticalPoint: req.DestCP,
		})
	}
	waypoints = append(waypoints,
		Waypoint{Position: req.Dest.WithZ(safeZ), CriticalPoint: req.DestCP},
		destWaypoint,
	)
	return waypoints, nil
}

// SafeHeight is the lowest height an arc can travel at: no lower than
// either endpoint and no lower than the clearance floor.
func SafeHeight(originZ, destZ, minTravelZ float64) float64 {
	return math.Max(math.Max(originZ, destZ), minTravelZ)
}

func checkFinite(req Request) error {
	values := []float64{
		req.Origin.X, req.Origin.Y, req.Origin.Z,
		req.Dest.X, req.Dest.Y, req.Dest.Z,
		req.MaxTravelZ,
	}
	for _, xy := range req.XYWaypoints {
		values = append(values, xy.X, xy.Y)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.MotionPlanningError(fmt.Sprintf("non-finite coordinate in move from %s to %s", req.Origin, req.Dest))
		}
	}
	return nil
}
