package motionplan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

func TestDirectMoveIsSingleWaypoint(t *testing.T) {
	dest := types.Point{X: 10, Y: 20, Z: 30}

	got, err := GetWaypoints(Request{
		Move:       Direct{},
		Origin:     types.Point{X: 1, Y: 2, Z: 3},
		Dest:       dest,
		DestCP:     types.CriticalPointXYCenter,
		MaxTravelZ: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, []Waypoint{{Position: dest, CriticalPoint: types.CriticalPointXYCenter}}, got)
}

func TestDirectMoveToSamePoint(t *testing.T) {
	p := types.Point{X: 5, Y: 5, Z: 5}

	got, err := GetWaypoints(Request{Move: Direct{}, Origin: p, Dest: p, MaxTravelZ: 100})
	require.NoError(t, err)
	assert.Equal(t, []Waypoint{{Position: p}}, got)
}

func TestDirectMoveIgnoresCeiling(t *testing.T) {
	dest := types.Point{Z: 150}

	got, err := GetWaypoints(Request{Move: Direct{}, Dest: dest, MaxTravelZ: 100})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestArcMoves(t *testing.T) {
	origin := types.Point{X: 1, Y: 2, Z: 10}
	dest := types.Point{X: 50, Y: 60, Z: 5}

	tests := []struct {
		name  string
		move  MoveType
		safeZ float64
	}{
		{"in labware arc above both ends", InLabwareArc{MinTravelZ: 20}, 20},
		{"general arc above both ends", GeneralArc{MinTravelZ: 50}, 50},
		{"floor below origin", GeneralArc{MinTravelZ: 3}, 10},
		{"floor ties origin", InLabwareArc{MinTravelZ: 10}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetWaypoints(Request{
				Move:       tt.move,
				Origin:     origin,
				OriginCP:   types.CriticalPointTip,
				Dest:       dest,
				DestCP:     types.CriticalPointXYCenter,
				MaxTravelZ: 100,
			})
			require.NoError(t, err)
			assert.Equal(t, []Waypoint{
				{Position: types.Point{X: 1, Y: 2, Z: tt.safeZ}, CriticalPoint: types.CriticalPointTip},
				{Position: types.Point{X: 50, Y: 60, Z: tt.safeZ}, CriticalPoint: types.CriticalPointXYCenter},
				{Position: dest, CriticalPoint: types.CriticalPointXYCenter},
			}, got)
		})
	}
}

func TestArcNeverTravelsBelowFloor(t *testing.T) {
	origin := types.Point{X: 0, Y: 0, Z: 2}
	dest := types.Point{X: 100, Y: 0, Z: 4}

	got, err := GetWaypoints(Request{Move: GeneralArc{MinTravelZ: 40}, Origin: origin, Dest: dest, MaxTravelZ: 100})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// only the first and last legs change z, and neither changes xy
	assert.Equal(t, origin.X, got[0].Position.X)
	assert.Equal(t, origin.Y, got[0].Position.Y)
	assert.Equal(t, got[1].Position.Z, got[0].Position.Z)
	assert.GreaterOrEqual(t, got[1].Position.Z, 40.0)
	assert.Equal(t, dest.X, got[1].Position.X)
	assert.Equal(t, dest, got[2].Position)
}

func TestArcWithXYWaypoints(t *testing.T) {
	got, err := GetWaypoints(Request{
		Move:        GeneralArc{MinTravelZ: 30},
		Origin:      types.Point{X: 0, Y: 0, Z: 0},
		Dest:        types.Point{X: 10, Y: 10, Z: 0},
		DestCP:      types.CriticalPointNozzle,
		MaxTravelZ:  100,
		XYWaypoints: []XY{{X: 5, Y: 0}, {X: 5, Y: 5}},
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, types.Point{X: 5, Y: 0, Z: 30}, got[1].Position)
	assert.Equal(t, types.Point{X: 5, Y: 5, Z: 30}, got[2].Position)
	assert.Equal(t, types.CriticalPointNozzle, got[2].CriticalPoint)
}

func TestArcAboveCeilingFails(t *testing.T) {
	tests := []struct {
		name   string
		move   MoveType
		origin types.Point
		dest   types.Point
	}{
		{"clearance floor", GeneralArc{MinTravelZ: 120}, types.Point{}, types.Point{X: 10}},
		{"origin above ceiling", InLabwareArc{MinTravelZ: 0}, types.Point{Z: 101}, types.Point{}},
		{"destination above ceiling", InLabwareArc{MinTravelZ: 0}, types.Point{}, types.Point{Z: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetWaypoints(Request{Move: tt.move, Origin: tt.origin, Dest: tt.dest, MaxTravelZ: 100})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, errors.ErrMotionPlanning))
		})
	}
}

func TestArcAtCeilingIsAllowed(t *testing.T) {
	got, err := GetWaypoints(Request{Move: GeneralArc{MinTravelZ: 100}, Dest: types.Point{X: 1}, MaxTravelZ: 100})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[1].Position.Z)
}

func TestInvalidRequests(t *testing.T) {
	_, err := GetWaypoints(Request{Dest: types.Point{X: 1}, MaxTravelZ: 100})
	assert.True(t, errors.Is(err, errors.ErrMotionPlanning), "missing move type")

	_, err = GetWaypoints(Request{Move: Direct{}, Dest: types.Point{X: math.NaN()}, MaxTravelZ: 100})
	assert.True(t, errors.Is(err, errors.ErrMotionPlanning), "NaN destination")

	_, err = GetWaypoints(Request{Move: GeneralArc{}, MaxTravelZ: math.Inf(1)})
	assert.True(t, errors.Is(err, errors.ErrMotionPlanning), "infinite ceiling")
}

func TestMoveTypeNames(t *testing.T) {
	assert.Equal(t, "direct", Direct{}.String())
	assert.Equal(t, "in_labware_arc", InLabwareArc{}.String())
	assert.Equal(t, "general_arc", GeneralArc{}.String())
}

func TestSafeHeight(t *testing.T) {
	assert.Equal(t, 7.0, SafeHeight(7, 3, 1))
	assert.Equal(t, 9.0, SafeHeight(7, 9, 1))
	assert.Equal(t, 12.0, SafeHeight(7, 9, 12))
	assert.Equal(t, 9.0, SafeHeight(9, 9, 9))
}
