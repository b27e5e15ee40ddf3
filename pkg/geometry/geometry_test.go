package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Opentrons/OpenTrons/pkg/deck"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/geometry"
	"github.com/Opentrons/OpenTrons/pkg/internal/testutil"
	"github.com/Opentrons/OpenTrons/pkg/labware"
	"github.com/Opentrons/OpenTrons/pkg/pipette"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

func newSubject(t *testing.T) (*geometry.State, *labware.Store) {
	t.Helper()
	d := deck.New(testutil.StandardDeck(t))
	store := labware.NewStore(d)
	return geometry.New(d, store), store
}

func TestWellPosition(t *testing.T) {
	subject, store := newSubject(t)
	cal := types.Point{X: 1, Y: -2, Z: 3}
	_, err := store.Load("plate", types.Slot5, testutil.Plate96(t), cal)
	require.NoError(t, err)

	got, err := subject.WellPosition("plate", "A1")
	require.NoError(t, err)

	// slot 5 (132.5, 90.5, 0) + calibration + well offset, z at the well top
	want := types.Point{
		X: 132.5 + 1 + 14.38,
		Y: 90.5 - 2 + 74.24,
		Z: 0 + 3 + 3.55 + 10.67,
	}
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
	assert.InDelta(t, want.Z, got.Z, 1e-9)
}

func TestWellPositionTracksCalibrationDelta(t *testing.T) {
	subject, store := newSubject(t)
	_, err := store.Load("plate", types.Slot1, testutil.Plate96(t), types.Point{})
	require.NoError(t, err)

	wells := []string{"A1", "B7", "H12"}
	before := make(map[string]types.Point)
	for _, w := range wells {
		before[w], err = subject.WellPosition("plate", w)
		require.NoError(t, err)
	}

	delta := types.Point{X: 0.5, Y: -1.25, Z: 2}
	require.NoError(t, store.SetCalibration("plate", delta))

	for _, w := range wells {
		after, err := subject.WellPosition("plate", w)
		require.NoError(t, err)
		moved := after.Sub(before[w])
		assert.InDelta(t, delta.X, moved.X, 1e-9, w)
		assert.InDelta(t, delta.Y, moved.Y, 1e-9, w)
		assert.InDelta(t, delta.Z, moved.Z, 1e-9, w)
	}
}

func TestWellPositionAt(t *testing.T) {
	d := deck.New(testutil.FlatDeck())
	store := labware.NewStore(d)
	subject := geometry.New(d, store)
	_, err := store.Load("box", types.Slot1, testutil.Box("box", 20, 10), types.Point{})
	require.NoError(t, err)

	tests := []struct {
		name string
		loc  geometry.WellLocation
		want types.Point
	}{
		{"top", geometry.WellLocation{}, types.Point{Z: 10}},
		{"center", geometry.WellLocation{Origin: geometry.WellOriginCenter}, types.Point{Z: 5}},
		{"bottom with offset", geometry.WellLocation{Origin: geometry.WellOriginBottom, Offset: types.Point{Z: 1}}, types.Point{Z: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := subject.WellPositionAt("box", "A1", tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWellPositionUnknownIDs(t *testing.T) {
	subject, store := newSubject(t)
	_, err := store.Load("plate", types.Slot1, testutil.Plate96(t), types.Point{})
	require.NoError(t, err)

	_, err = subject.WellPosition("nope", "A1")
	assert.True(t, errors.Is(err, errors.ErrLabwareDoesNotExist))

	_, err = subject.WellPosition("plate", "Q1")
	assert.True(t, errors.Is(err, errors.ErrWellDoesNotExist))
}

func TestSlotMissingFromDeckLeavesDeckUsable(t *testing.T) {
	d := deck.New(testutil.FlatDeck())
	store := labware.NewStore(d)
	subject := geometry.New(d, store)
	_, err := store.Load("plate", types.Slot1, testutil.Box("box", 20, 10), types.Point{})
	require.NoError(t, err)

	_, err = store.Load("far", types.Slot11, testutil.Box("box", 80, 10), types.Point{})
	assert.True(t, errors.Is(err, errors.ErrSlotDoesNotExist))

	_, err = subject.WellPosition("far", "A1")
	assert.True(t, errors.Is(err, errors.ErrLabwareDoesNotExist))
	z, err := subject.AllLabwareHighestZ()
	require.NoError(t, err)
	assert.Equal(t, 20.0, z)
}

func TestLabwareHighestZScenario(t *testing.T) {
	subject, store := newSubject(t)
	_, err := store.Load("tiprack-A", types.Slot1, testutil.Box("tiprack", 40, 30), types.Point{})
	require.NoError(t, err)

	z, err := subject.LabwareHighestZ("tiprack-A")
	require.NoError(t, err)
	assert.Equal(t, 40.0, z)
}

func TestLabwareHighestZMonotonic(t *testing.T) {
	subject, store := newSubject(t)
	heights := []float64{10, 20, 20, 35}
	calZ := []float64{-1, 0, 2, 2}

	prev := -1e9
	for i := range heights {
		store.Reset()
		_, err := store.Load("lw", types.Slot2, testutil.Box("lw", heights[i], 5), types.Point{Z: calZ[i]})
		require.NoError(t, err)
		z, err := subject.LabwareHighestZ("lw")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, z, prev)
		assert.Equal(t, heights[i]+calZ[i], z)
		prev = z
	}
}

func TestAllLabwareHighestZ(t *testing.T) {
	subject, store := newSubject(t)

	_, err := subject.AllLabwareHighestZ()
	assert.True(t, errors.Is(err, errors.ErrNoLabwareLoaded))

	_, err = store.Load("short", types.Slot1, testutil.Box("short", 10, 5), types.Point{})
	require.NoError(t, err)
	_, err = store.Load("mid", types.Slot2, testutil.Box("mid", 20, 5), types.Point{})
	require.NoError(t, err)

	z, err := subject.AllLabwareHighestZ()
	require.NoError(t, err)
	assert.Equal(t, 20.0, z)

	_, err = store.Load("tall", types.Slot3, testutil.Box("tall", 50, 5), types.Point{})
	require.NoError(t, err)
	z, err = subject.AllLabwareHighestZ()
	require.NoError(t, err)
	assert.Equal(t, 50.0, z)

	require.NoError(t, store.Remove("tall"))
	z, err = subject.AllLabwareHighestZ()
	require.NoError(t, err)
	assert.Equal(t, 20.0, z)
}

func TestEffectiveTipLength(t *testing.T) {
	subject, store := newSubject(t)
	_, err := store.Load("tips", types.Slot1, testutil.TipRack300(t), types.Point{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		overlap pipette.TipOverlap
		want    float64
	}{
		{"specific entry", pipette.TipOverlap{pipette.DefaultOverlapKey: 1, testutil.TipRack300URI: 7.47}, 59.3 - 7.47},
		{"default entry", pipette.TipOverlap{pipette.DefaultOverlapKey: 10.5}, 59.3 - 10.5},
		{"no table", nil, 59.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := subject.EffectiveTipLength("tips", tt.overlap)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTipGeometry(t *testing.T) {
	subject, store := newSubject(t)
	_, err := store.Load("tips", types.Slot1, testutil.TipRack300(t), types.Point{})
	require.NoError(t, err)

	got, err := subject.TipGeometry("tips", "B3", pipette.TipOverlap{pipette.DefaultOverlapKey: 7.47})
	require.NoError(t, err)
	assert.InDelta(t, 59.3-7.47, got.EffectiveLength, 1e-9)
	assert.Equal(t, 5.23, got.Diameter)
	assert.Equal(t, 300, got.Volume)
}

func TestTipGeometryRejectsNonCircularWell(t *testing.T) {
	subject, store := newSubject(t)
	def := testutil.Box("square-tips", 60, 50)
	def.Parameters.IsTiprack = true
	def.Parameters.TipLength = 50
	well := def.Wells["A1"]
	well.Shape = definition.ShapeRectangular
	def.Wells["A1"] = well
	_, err := store.Load("square", types.Slot1, def, types.Point{})
	require.NoError(t, err)

	_, err = subject.TipGeometry("square", "A1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLabwareIsNotTipRack))

	_, err = store.Load("res", types.Slot2, testutil.Reservoir12(t), types.Point{})
	require.NoError(t, err)
	_, err = subject.TipGeometry("res", "A1", nil)
	assert.True(t, errors.Is(err, errors.ErrLabwareIsNotTipRack))
}
