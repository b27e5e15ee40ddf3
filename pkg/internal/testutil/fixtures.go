// Package testutil provides shared definition fixtures for tests.
package testutil

import (
	"embed"
	"testing"

	"github.com/Opentrons/OpenTrons/pkg/definition"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Fixture file names.
const (
	StandardDeckFile = "ot2_standard.json"
	TipRack300File   = "opentrons_96_tiprack_300ul.json"
	Plate96File      = "corning_96_wellplate_360ul_flat.json"
	Reservoir12File  = "nest_12_reservoir_15ml.json"
)

// TipRack300URI is the definition URI of the 300 µL tip rack fixture.
const TipRack300URI = "opentrons/opentrons_96_tiprack_300ul/1"

// ReadFixture returns the raw bytes of a fixture file.
func ReadFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile("fixtures/" + name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// StandardDeck returns the OT-2 standard deck: slots 1-12 on a 3x4 grid,
// 132.5 mm apart in x and 90.5 mm apart in y, all at z=0.
func StandardDeck(t testing.TB) definition.Deck {
	t.Helper()
	def, err := definition.ParseDeck(ReadFixture(t, StandardDeckFile))
	if err != nil {
		t.Fatalf("parse deck fixture: %v", err)
	}
	return def
}

// Labware decodes a labware fixture.
func Labware(t testing.TB, name string) definition.Labware {
	t.Helper()
	def, err := definition.ParseLabware(ReadFixture(t, name))
	if err != nil {
		t.Fatalf("parse labware fixture %s: %v", name, err)
	}
	return def
}

// TipRack300 is a 96 tip rack, zDimension 64.69, tipLength 59.3.
func TipRack300(t testing.TB) definition.Labware { return Labware(t, TipRack300File) }

// Plate96 is a 96 well plate, zDimension 14.22, circular wells.
func Plate96(t testing.TB) definition.Labware { return Labware(t, Plate96File) }

// Reservoir12 is a 12 well reservoir with rectangular wells and the
// centerMultichannelOnWells quirk, zDimension 31.4.
func Reservoir12(t testing.TB) definition.Labware { return Labware(t, Reservoir12File) }

// Box builds a minimal labware definition with a single circular well at
// the origin, for tests that need exact numbers.
func Box(loadName string, zDimension, wellDepth float64, quirks ...string) definition.Labware {
	return definition.Labware{
		SchemaVersion: 2,
		Namespace:     "test",
		Version:       1,
		Parameters: definition.Parameters{
			LoadName: loadName,
			Quirks:   quirks,
		},
		Dimensions: definition.Dimensions{ZDimension: zDimension},
		Wells: map[string]definition.Well{
			"A1": {Shape: definition.ShapeCircular, Depth: wellDepth, Diameter: 5, TotalLiquidVolume: 100},
			"A2": {Shape: definition.ShapeCircular, Depth: wellDepth, X: 9, Diameter: 5, TotalLiquidVolume: 100},
		},
	}
}

// FlatDeck is a deck whose slots all sit at the origin.
func FlatDeck() definition.Deck {
	var def definition.Deck
	def.OtID = "flat"
	for _, id := range []string{"1", "2", "3"} {
		def.Locations.OrderedSlots = append(def.Locations.OrderedSlots, definition.SlotDefinition{
			ID:       id,
			Position: []float64{0, 0, 0},
		})
	}
	return def
}
