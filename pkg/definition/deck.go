// Package definition decodes deck and labware definition documents. The
// documents are assumed to have been validated by whoever produced them;
// decoding only rejects shapes the geometry code cannot index.
package definition

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Opentrons/OpenTrons/pkg/errors"
)

// BoundingBox is the footprint of a slot.
type BoundingBox struct {
	XDimension float64 `yaml:"xDimension"`
	YDimension float64 `yaml:"yDimension"`
	ZDimension float64 `yaml:"zDimension"`
}

// SlotDefinition is one entry of locations.orderedSlots.
type SlotDefinition struct {
	ID          string      `yaml:"id"`
	Position    []float64   `yaml:"position"`
	BoundingBox BoundingBox `yaml:"boundingBox"`
	DisplayName string      `yaml:"displayName"`
}

// DeckLocations holds the slot list of a deck definition.
type DeckLocations struct {
	OrderedSlots []SlotDefinition `yaml:"orderedSlots"`
}

// Deck is a deck definition document.
type Deck struct {
	OtID          string        `yaml:"otId"`
	SchemaVersion int           `yaml:"schemaVersion"`
	Locations     DeckLocations `yaml:"locations"`
}

// ParseDeck decodes a deck definition. JSON documents decode as-is since
// JSON is a subset of YAML.
func ParseDeck(data []byte) (Deck, error) {
	return LoadDeck(bytes.NewReader(data))
}

// LoadDeck decodes a deck definition from r.
func LoadDeck(r io.Reader) (Deck, error) {
	var def Deck
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return Deck{}, errors.DefinitionError("deck", err)
	}
	for _, slot := range def.Locations.OrderedSlots {
		if len(slot.Position) != 3 {
			return Deck{}, errors.DefinitionError("deck",
				fmt.Errorf("slot %s: position must have 3 components, got %d", slot.ID, len(slot.Position)))
		}
	}
	return def, nil
}
