// Package deck is the immutable deck model: slot names mapped to their
// anchor positions in deck coordinates.
package deck

import (
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// Deck answers slot queries over a loaded definition. It is never
// modified after New.
type Deck struct {
	def   definition.Deck
	slots map[types.DeckSlotName]definition.SlotDefinition
}

// New indexes the definition's slots by name.
func New(def definition.Deck) *Deck {
	slots := make(map[types.DeckSlotName]definition.SlotDefinition, len(def.Locations.OrderedSlots))
	for _, slot := range def.Locations.OrderedSlots {
		slots[types.DeckSlotName(slot.ID)] = slot
	}
	return &Deck{def: def, slots: slots}
}

// Definition returns the deck definition the model was built from.
func (d *Deck) Definition() definition.Deck {
	return d.def
}

// SlotDefinition returns the definition of a slot.
func (d *Deck) SlotDefinition(slot types.DeckSlotName) (definition.SlotDefinition, error) {
	def, ok := d.slots[slot]
	if !ok {
		return definition.SlotDefinition{}, errors.SlotDoesNotExistError(string(slot), d.def.OtID)
	}
	return def, nil
}

// SlotPosition returns the anchor position of a slot.
func (d *Deck) SlotPosition(slot types.DeckSlotName) (types.Point, error) {
	def, err := d.SlotDefinition(slot)
	if err != nil {
		return types.Point{}, err
	}
	return types.Point{X: def.Position[0], Y: def.Position[1], Z: def.Position[2]}, nil
}
