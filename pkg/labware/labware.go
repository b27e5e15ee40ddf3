// Package labware is the registry of loaded labware instances. Each
// instance pairs a definition with the slot it sits in and the calibration
// offset applied to every one of its wells.
//
// The store is not synchronized. All mutations must come from the single
// goroutine that sequences commands.
package labware

import (
	"github.com/google/uuid"

	"github.com/Opentrons/OpenTrons/pkg/command"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// Location is where a labware instance sits on the deck.
type Location struct {
	Slot types.DeckSlotName
}

// Data is one loaded labware instance. Values handed out by the store are
// deep copies; changing them, including their definition's wells and
// quirks, does not affect the store.
type Data struct {
	ID          string
	Location    Location
	Definition  definition.Labware
	Calibration types.Point
}

// NewID returns a fresh labware id.
func NewID() string {
	return uuid.NewString()
}

func (d *Data) clone() Data {
	out := *d
	out.Definition = d.Definition.Clone()
	return out
}

// Slots is the deck lookup placements are checked against.
type Slots interface {
	SlotPosition(slot types.DeckSlotName) (types.Point, error)
}

// Store holds loaded labware keyed by id.
type Store struct {
	slots   Slots
	labware map[string]*Data
	order   []string
	log     *log.Logger
}

// NewStore creates an empty store whose labware may only sit in slots
// known to slots.
func NewStore(slots Slots) *Store {
	return &Store{
		slots:   slots,
		labware: make(map[string]*Data),
		log:     log.GetLogger("labware"),
	}
}

// Load adds a labware instance. An empty id is replaced by a generated one.
// The slot must exist on the deck. The store keeps its own copy of def.
func (s *Store) Load(id string, slot types.DeckSlotName, def definition.Labware, calibration types.Point) (Data, error) {
	if id == "" {
		id = NewID()
	}
	if _, ok := s.labware[id]; ok {
		return Data{}, errors.LabwareAlreadyExistsError(id)
	}
	if _, err := s.slots.SlotPosition(slot); err != nil {
		return Data{}, err
	}
	data := &Data{
		ID:          id,
		Location:    Location{Slot: slot},
		Definition:  def.Clone(),
		Calibration: calibration,
	}
	s.labware[id] = data
	s.order = append(s.order, id)

	s.log.WithFields(log.Fields{
		"labware_id": id,
		"uri":        def.URI(),
		"slot":       slot,
	}).Debug("labware loaded")
	return data.clone(), nil
}

// SetCalibration replaces a labware's calibration offset.
func (s *Store) SetCalibration(id string, calibration types.Point) error {
	data, ok := s.labware[id]
	if !ok {
		return errors.LabwareDoesNotExistError(id)
	}
	data.Calibration = calibration

	s.log.WithField("labware_id", id).WithField("offset", calibration).Debug("labware calibration set")
	return nil
}

// Remove unloads a labware instance.
func (s *Store) Remove(id string) error {
	if _, ok := s.labware[id]; !ok {
		return errors.LabwareDoesNotExistError(id)
	}
	delete(s.labware, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Reset unloads everything.
func (s *Store) Reset() {
	s.labware = make(map[string]*Data)
	s.order = nil
}

// HandleCompletedCommand applies load and calibration commands. Failed
// commands are ignored.
func (s *Store) HandleCompletedCommand(cmd command.Completed) error {
	if !cmd.Succeeded() {
		return nil
	}
	switch req := cmd.Request.(type) {
	case command.LoadLabwareRequest:
		id := req.LabwareID
		if res, ok := cmd.Result.(command.LoadLabwareResult); ok && res.LabwareID != "" {
			id = res.LabwareID
		}
		_, err := s.Load(id, req.Slot, req.Definition, req.Calibration)
		return err
	case command.SetLabwareCalibrationRequest:
		return s.SetCalibration(req.LabwareID, req.Calibration)
	}
	return nil
}

// Get returns a labware instance by id.
func (s *Store) Get(id string) (Data, error) {
	data, ok := s.labware[id]
	if !ok {
		return Data{}, errors.LabwareDoesNotExistError(id)
	}
	return data.clone(), nil
}

// All returns every loaded instance in load order.
func (s *Store) All() []Data {
	out := make([]Data, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.labware[id].clone())
	}
	return out
}

// Len returns the number of loaded instances.
func (s *Store) Len() int {
	return len(s.order)
}

// WellDefinition returns the geometry of one well.
func (s *Store) WellDefinition(id, wellName string) (definition.Well, error) {
	data, ok := s.labware[id]
	if !ok {
		return definition.Well{}, errors.LabwareDoesNotExistError(id)
	}
	well, ok := data.Definition.Wells[wellName]
	if !ok {
		return definition.Well{}, errors.WellDoesNotExistError(id, wellName)
	}
	return well, nil
}

// HasQuirk reports whether a labware's definition lists quirk.
func (s *Store) HasQuirk(id, quirk string) (bool, error) {
	data, ok := s.labware[id]
	if !ok {
		return false, errors.LabwareDoesNotExistError(id)
	}
	return data.Definition.HasQuirk(quirk), nil
}

// DefinitionURI returns a labware's definition URI.
func (s *Store) DefinitionURI(id string) (string, error) {
	data, ok := s.labware[id]
	if !ok {
		return "", errors.LabwareDoesNotExistError(id)
	}
	return data.Definition.URI(), nil
}

// IsTipRack reports whether a labware is a tip rack.
func (s *Store) IsTipRack(id string) (bool, error) {
	data, ok := s.labware[id]
	if !ok {
		return false, errors.LabwareDoesNotExistError(id)
	}
	return data.Definition.Parameters.IsTiprack, nil
}

// TipLength returns the nominal tip length of a tip rack.
func (s *Store) TipLength(id string) (float64, error) {
	data, ok := s.labware[id]
	if !ok {
		return 0, errors.LabwareDoesNotExistError(id)
	}
	params := data.Definition.Parameters
	if !params.IsTiprack || params.TipLength <= 0 {
		return 0, errors.New(errors.ErrLabwareIsNotTipRack,
			"Labware "+id+" has no tip length; it is not a tip rack.").
			SetContext("labware_id", id)
	}
	return params.TipLength, nil
}
