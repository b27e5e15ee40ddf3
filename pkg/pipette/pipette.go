// Package pipette tracks loaded pipettes: which mount each one is on and
// its tip-overlap table.
package pipette

import (
	"github.com/google/uuid"

	"github.com/Opentrons/OpenTrons/pkg/command"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// DefaultOverlapKey is the TipOverlap entry used for tip racks without a
// specific entry.
const DefaultOverlapKey = "default"

// TipOverlap maps tip rack definition URIs to how far a tip slides over
// the nozzle, in mm.
type TipOverlap map[string]float64

// For returns the overlap for a tip rack URI, falling back to the default
// entry and then to zero.
func (t TipOverlap) For(uri string) float64 {
	if v, ok := t[uri]; ok {
		return v
	}
	return t[DefaultOverlapKey]
}

// Clone returns an independent copy.
func (t TipOverlap) Clone() TipOverlap {
	if t == nil {
		return nil
	}
	out := make(TipOverlap, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Data is one loaded pipette.
type Data struct {
	ID          string
	PipetteName string
	Mount       types.MountType
	TipOverlap  TipOverlap
}

// Store holds loaded pipettes keyed by id. It is not synchronized.
type Store struct {
	pipettes map[string]*Data
	// per-mount tables used when a load carries none
	defaults map[types.MountType]TipOverlap
	log      *log.Logger
}

// NewStore creates an empty store. defaults supplies tip-overlap tables
// by mount for pipettes loaded without one; it may be nil.
func NewStore(defaults map[types.MountType]TipOverlap) *Store {
	return &Store{
		pipettes: make(map[string]*Data),
		defaults: defaults,
		log:      log.GetLogger("pipettes"),
	}
}

// Load attaches a pipette. Loading onto an occupied mount replaces the
// pipette that was there.
func (s *Store) Load(id, name string, mount types.MountType, overlap TipOverlap) Data {
	if id == "" {
		id = uuid.NewString()
	}
	if overlap == nil {
		overlap = s.defaults[mount]
	}
	for otherID, other := range s.pipettes {
		if other.Mount == mount && otherID != id {
			delete(s.pipettes, otherID)
		}
	}
	data := &Data{ID: id, PipetteName: name, Mount: mount, TipOverlap: overlap.Clone()}
	s.pipettes[id] = data

	s.log.WithFields(log.Fields{"pipette_id": id, "mount": mount, "name": name}).Debug("pipette loaded")
	return *data
}

// Get returns a pipette by id.
func (s *Store) Get(id string) (Data, error) {
	data, ok := s.pipettes[id]
	if !ok {
		return Data{}, errors.PipetteDoesNotExistError(id)
	}
	out := *data
	out.TipOverlap = data.TipOverlap.Clone()
	return out, nil
}

// ByMount returns the pipette on a mount, if any.
func (s *Store) ByMount(mount types.MountType) (Data, bool) {
	for id, data := range s.pipettes {
		if data.Mount == mount {
			out, _ := s.Get(id)
			return out, true
		}
	}
	return Data{}, false
}

// Len returns the number of attached pipettes.
func (s *Store) Len() int {
	return len(s.pipettes)
}

// Reset unloads every pipette.
func (s *Store) Reset() {
	s.pipettes = make(map[string]*Data)
}

// HandleCompletedCommand applies load-pipette commands.
func (s *Store) HandleCompletedCommand(cmd command.Completed) error {
	if !cmd.Succeeded() {
		return nil
	}
	req, ok := cmd.Request.(command.LoadPipetteRequest)
	if !ok {
		return nil
	}
	id := req.PipetteID
	if res, ok := cmd.Result.(command.LoadPipetteResult); ok && res.PipetteID != "" {
		id = res.PipetteID
	}
	s.Load(id, req.PipetteName, req.Mount, req.TipOverlap)
	return nil
}
