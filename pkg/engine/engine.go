// Package engine wires the deck, labware, pipette, geometry and motion
// stores together behind one state store. Completed commands flow in
// through HandleCompletedCommand; everything else is a synchronous query.
//
// An Engine is not safe for concurrent use. The command sequencer owns it.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/Opentrons/OpenTrons/pkg/command"
	"github.com/Opentrons/OpenTrons/pkg/config"
	"github.com/Opentrons/OpenTrons/pkg/deck"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/geometry"
	"github.com/Opentrons/OpenTrons/pkg/labware"
	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/metrics"
	"github.com/Opentrons/OpenTrons/pkg/motion"
	"github.com/Opentrons/OpenTrons/pkg/motionplan"
	"github.com/Opentrons/OpenTrons/pkg/pipette"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records planner metrics on r instead of a private recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithLocationTracker replaces the system-wide single-location tracker.
func WithLocationTracker(t motion.LocationTracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine is the motion-planning state store.
type Engine struct {
	cfg config.EngineConfig

	deck     *deck.Deck
	labware  *labware.Store
	pipettes *pipette.Store
	geometry *geometry.State
	motion   *motion.State

	tracker motion.LocationTracker
	metrics *metrics.Recorder
	log     *log.Logger
}

// New builds an engine over a deck definition.
func New(deckDef definition.Deck, cfg config.EngineConfig, opts ...Option) (*Engine, error) {
	if !(cfg.Motion.MaxTravelZ > 0) {
		return nil, config.NewConfigError("motion", "max_travel_z", "max_travel_z must be above 0")
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New(nil)
	}
	if e.log == nil {
		e.log = log.GetLogger("engine")
	}
	cfg.Logging.Apply(e.log)

	overlaps := make(map[types.MountType]pipette.TipOverlap, len(cfg.TipOverlap))
	for mount, table := range cfg.TipOverlap {
		overlaps[mount] = pipette.TipOverlap(table)
	}

	e.deck = deck.New(deckDef)
	e.labware = labware.NewStore(e.deck)
	e.pipettes = pipette.NewStore(overlaps)
	e.geometry = geometry.New(e.deck, e.labware)
	e.motion = motion.NewState(e.geometry, e.pipettes, e.tracker)

	e.log.WithFields(log.Fields{
		"deck":         deckDef.OtID,
		"max_travel_z": cfg.Motion.MaxTravelZ,
	}).Info("engine ready")
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() config.EngineConfig {
	return e.cfg
}

// Metrics returns the recorder the engine reports to.
func (e *Engine) Metrics() *metrics.Recorder {
	return e.metrics
}

// Deck returns the deck model.
func (e *Engine) Deck() *deck.Deck {
	return e.deck
}

// HandleCompletedCommand applies a completed command to labware, then
// pipettes, then the tracked location. Failed commands change nothing.
func (e *Engine) HandleCompletedCommand(cmd command.Completed) error {
	if cmd.Request == nil {
		return errors.New(errors.ErrInvalidCommand, "completed command has no request").
			SetContext("command_id", cmd.ID)
	}
	if !cmd.Succeeded() {
		e.log.WithFields(log.Fields{
			"command_id": cmd.ID,
			"command":    cmd.Request.CommandType(),
		}).WithError(cmd.Error).Debug("ignoring failed command")
		return nil
	}

	handlers := []func(command.Completed) error{
		e.labware.HandleCompletedCommand,
		e.pipettes.HandleCompletedCommand,
		e.motion.HandleCompletedCommand,
	}
	for _, handle := range handlers {
		if err := handle(cmd); err != nil {
			return err
		}
	}
	e.metrics.SetLoaded(e.labware.Len(), e.pipettes.Len())
	return nil
}

// Reset unloads all labware and pipettes and forgets the tracked location.
func (e *Engine) Reset() {
	e.labware.Reset()
	e.pipettes.Reset()
	e.motion.Reset()
	e.metrics.SetLoaded(0, 0)
	e.log.Info("engine state reset")
}

// Labware returns a loaded labware instance.
func (e *Engine) Labware(labwareID string) (labware.Data, error) {
	return e.labware.Get(labwareID)
}

// AllLabware returns the loaded labware in load order.
func (e *Engine) AllLabware() []labware.Data {
	return e.labware.All()
}

// Pipette returns a loaded pipette.
func (e *Engine) Pipette(pipetteID string) (pipette.Data, error) {
	return e.pipettes.Get(pipetteID)
}

// CurrentLocation returns the last location a pipette was moved to.
func (e *Engine) CurrentLocation() (motion.LocationData, bool) {
	return e.motion.CurrentLocation()
}

// WellPosition returns the absolute position of the top of a well.
func (e *Engine) WellPosition(labwareID, wellName string) (types.Point, error) {
	return e.geometry.WellPosition(labwareID, wellName)
}

// WellPositionAt returns the absolute position of a point relative to a well.
func (e *Engine) WellPositionAt(labwareID, wellName string, loc geometry.WellLocation) (types.Point, error) {
	return e.geometry.WellPositionAt(labwareID, wellName, loc)
}

// LabwareHighestZ returns the top of one labware.
func (e *Engine) LabwareHighestZ(labwareID string) (float64, error) {
	return e.geometry.LabwareHighestZ(labwareID)
}

// AllLabwareHighestZ returns the top of the tallest loaded labware.
func (e *Engine) AllLabwareHighestZ() (float64, error) {
	return e.geometry.AllLabwareHighestZ()
}

// TipGeometry returns the geometry of the tip in a tip rack well as
// attached to a pipette, using that pipette's tip-overlap table.
func (e *Engine) TipGeometry(pipetteID, labwareID, wellName string) (geometry.TipGeometry, error) {
	pip, err := e.pipettes.Get(pipetteID)
	if err != nil {
		return geometry.TipGeometry{}, err
	}
	return e.geometry.TipGeometry(labwareID, wellName, pip.TipOverlap)
}

// PipetteLocation returns a pipette's mount and current critical point.
func (e *Engine) PipetteLocation(pipetteID string) (motion.PipetteLocationData, error) {
	return e.motion.PipetteLocation(pipetteID)
}

// MovementWaypoints plans a move to the top of a well under the configured
// gantry ceiling.
func (e *Engine) MovementWaypoints(
	pipetteID, labwareID, wellName string,
	origin types.Point,
	originCP types.CriticalPoint,
) ([]motionplan.Waypoint, error) {
	return e.plan(pipetteID, labwareID, wellName, origin, originCP, e.cfg.Motion.MaxTravelZ)
}

// MovementWaypointsBelow plans a move to the top of a well under an explicit
// ceiling, which must be above 0.
func (e *Engine) MovementWaypointsBelow(
	pipetteID, labwareID, wellName string,
	origin types.Point,
	originCP types.CriticalPoint,
	maxTravelZ float64,
) ([]motionplan.Waypoint, error) {
	if !(maxTravelZ > 0) || math.IsInf(maxTravelZ, 1) {
		err := errors.MotionPlanningError(fmt.Sprintf("max travel z %v must be a finite height above 0", maxTravelZ)).
			SetContext("max_travel_z", maxTravelZ)
		e.metrics.PlanFailed(metrics.ReasonInfeasible, 0)
		return nil, err
	}
	return e.plan(pipetteID, labwareID, wellName, origin, originCP, maxTravelZ)
}

func (e *Engine) plan(
	pipetteID, labwareID, wellName string,
	origin types.Point,
	originCP types.CriticalPoint,
	maxTravelZ float64,
) ([]motionplan.Waypoint, error) {
	start := time.Now()
	plan, err := e.motion.PlanMove(pipetteID, labwareID, wellName, origin, originCP, maxTravelZ)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.PlanFailed(failureReason(err), elapsed)
		return nil, err
	}
	e.metrics.ObservePlan(plan.Move.String(), len(plan.Waypoints), elapsed)
	return plan.Waypoints, nil
}

func failureReason(err error) string {
	switch {
	case errors.IsPlanning(err):
		return metrics.ReasonInfeasible
	case errors.IsNotFound(err):
		return metrics.ReasonNotFound
	case errors.Is(err, errors.ErrNoLabwareLoaded):
		return metrics.ReasonNoLabware
	default:
		return metrics.ReasonOther
	}
}
