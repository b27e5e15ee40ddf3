package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Opentrons/OpenTrons/pkg/command"
	"github.com/Opentrons/OpenTrons/pkg/config"
	"github.com/Opentrons/OpenTrons/pkg/definition"
	"github.com/Opentrons/OpenTrons/pkg/engine"
	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/motionplan"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// scenario is one golden case: a deck, what is loaded on it, and the
// steps to replay against the engine.
type scenario struct {
	Deck     document       `yaml:"deck"`
	Config   string         `yaml:"config"`
	Labware  []labwareLoad  `yaml:"labware"`
	Pipettes []pipetteLoad  `yaml:"pipettes"`
	Steps    []scenarioStep `yaml:"steps"`
}

// document is a definition given inline or as a file path relative to
// the scenario.
type document struct {
	File   string    `yaml:"file"`
	Inline yaml.Node `yaml:"inline"`
}

type labwareLoad struct {
	ID          string      `yaml:"id"`
	Slot        string      `yaml:"slot"`
	Definition  document    `yaml:"definition"`
	Calibration types.Point `yaml:"calibration"`
}

type pipetteLoad struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name"`
	Mount      string             `yaml:"mount"`
	TipOverlap map[string]float64 `yaml:"tip_overlap"`
}

// scenarioStep is either a completed command to apply or a query whose
// answer is recorded in the golden output.
type scenarioStep struct {
	Do         string      `yaml:"do"`
	Pipette    string      `yaml:"pipette"`
	Labware    string      `yaml:"labware"`
	Well       string      `yaml:"well"`
	Origin     types.Point `yaml:"origin"`
	OriginCP   string      `yaml:"origin_cp"`
	MaxTravelZ *float64    `yaml:"max_travel_z"`
	Volume     float64     `yaml:"volume"`
	Failed     bool        `yaml:"failed"`
}

func loadScenario(path string) (*scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc scenario
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sc, nil
}

func (d document) read(dir string) ([]byte, error) {
	switch {
	case d.File != "" && !d.Inline.IsZero():
		return nil, fmt.Errorf("definition has both file and inline")
	case d.File != "":
		return os.ReadFile(filepath.Join(dir, d.File))
	case !d.Inline.IsZero():
		return yaml.Marshal(&d.Inline)
	}
	return nil, fmt.Errorf("definition is empty")
}

// runScenario replays a scenario and returns the golden output lines.
// opts are passed to the engine.
func runScenario(path string, opts ...engine.Option) ([]string, error) {
	sc, err := loadScenario(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	deckDoc, err := sc.Deck.read(dir)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	deckDef, err := definition.ParseDeck(deckDoc)
	if err != nil {
		return nil, err
	}

	cfgFile, err := config.LoadString(sc.Config)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParseEngineConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfgFile.CheckUnused(); err != nil {
		return nil, err
	}

	eng, err := engine.New(deckDef, cfg, opts...)
	if err != nil {
		return nil, err
	}

	r := &replay{engine: eng}
	for _, lw := range sc.Labware {
		if err := r.loadLabware(dir, lw); err != nil {
			return nil, fmt.Errorf("labware %s: %w", lw.ID, err)
		}
	}
	for _, pip := range sc.Pipettes {
		if err := r.loadPipette(pip); err != nil {
			return nil, fmt.Errorf("pipette %s: %w", pip.ID, err)
		}
	}
	for i, step := range sc.Steps {
		if err := r.step(i+1, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return r.out, nil
}

type replay struct {
	engine *engine.Engine
	seq    int
	out    []string
}

func (r *replay) apply(req command.Request, res command.Result, failed bool) error {
	r.seq++
	cmd := command.Completed{ID: fmt.Sprintf("cmd-%d", r.seq), Request: req, Result: res}
	if failed {
		cmd.Result = nil
		cmd.Error = stderrors.New("command failed")
	}
	return r.engine.HandleCompletedCommand(cmd)
}

func (r *replay) loadLabware(dir string, lw labwareLoad) error {
	doc, err := lw.Definition.read(dir)
	if err != nil {
		return err
	}
	def, err := definition.ParseLabware(doc)
	if err != nil {
		return err
	}
	slot, err := types.ParseDeckSlotName(lw.Slot)
	if err != nil {
		return err
	}
	return r.apply(
		command.LoadLabwareRequest{LabwareID: lw.ID, Slot: slot, Definition: def, Calibration: lw.Calibration},
		command.LoadLabwareResult{LabwareID: lw.ID},
		false,
	)
}

func (r *replay) loadPipette(pip pipetteLoad) error {
	mount, err := types.ParseMountType(pip.Mount)
	if err != nil {
		return err
	}
	return r.apply(
		command.LoadPipetteRequest{PipetteID: pip.ID, PipetteName: pip.Name, Mount: mount, TipOverlap: pip.TipOverlap},
		command.LoadPipetteResult{PipetteID: pip.ID},
		false,
	)
}

func (r *replay) printf(format string, args ...any) {
	r.out = append(r.out, fmt.Sprintf(format, args...))
}

// result records a query error by code, so golden files do not depend
// on message wording.
func (r *replay) result(err error) bool {
	if err == nil {
		return true
	}
	var hostErr *errors.HostError
	if stderrors.As(err, &hostErr) {
		r.printf("error: %s", hostErr.Code)
	} else {
		r.printf("error: %v", err)
	}
	return false
}

func (r *replay) step(n int, s scenarioStep) error {
	target := command.WellTarget{PipetteID: s.Pipette, LabwareID: s.Labware, WellName: s.Well}

	switch s.Do {
	case "moveToWell", "aspirate", "dispense", "pickUpTip", "dropTip":
		r.printf("## %d %s %s %s/%s", n, s.Do, s.Pipette, s.Labware, s.Well)
		req, res := wellCommand(s.Do, target, s.Volume)
		if err := r.apply(req, res, s.Failed); err != nil {
			return err
		}
		if s.Failed {
			r.printf("failed")
		} else {
			r.printf("ok")
		}

	case "home":
		r.printf("## %d home", n)
		if err := r.apply(command.HomeRequest{}, command.HomeResult{}, s.Failed); err != nil {
			return err
		}
		r.printf("ok")

	case "plan":
		cp, err := types.ParseCriticalPoint(s.OriginCP)
		if err != nil {
			return err
		}
		r.printf("## %d plan %s %s/%s from %s %s", n, s.Pipette, s.Labware, s.Well, s.Origin, cp)
		var waypoints []motionplan.Waypoint
		if s.MaxTravelZ != nil {
			waypoints, err = r.engine.MovementWaypointsBelow(s.Pipette, s.Labware, s.Well, s.Origin, cp, *s.MaxTravelZ)
		} else {
			waypoints, err = r.engine.MovementWaypoints(s.Pipette, s.Labware, s.Well, s.Origin, cp)
		}
		if r.result(err) {
			for _, wp := range waypoints {
				r.printf("%s %s", wp.Position, wp.CriticalPoint)
			}
		}

	case "location":
		r.printf("## %d location %s", n, s.Pipette)
		loc, err := r.engine.PipetteLocation(s.Pipette)
		if r.result(err) {
			r.printf("mount %s critical point %s", loc.Mount, loc.CriticalPoint)
		}

	case "tip":
		r.printf("## %d tip %s %s/%s", n, s.Pipette, s.Labware, s.Well)
		tip, err := r.engine.TipGeometry(s.Pipette, s.Labware, s.Well)
		if r.result(err) {
			r.printf("length %.3f diameter %.3f volume %d", tip.EffectiveLength, tip.Diameter, tip.Volume)
		}

	case "highest_z":
		if s.Labware != "" {
			r.printf("## %d highest_z %s", n, s.Labware)
			z, err := r.engine.LabwareHighestZ(s.Labware)
			if r.result(err) {
				r.printf("%.3f", z)
			}
			break
		}
		r.printf("## %d highest_z", n)
		z, err := r.engine.AllLabwareHighestZ()
		if r.result(err) {
			r.printf("%.3f", z)
		}

	case "reset":
		r.printf("## %d reset", n)
		r.engine.Reset()
		r.printf("ok")

	default:
		return fmt.Errorf("unknown step %q", s.Do)
	}
	return nil
}

func wellCommand(do string, target command.WellTarget, volume float64) (command.Request, command.Result) {
	switch do {
	case "moveToWell":
		return command.MoveToWellRequest{WellTarget: target}, command.MoveToWellResult{}
	case "aspirate":
		return command.AspirateRequest{WellTarget: target, Volume: volume}, command.AspirateResult{Volume: volume}
	case "dispense":
		return command.DispenseRequest{WellTarget: target, Volume: volume}, command.DispenseResult{Volume: volume}
	case "pickUpTip":
		return command.PickUpTipRequest{WellTarget: target}, command.PickUpTipResult{}
	default:
		return command.DropTipRequest{WellTarget: target}, command.DropTipResult{}
	}
}
