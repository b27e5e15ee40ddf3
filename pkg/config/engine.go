package config

import (
	"strings"

	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

// DefaultMaxTravelZ is the gantry ceiling used when [motion] omits
// max_travel_z.
const DefaultMaxTravelZ = 170.15

const pipetteSectionPrefix = "pipette "

// tipOverlapPrefix starts a per-tip-rack overlap option:
// "tip_overlap <definition uri>: <mm>".
const tipOverlapPrefix = "tip_overlap "

// tipOverlapDefault is the overlap option applied to tip racks with no
// entry of their own.
const tipOverlapDefault = "tip_overlap_default"

// MotionConfig holds the [motion] section.
type MotionConfig struct {
	MaxTravelZ float64
}

// LoggingConfig holds the [logging] section. Configured is false when the
// section is absent, in which case loggers keep their environment settings.
type LoggingConfig struct {
	Configured bool
	Level      log.LogLevel
	Format     log.OutputFormat
}

// Apply sets the level and output format of l and every logger sharing its
// output. It does nothing unless the section was configured.
func (c LoggingConfig) Apply(l *log.Logger) {
	if !c.Configured {
		return
	}
	l.SetLevel(c.Level)
	l.SetFormat(c.Format)
}

// EngineConfig is the validated engine configuration.
type EngineConfig struct {
	Motion  MotionConfig
	Logging LoggingConfig
	// TipOverlap holds the per-mount overlap tables from [pipette <mount>]
	// sections. The "default" key carries tip_overlap_default.
	TipOverlap map[types.MountType]map[string]float64
}

// DefaultEngineConfig returns the configuration used when no file is given.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Motion:     MotionConfig{MaxTravelZ: DefaultMaxTravelZ},
		Logging:    LoggingConfig{Level: log.INFO, Format: log.FormatText},
		TipOverlap: make(map[types.MountType]map[string]float64),
	}
}

// ParseEngineConfig reads the engine sections of c. Every section is
// optional; missing options keep their defaults. Unknown sections and
// options are left for CheckUnused to report.
func ParseEngineConfig(c *Config) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if sec := c.GetSectionOptional("motion"); sec != nil {
		zero := 0.0
		z, err := sec.GetFloatWithBounds("max_travel_z", FloatBounds{Above: &zero}, DefaultMaxTravelZ)
		if err != nil {
			return EngineConfig{}, err
		}
		cfg.Motion.MaxTravelZ = z
	}

	if sec := c.GetSectionOptional("logging"); sec != nil {
		level, err := sec.GetChoice("level", []string{"debug", "info", "warn", "warning", "error"}, "info")
		if err != nil {
			return EngineConfig{}, err
		}
		format, err := sec.GetChoice("format", []string{"text", "json"}, "text")
		if err != nil {
			return EngineConfig{}, err
		}
		cfg.Logging = LoggingConfig{Configured: true, Level: log.ParseLevel(level), Format: log.ParseFormat(format)}
	}

	for _, sec := range c.GetPrefixSections(pipetteSectionPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(sec.GetName(), pipetteSectionPrefix))
		mount, err := types.ParseMountType(name)
		if err != nil {
			return EngineConfig{}, NewConfigError(sec.GetName(), "", err.Error())
		}
		table, err := parseTipOverlap(sec)
		if err != nil {
			return EngineConfig{}, err
		}
		cfg.TipOverlap[mount] = table
	}

	return cfg, nil
}

func parseTipOverlap(sec *Section) (map[string]float64, error) {
	zero := 0.0
	bounds := FloatBounds{MinVal: &zero}
	table := make(map[string]float64)

	if sec.HasOption(tipOverlapDefault) {
		v, err := sec.GetFloatWithBounds(tipOverlapDefault, bounds)
		if err != nil {
			return nil, err
		}
		table["default"] = v
	}
	for _, opt := range sec.GetPrefixOptions(tipOverlapPrefix) {
		uri := strings.TrimSpace(strings.TrimPrefix(opt, tipOverlapPrefix))
		if uri == "" {
			return nil, NewConfigError(sec.GetName(), opt, "tip_overlap needs a tip rack definition uri")
		}
		v, err := sec.GetFloatWithBounds(opt, bounds)
		if err != nil {
			return nil, err
		}
		table[uri] = v
	}
	return table, nil
}
