package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Opentrons/OpenTrons/pkg/errors"
	"github.com/Opentrons/OpenTrons/pkg/log"
	"github.com/Opentrons/OpenTrons/pkg/types"
)

const sampleConfig = `
# engine settings
[motion]
max_travel_z: 150.5

[logging]
level: DEBUG
format = json

[pipette left]
tip_overlap_default: 7.47
tip_overlap opentrons/opentrons_96_tiprack_300ul/1: 7.2   # measured

[pipette right]
tip_overlap_default: 8
`

func TestLoadString(t *testing.T) {
	c, err := LoadString(sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, []string{"motion", "logging", "pipette left", "pipette right"}, c.GetSectionNames())

	sec, err := c.GetSection("motion")
	require.NoError(t, err)
	z, err := sec.GetFloat("max_travel_z")
	require.NoError(t, err)
	assert.Equal(t, 150.5, z)

	sec, err = c.GetSection("logging")
	require.NoError(t, err)
	v, err := sec.Get("format")
	require.NoError(t, err)
	assert.Equal(t, "json", v)
}

func TestLoadStringRejectsMalformedLines(t *testing.T) {
	_, err := LoadString("[motion]\njust some words\n")
	assert.Error(t, err)

	_, err = LoadString("[]\n")
	assert.Error(t, err)

	_, err = LoadString("[include other.cfg]\n")
	assert.Error(t, err)
}

func TestDuplicateSectionsMerge(t *testing.T) {
	c, err := LoadString("[motion]\nmax_travel_z: 1\n[motion]\nmax_travel_z: 2\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"motion"}, c.GetSectionNames())
	sec, err := c.GetSection("motion")
	require.NoError(t, err)
	z, err := sec.GetFloat("max_travel_z")
	require.NoError(t, err)
	assert.Equal(t, 2.0, z)
}

func TestSectionGetters(t *testing.T) {
	c, err := LoadString("[s]\nf: 1.5\nbad: abc\nmode: Json\n")
	require.NoError(t, err)
	sec, err := c.GetSection("s")
	require.NoError(t, err)

	_, err = sec.Get("missing")
	assert.True(t, errors.Is(err, errors.ErrConfigOption))

	v, err := sec.Get("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = sec.GetFloat("bad")
	assert.True(t, errors.Is(err, errors.ErrConfigValidation))

	one := 1.0
	two := 2.0
	_, err = sec.GetFloatWithBounds("f", FloatBounds{MinVal: &two})
	assert.True(t, errors.IsConfig(err))
	_, err = sec.GetFloatWithBounds("f", FloatBounds{MaxVal: &one})
	assert.Error(t, err)
	f, err := sec.GetFloatWithBounds("f", FloatBounds{Above: &one})
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	mode, err := sec.GetChoice("mode", []string{"text", "json"})
	require.NoError(t, err)
	assert.Equal(t, "json", mode)
	_, err = sec.GetChoice("f", []string{"text", "json"})
	assert.Error(t, err)

	_, err = c.GetSection("nope")
	assert.True(t, errors.Is(err, errors.ErrConfigSection))
}

func TestLoadFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "printer.cfg"), "[include pipettes/*.cfg]\n[motion]\nmax_travel_z: 100\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pipettes"), 0o755))
	writeFile(t, filepath.Join(dir, "pipettes", "left.cfg"), "[pipette left]\ntip_overlap_default: 7\n")
	writeFile(t, filepath.Join(dir, "pipettes", "right.cfg"), "[pipette right]\ntip_overlap_default: 8\n")

	c, err := Load(filepath.Join(dir, "printer.cfg"))
	require.NoError(t, err)

	assert.Equal(t, []string{"pipette left", "pipette right", "motion"}, c.GetSectionNames())
}

func TestLoadRejectsRecursiveInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cfg"), "[include b.cfg]\n")
	writeFile(t, filepath.Join(dir, "b.cfg"), "[include a.cfg]\n")

	_, err := Load(filepath.Join(dir, "a.cfg"))
	assert.ErrorContains(t, err, "recursive include")
}

func TestLoadMissingInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cfg"), "[include missing.cfg]\n")

	_, err := Load(filepath.Join(dir, "a.cfg"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestCheckUnused(t *testing.T) {
	c, err := LoadString("[motion]\nmax_travel_z: 100\nmax_speed: 3\n[extruder]\nstep_pin: PA1\n")
	require.NoError(t, err)

	_, err = ParseEngineConfig(c)
	require.NoError(t, err)

	err = c.CheckUnused()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extruder")
	assert.Contains(t, err.Error(), "max_speed")
	assert.True(t, errors.IsConfig(err))
}

func TestParseEngineConfig(t *testing.T) {
	c, err := LoadString(sampleConfig)
	require.NoError(t, err)

	cfg, err := ParseEngineConfig(c)
	require.NoError(t, err)
	require.NoError(t, c.CheckUnused())

	assert.Equal(t, 150.5, cfg.Motion.MaxTravelZ)
	assert.True(t, cfg.Logging.Configured)
	assert.Equal(t, log.DEBUG, cfg.Logging.Level)
	assert.Equal(t, log.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, map[types.MountType]map[string]float64{
		types.MountLeft: {
			"default":                                7.47,
			"opentrons/opentrons_96_tiprack_300ul/1": 7.2,
		},
		types.MountRight: {"default": 8},
	}, cfg.TipOverlap)
}

func TestParseEngineConfigDefaults(t *testing.T) {
	c, err := LoadString("")
	require.NoError(t, err)

	cfg, err := ParseEngineConfig(c)
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), cfg)
}

func TestLoggingConfigApply(t *testing.T) {
	logger := log.New("test")
	logger.SetLevel(log.ERROR)

	cfg := DefaultEngineConfig()
	cfg.Logging.Apply(logger)
	assert.Equal(t, log.ERROR, logger.GetLevel(), "absent section leaves the logger alone")

	c, err := LoadString("[logging]\nlevel: debug\nformat: json\n")
	require.NoError(t, err)
	cfg, err = ParseEngineConfig(c)
	require.NoError(t, err)
	cfg.Logging.Apply(logger.WithPrefix("child"))
	assert.Equal(t, log.DEBUG, logger.GetLevel(), "applies to the shared output")
}

func TestParseEngineConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"zero ceiling", "[motion]\nmax_travel_z: 0\n"},
		{"negative ceiling", "[motion]\nmax_travel_z: -5\n"},
		{"bad level", "[logging]\nlevel: chatty\n"},
		{"bad format", "[logging]\nformat: xml\n"},
		{"bad mount", "[pipette middle]\ntip_overlap_default: 7\n"},
		{"negative overlap", "[pipette left]\ntip_overlap_default: -1\n"},
		{"bad overlap", "[pipette left]\ntip_overlap test/box/1: far\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadString(tt.config)
			require.NoError(t, err)

			_, err = ParseEngineConfig(c)
			assert.True(t, errors.IsConfig(err), "got %v", err)
		})
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}
