package definition

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Opentrons/OpenTrons/pkg/errors"
)

// Well shapes.
const (
	ShapeCircular    = "circular"
	ShapeRectangular = "rectangular"
)

// QuirkCenterMultichannelOnWells marks labware whose wells must be accessed
// with a multichannel pipette centered over the well.
const QuirkCenterMultichannelOnWells = "centerMultichannelOnWells"

// Well is the geometry of one well, relative to the labware origin.
// Z is the well bottom; the top is Z + Depth.
type Well struct {
	Shape             string  `yaml:"shape"`
	Depth             float64 `yaml:"depth"`
	TotalLiquidVolume float64 `yaml:"totalLiquidVolume"`
	X                 float64 `yaml:"x"`
	Y                 float64 `yaml:"y"`
	Z                 float64 `yaml:"z"`
	// Diameter is only meaningful for circular wells.
	Diameter float64 `yaml:"diameter"`
	// XDimension and YDimension are only meaningful for rectangular wells.
	XDimension float64 `yaml:"xDimension"`
	YDimension float64 `yaml:"yDimension"`
}

// Dimensions is the overall labware bounding box.
type Dimensions struct {
	XDimension float64 `yaml:"xDimension"`
	YDimension float64 `yaml:"yDimension"`
	ZDimension float64 `yaml:"zDimension"`
}

// Parameters carries the labware's behavioural flags.
type Parameters struct {
	Format    string   `yaml:"format"`
	LoadName  string   `yaml:"loadName"`
	Quirks    []string `yaml:"quirks"`
	IsTiprack bool     `yaml:"isTiprack"`
	// TipLength is the nominal tip length; only set on tip racks.
	TipLength float64 `yaml:"tipLength"`
}

// Metadata is descriptive only.
type Metadata struct {
	DisplayName     string `yaml:"displayName"`
	DisplayCategory string `yaml:"displayCategory"`
}

// Labware is a labware definition document.
type Labware struct {
	SchemaVersion int             `yaml:"schemaVersion"`
	Namespace     string          `yaml:"namespace"`
	Version       int             `yaml:"version"`
	Metadata      Metadata        `yaml:"metadata"`
	Parameters    Parameters      `yaml:"parameters"`
	Dimensions    Dimensions      `yaml:"dimensions"`
	Ordering      [][]string      `yaml:"ordering"`
	Wells         map[string]Well `yaml:"wells"`
}

// URI returns the definition's lookup key, "namespace/loadName/version".
func (l *Labware) URI() string {
	return fmt.Sprintf("%s/%s/%d", l.Namespace, l.Parameters.LoadName, l.Version)
}

// HasQuirk reports whether the definition lists quirk.
func (l *Labware) HasQuirk(quirk string) bool {
	for _, q := range l.Parameters.Quirks {
		if q == quirk {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no maps or slices with l.
func (l *Labware) Clone() Labware {
	out := *l
	if l.Parameters.Quirks != nil {
		out.Parameters.Quirks = append([]string(nil), l.Parameters.Quirks...)
	}
	if l.Ordering != nil {
		out.Ordering = make([][]string, len(l.Ordering))
		for i, column := range l.Ordering {
			out.Ordering[i] = append([]string(nil), column...)
		}
	}
	if l.Wells != nil {
		out.Wells = make(map[string]Well, len(l.Wells))
		for name, well := range l.Wells {
			out.Wells[name] = well
		}
	}
	return out
}

// ParseLabware decodes a labware definition.
func ParseLabware(data []byte) (Labware, error) {
	return LoadLabware(bytes.NewReader(data))
}

// LoadLabware decodes a labware definition from r.
func LoadLabware(r io.Reader) (Labware, error) {
	var def Labware
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return Labware{}, errors.DefinitionError("labware", err)
	}
	if def.Parameters.LoadName == "" {
		return Labware{}, errors.DefinitionError("labware", fmt.Errorf("parameters.loadName is required"))
	}
	return def, nil
}
