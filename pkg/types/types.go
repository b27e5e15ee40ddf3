// Package types holds the value types shared by the deck, labware and
// motion packages.
package types

import (
	"fmt"

	"github.com/Opentrons/OpenTrons/pkg/errors"
)

// Point is an absolute or relative position in deck coordinates (mm).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns the component-wise sum of p and o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns the component-wise difference p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// WithZ returns p with its z component replaced.
func (p Point) WithZ(z float64) Point {
	p.Z = z
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}

// DeckSlotName identifies a deck slot.
type DeckSlotName string

const (
	Slot1      DeckSlotName = "1"
	Slot2      DeckSlotName = "2"
	Slot3      DeckSlotName = "3"
	Slot4      DeckSlotName = "4"
	Slot5      DeckSlotName = "5"
	Slot6      DeckSlotName = "6"
	Slot7      DeckSlotName = "7"
	Slot8      DeckSlotName = "8"
	Slot9      DeckSlotName = "9"
	Slot10     DeckSlotName = "10"
	Slot11     DeckSlotName = "11"
	FixedTrash DeckSlotName = "12"
)

var deckSlotNames = []DeckSlotName{
	Slot1, Slot2, Slot3, Slot4, Slot5, Slot6,
	Slot7, Slot8, Slot9, Slot10, Slot11, FixedTrash,
}

// DeckSlotNames returns every slot name in deck order.
func DeckSlotNames() []DeckSlotName {
	out := make([]DeckSlotName, len(deckSlotNames))
	copy(out, deckSlotNames)
	return out
}

// ParseDeckSlotName validates s against the closed set of slot names.
func ParseDeckSlotName(s string) (DeckSlotName, error) {
	for _, name := range deckSlotNames {
		if string(name) == s {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrSlotDoesNotExist, fmt.Sprintf("%q is not a deck slot name", s)).
		SetContext("slot", s)
}

func (s DeckSlotName) String() string {
	return string(s)
}

// MountType is the gantry mount an instrument is attached to.
type MountType string

const (
	MountLeft  MountType = "left"
	MountRight MountType = "right"
)

// ParseMountType parses "left" or "right".
func ParseMountType(s string) (MountType, error) {
	switch MountType(s) {
	case MountLeft, MountRight:
		return MountType(s), nil
	}
	return "", fmt.Errorf("invalid mount %q: expected left or right", s)
}

// CriticalPoint selects which physical point of an instrument is positioned
// at a target. The zero value, CriticalPointNone, leaves the choice to the
// mount's default.
type CriticalPoint int

const (
	CriticalPointNone CriticalPoint = iota
	// CriticalPointMount is the legacy mount reference point.
	CriticalPointMount
	// CriticalPointNozzle is the end of the (back-most) nozzle.
	CriticalPointNozzle
	// CriticalPointTip is the end of the (back-most) attached tip.
	CriticalPointTip
	// CriticalPointXYCenter centers a multichannel pipette in XY.
	CriticalPointXYCenter
	// CriticalPointFrontNozzle is the end of the front-most nozzle.
	CriticalPointFrontNozzle
)

func (cp CriticalPoint) String() string {
	switch cp {
	case CriticalPointNone:
		return "none"
	case CriticalPointMount:
		return "mount"
	case CriticalPointNozzle:
		return "nozzle"
	case CriticalPointTip:
		return "tip"
	case CriticalPointXYCenter:
		return "xy_center"
	case CriticalPointFrontNozzle:
		return "front_nozzle"
	default:
		return fmt.Sprintf("CriticalPoint(%d)", int(cp))
	}
}

// ParseCriticalPoint is the inverse of String.
func ParseCriticalPoint(s string) (CriticalPoint, error) {
	for cp := CriticalPointNone; cp <= CriticalPointFrontNozzle; cp++ {
		if cp.String() == s {
			return cp, nil
		}
	}
	if s == "" {
		return CriticalPointNone, nil
	}
	return CriticalPointNone, fmt.Errorf("invalid critical point %q", s)
}
