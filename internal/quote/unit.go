package quote

import (
	"errors"
	"slices"
	"strings"
)

// Unit is a measurement unit for the sign dimensions.
type Unit string

// Supported units.
const (
	Inches      Unit = "inches"
	Feet        Unit = "feet"
	Centimeters Unit = "cm"
	Meters      Unit = "meters"
)

// DefaultUnit is selected for new and reset forms.
const DefaultUnit = Inches

// Units lists the units in toggle order.
var Units = []Unit{Inches, Feet, Centimeters, Meters}

// ErrUnknownUnit is returned when selecting a unit outside Units.
var ErrUnknownUnit = errors.New("unknown unit")

var unitAliases = map[string]Unit{
	"in":          Inches,
	"inch":        Inches,
	"ft":          Feet,
	"foot":        Feet,
	"centimeters": Centimeters,
	"m":           Meters,
	"meter":       Meters,
}

// ParseUnit resolves a unit name or common abbreviation, ignoring case.
func ParseUnit(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if u := Unit(s); u.Valid() {
		return u, true
	}
	u, ok := unitAliases[s]
	return u, ok
}

// Valid reports whether u is one of Units.
func (u Unit) Valid() bool {
	return slices.Contains(Units, u)
}

// Short is the abbreviation shown on toggle buttons.
func (u Unit) Short() string {
	switch u {
	case Inches:
		return "in"
	case Feet:
		return "ft"
	case Centimeters:
		return "cm"
	case Meters:
		return "m"
	}
	return string(u)
}

// Next returns the unit after u in toggle order, wrapping around.
func (u Unit) Next() Unit {
	i := slices.Index(Units, u)
	return Units[(i+1)%len(Units)]
}

// Toggle is one unit button of a dimension field.
type Toggle struct {
	Unit   Unit
	Active bool
}
