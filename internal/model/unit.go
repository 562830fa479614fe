package model

import "strings"

// Unit is a length unit a dimension was authored in.
type Unit string

const (
	UnitMM Unit = "mm"
	UnitCM Unit = "cm"
	UnitM  Unit = "m"
)

// CanonicalUnit is the unit all geometry is computed in.
const CanonicalUnit = UnitMM

var unitFactors = map[Unit]float64{
	UnitMM: 1,
	UnitCM: 10,
	UnitM:  1000,
}

// ToCanonical converts value from unit into millimetres.
// Unknown units return value unchanged.
func ToCanonical(value float64, unit Unit) float64 {
	factor, ok := unitFactors[unit]
	if !ok {
		return value
	}
	return value * factor
}

// FromCanonical converts a millimetre value into unit. Unknown units return value unchanged.
func FromCanonical(value float64, unit Unit) float64 {
	factor, ok := unitFactors[unit]
	if !ok {
		return value
	}
	return value / factor
}

// ParseUnit parses a unit name case-insensitively.
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	_, ok := unitFactors[u]
	return u, ok
}

// Units returns the supported units in ascending size, for UI dropdowns.
func Units() []Unit {
	return []Unit{UnitMM, UnitCM, UnitM}
}

func (u Unit) String() string {
	return string(u)
}
