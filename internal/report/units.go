package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Unit is a display scale for times recorded in milliseconds.
type Unit struct {
	Name      string  // "ns", "us" or "ms"
	Label     string  // axis label form
	Factor    float64 // multiplier from milliseconds
	Precision int     // decimals used for bar labels
}

var (
	Nanoseconds  = Unit{Name: "ns", Label: "ns", Factor: 1e6, Precision: 0}
	Microseconds = Unit{Name: "us", Label: "μs", Factor: 1e3, Precision: 3}
	Milliseconds = Unit{Name: "ms", Label: "ms", Factor: 1, Precision: 6}
)

// Units lists the supported units.
var Units = []Unit{Nanoseconds, Microseconds, Milliseconds}

// ParseUnit looks up a unit by name, ignoring case.
func ParseUnit(name string) (Unit, error) {
	for _, u := range Units {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("unknown unit: %q (want ns, us or ms)", name)
}

// Suffix is appended to the base image name, e.g. "_ns".
func (u Unit) Suffix() string {
	return "_" + u.Name
}

// Format renders v with the unit's precision.
func (u Unit) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', u.Precision, 64)
}

// OutputPath inserts the unit suffix between the stem and extension of base.
func (u Unit) OutputPath(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + u.Suffix() + ext
}
