package units

import (
	"regexp"
	"strconv"
)

// quantityPattern matches strings like "15.5 bar", "-3 °C" or "1.2e3 m³/h":
// a decimal number, whitespace, then a unit symbol.
var quantityPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)\s+([a-zA-Z°µ][a-zA-Z0-9°µ²³/]*)\s*$`)

// Detect splits a candidate quantity string into its numeric value and unit
// symbol. It only checks shape; the unit may be unknown to the conversion
// tables.
func Detect(s string) (value float64, unit string, ok bool) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return value, m[2], true
}

// IsQuantity reports whether s has the shape of a value-with-unit string.
func IsQuantity(s string) bool {
	_, _, ok := Detect(s)
	return ok
}
