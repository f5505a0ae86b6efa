package units

import (
	"strconv"

	"github.com/procflow-tools/procflow/internal/schema"
)

// Preferences selects display units. Lookup order when formatting a
// property: per-query override, per-block-type unit, per-dimension unit,
// then the schema default.
type Preferences struct {
	// Query maps a property name to a unit for the current invocation.
	Query map[string]string
	// BlockTypes maps block type then property name to a unit.
	BlockTypes map[string]map[string]string
	// Dimensions maps a dimension name to its preferred unit.
	Dimensions map[string]string
}

// Formatter converts normalized base-unit property values into display
// strings like "15.5 bar" according to its preferences.
type Formatter struct {
	prefs Preferences
}

func NewFormatter(prefs Preferences) *Formatter {
	return &Formatter{prefs: prefs}
}

// FormatProperty renders a normalized property value in its preferred
// display unit. Non-numeric values, properties with no resolvable dimension
// and properties with no applicable unit preference pass through unchanged.
func (f *Formatter) FormatProperty(name string, value any, blockType, original string, meta *schema.PropertyMetadata) any {
	base, ok := asNumber(value)
	if !ok {
		return value
	}

	dim := f.dimensionFor(original, meta)
	if dim == nil {
		return value
	}

	unit := f.unitFor(name, blockType, dim, meta)
	if unit == "" || !dim.Has(unit) {
		return value
	}

	converted, err := dim.FromBase(base, unit)
	if err != nil {
		return value
	}
	return strconv.FormatFloat(converted, 'g', -1, 64) + " " + unit
}

// dimensionFor resolves the property's dimension from schema metadata, or
// failing that from the unit of the recorded original string.
func (f *Formatter) dimensionFor(original string, meta *schema.PropertyMetadata) *Dimension {
	if meta != nil && meta.Dimension != "" {
		if dim := DimensionByName(meta.Dimension); dim != nil {
			return dim
		}
	}
	if original != "" {
		if _, unit, ok := Detect(original); ok {
			return DimensionOf(unit)
		}
	}
	return nil
}

func (f *Formatter) unitFor(name, blockType string, dim *Dimension, meta *schema.PropertyMetadata) string {
	if unit, ok := f.prefs.Query[name]; ok {
		return unit
	}
	if props, ok := f.prefs.BlockTypes[blockType]; ok {
		if unit, ok := props[name]; ok {
			return unit
		}
	}
	if unit, ok := f.prefs.Dimensions[dim.Name]; ok {
		return unit
	}
	if meta != nil && meta.DefaultUnit != "" {
		return meta.DefaultUnit
	}
	return ""
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
