package units

import "fmt"

// Conversion maps a unit to the SI base unit of its dimension:
// base = value*Factor + Offset.
type Conversion struct {
	Factor float64
	Offset float64
}

// Dimension is one physical dimension with its SI base unit and the units
// convertible to it.
type Dimension struct {
	Name     string
	BaseUnit string
	units    map[string]Conversion
}

// Units returns the symbols the dimension can convert.
func (d *Dimension) Units() []string {
	symbols := make([]string, 0, len(d.units))
	for s := range d.units {
		symbols = append(symbols, s)
	}
	return symbols
}

// ToBase converts value in the given unit to the dimension's base unit.
func (d *Dimension) ToBase(value float64, unit string) (float64, error) {
	conv, ok := d.units[unit]
	if !ok {
		return 0, fmt.Errorf("unknown unit '%s' for dimension %s", unit, d.Name)
	}
	return value*conv.Factor + conv.Offset, nil
}

// FromBase converts a base-unit value into the given unit.
func (d *Dimension) FromBase(value float64, unit string) (float64, error) {
	conv, ok := d.units[unit]
	if !ok {
		return 0, fmt.Errorf("unknown unit '%s' for dimension %s", unit, d.Name)
	}
	return (value - conv.Offset) / conv.Factor, nil
}

func (d *Dimension) Has(unit string) bool {
	_, ok := d.units[unit]
	return ok
}

var dimensions = []*Dimension{
	{
		Name:     "pressure",
		BaseUnit: "Pa",
		units: map[string]Conversion{
			"Pa":   {Factor: 1},
			"kPa":  {Factor: 1e3},
			"MPa":  {Factor: 1e6},
			"mbar": {Factor: 100},
			"bar":  {Factor: 1e5},
			"psi":  {Factor: 6894.757293168},
			"atm":  {Factor: 101325},
		},
	},
	{
		Name:     "length",
		BaseUnit: "m",
		units: map[string]Conversion{
			"m":  {Factor: 1},
			"mm": {Factor: 1e-3},
			"cm": {Factor: 1e-2},
			"km": {Factor: 1e3},
			"in": {Factor: 0.0254},
			"ft": {Factor: 0.3048},
		},
	},
	{
		Name:     "temperature",
		BaseUnit: "K",
		units: map[string]Conversion{
			"K":  {Factor: 1},
			"°C": {Factor: 1, Offset: 273.15},
			"C":  {Factor: 1, Offset: 273.15},
			"°F": {Factor: 5.0 / 9.0, Offset: 255.37222222222223},
			"F":  {Factor: 5.0 / 9.0, Offset: 255.37222222222223},
		},
	},
	{
		Name:     "time",
		BaseUnit: "s",
		units: map[string]Conversion{
			"s":   {Factor: 1},
			"ms":  {Factor: 1e-3},
			"min": {Factor: 60},
			"h":   {Factor: 3600},
			"d":   {Factor: 86400},
		},
	},
	{
		Name:     "mass",
		BaseUnit: "kg",
		units: map[string]Conversion{
			"kg": {Factor: 1},
			"g":  {Factor: 1e-3},
			"mg": {Factor: 1e-6},
			"t":  {Factor: 1e3},
			"lb": {Factor: 0.45359237},
		},
	},
	{
		Name:     "energy",
		BaseUnit: "J",
		units: map[string]Conversion{
			"J":   {Factor: 1},
			"kJ":  {Factor: 1e3},
			"MJ":  {Factor: 1e6},
			"Wh":  {Factor: 3600},
			"kWh": {Factor: 3.6e6},
			"cal": {Factor: 4.184},
		},
	},
	{
		Name:     "power",
		BaseUnit: "W",
		units: map[string]Conversion{
			"W":  {Factor: 1},
			"kW": {Factor: 1e3},
			"MW": {Factor: 1e6},
			"hp": {Factor: 745.699872},
		},
	},
	{
		Name:     "flow_rate",
		BaseUnit: "m³/s",
		units: map[string]Conversion{
			"m³/s":  {Factor: 1},
			"m³/h":  {Factor: 1.0 / 3600.0},
			"L/s":   {Factor: 1e-3},
			"l/s":   {Factor: 1e-3},
			"L/min": {Factor: 1e-3 / 60.0},
			"l/min": {Factor: 1e-3 / 60.0},
			"L/h":   {Factor: 1e-3 / 3600.0},
			"l/h":   {Factor: 1e-3 / 3600.0},
		},
	},
	{
		Name:     "velocity",
		BaseUnit: "m/s",
		units: map[string]Conversion{
			"m/s":  {Factor: 1},
			"km/h": {Factor: 1.0 / 3.6},
			"ft/s": {Factor: 0.3048},
		},
	},
	{
		Name:     "force",
		BaseUnit: "N",
		units: map[string]Conversion{
			"N":   {Factor: 1},
			"kN":  {Factor: 1e3},
			"lbf": {Factor: 4.4482216152605},
		},
	},
	{
		Name:     "volume",
		BaseUnit: "m³",
		units: map[string]Conversion{
			"m³":  {Factor: 1},
			"L":   {Factor: 1e-3},
			"l":   {Factor: 1e-3},
			"mL":  {Factor: 1e-6},
			"ml":  {Factor: 1e-6},
			"gal": {Factor: 0.003785411784},
		},
	},
	{
		Name:     "area",
		BaseUnit: "m²",
		units: map[string]Conversion{
			"m²":  {Factor: 1},
			"cm²": {Factor: 1e-4},
			"mm²": {Factor: 1e-6},
			"km²": {Factor: 1e6},
			"ha":  {Factor: 1e4},
		},
	},
	{
		Name:     "density",
		BaseUnit: "kg/m³",
		units: map[string]Conversion{
			"kg/m³": {Factor: 1},
			"g/cm³": {Factor: 1e3},
			"g/mL":  {Factor: 1e3},
			"g/L":   {Factor: 1},
		},
	},
}

var byName = func() map[string]*Dimension {
	m := make(map[string]*Dimension, len(dimensions))
	for _, d := range dimensions {
		m[d.Name] = d
	}
	return m
}()

// DimensionByName returns the named dimension, or nil.
func DimensionByName(name string) *Dimension {
	return byName[name]
}

// DimensionOf finds the dimension a unit symbol belongs to. Symbols shared
// across dimensions do not occur in the table.
func DimensionOf(unit string) *Dimension {
	for _, d := range dimensions {
		if d.Has(unit) {
			return d
		}
	}
	return nil
}

// ToBase converts value in the given unit to its dimension's base unit.
func ToBase(value float64, unit string) (float64, *Dimension, error) {
	dim := DimensionOf(unit)
	if dim == nil {
		return 0, nil, fmt.Errorf("unknown unit '%s'", unit)
	}
	base, err := dim.ToBase(value, unit)
	if err != nil {
		return 0, nil, err
	}
	return base, dim, nil
}
