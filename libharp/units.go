/*
Copyright © 2026 the HARP authors.
This file is part of HARP.

HARP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HARP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HARP.  If not, see <http://www.gnu.org/licenses/>.
*/

package libharp

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/unit"
)

// AmountDim is the dimension of particle counts. A mole is 6.02214076e23
// molecules.
var AmountDim = unit.NewDimension("molec")

// Avogadro's number.
const avogadro = 6.02214076e23

// unitDefinition is a unit expressed in SI base units: a value v in the
// unit is v*Value()+offset in SI.
type unitDefinition struct {
	si     *unit.Unit
	offset float64
}

// Units is a registry of unit symbols.
type Units struct {
	defs map[string]unitDefinition
}

// prefixes are tried in order, so "da" must precede "d".
var prefixes = []struct {
	symbol string
	scale  float64
}{
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12}, {"G", 1e9}, {"M", 1e6},
	{"k", 1e3}, {"h", 1e2}, {"da", 1e1}, {"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6},
	{"µ", 1e-6}, {"μ", 1e-6}, {"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
	{"z", 1e-21}, {"y", 1e-24},
}

// NewUnits returns a registry holding the built-in unit table.
func NewUnits() *Units {
	u := &Units{defs: make(map[string]unitDefinition)}
	base := func(value float64, d unit.Dimensions, symbols ...string) {
		for _, s := range symbols {
			u.defs[s] = unitDefinition{si: unit.New(value, d)}
		}
	}
	dimless := unit.Dimensions{}
	length := unit.Dimensions{unit.LengthDim: 1}
	tm := unit.Dimensions{unit.TimeDim: 1}
	angle := unit.Dimensions{unit.AngleDim: 1}
	pressure := unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
	energy := unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2}

	base(1, dimless, "1")
	base(1e-2, dimless, "%")
	base(1e-6, dimless, "ppmv", "ppm")
	base(1e-9, dimless, "ppbv", "ppb")
	base(1e-12, dimless, "pptv", "ppt")
	base(1, length, "m", "meter", "metre")
	base(1e-3, unit.Dimensions{unit.MassDim: 1}, "g", "gram")
	base(1e3, unit.Dimensions{unit.MassDim: 1}, "t")
	base(1, tm, "s", "second", "seconds")
	base(60, tm, "min", "minute", "minutes")
	base(3600, tm, "h", "hour", "hours")
	base(86400, tm, "d", "day", "days")
	base(1, unit.Dimensions{unit.TemperatureDim: 1}, "K", "kelvin")
	base(1, unit.Dimensions{unit.CurrentDim: 1}, "A")
	base(1, unit.Dimensions{unit.LuminousIntensityDim: 1}, "cd")
	base(1, angle, "rad", "radian", "radians")
	base(math.Pi/180, angle, "deg", "degree", "degrees", "degree_north", "degree_east",
		"degrees_north", "degrees_east")
	base(1, unit.Dimensions{unit.AngleDim: 2}, "sr")
	base(1, pressure, "Pa")
	base(1e5, pressure, "bar")
	base(101325, pressure, "atm")
	base(1, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -2}, "N")
	base(1, energy, "J")
	base(1, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3}, "W")
	base(1, unit.Dimensions{unit.TimeDim: -1}, "Hz")
	base(1, unit.Dimensions{AmountDim: 1}, "molec", "molecules")
	base(avogadro, unit.Dimensions{AmountDim: 1}, "mol")
	base(2.6867e20, unit.Dimensions{AmountDim: 1, unit.LengthDim: -2}, "DU")
	base(1e-3, unit.Dimensions{unit.LengthDim: 3}, "L", "l")

	u.defs["degC"] = unitDefinition{si: unit.New(1, unit.Dimensions{unit.TemperatureDim: 1}), offset: 273.15}
	u.defs["degF"] = unitDefinition{si: unit.New(5.0/9, unit.Dimensions{unit.TemperatureDim: 1}),
		offset: 459.67 * 5 / 9}
	return u
}

var defaultUnits = NewUnits()

// Clone returns an independent copy of the registry.
func (u *Units) Clone() *Units {
	o := &Units{defs: make(map[string]unitDefinition, len(u.defs))}
	for k, v := range u.defs {
		o.defs[k] = unitDefinition{si: v.si.Clone(), offset: v.offset}
	}
	return o
}

// Define adds symbol as scale times definition plus offset, where
// definition is any unit expression the registry already understands.
func (u *Units) Define(symbol, definition string, scale, offset float64) error {
	if !unitSymbol.MatchString(symbol) {
		return errorf(ErrUnitConversion, "invalid unit symbol '%s'", symbol)
	}
	if _, ok := u.defs[symbol]; ok {
		return errorf(ErrUnitConversion, "unit '%s' is already defined", symbol)
	}
	if scale == 0 {
		scale = 1
	}
	d, err := u.parse(definition)
	if err != nil {
		return err
	}
	si := d.si.Clone()
	si.Mul(unit.New(scale, nil))
	u.defs[symbol] = unitDefinition{si: si, offset: offset*d.si.Value() + d.offset}
	return nil
}

type unitFile struct {
	Unit []struct {
		Symbol     string
		Definition string
		Scale      float64
		Offset     float64
	}
}

// Load reads unit definitions from a TOML file of the form
//
//	[[unit]]
//	symbol = "Tg"
//	definition = "kg"
//	scale = 1e9
func (u *Units) Load(path string) error {
	var f unitFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return errorf(ErrFileRead, "could not read unit definitions from '%s' (%v)", path, err)
	}
	for _, d := range f.Unit {
		if err := u.Define(d.Symbol, d.Definition, d.Scale, d.Offset); err != nil {
			return err
		}
	}
	return nil
}

var (
	unitSymbol = regexp.MustCompile(`^[A-Za-z%µμ_]+$`)
	unitTerm   = regexp.MustCompile(`^([A-Za-z%µμ_]+)(?:\^|\*\*)?(-?[0-9]+)?$`)
	unitSince  = regexp.MustCompile(`^(.+?)\s+since\s+(.+)$`)
)

var referenceFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z",
}

var datetimeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// parse turns a unit expression into SI terms. Terms are separated by
// spaces, '.' or '*'; '/' divides by the term that follows it. A term is
// an optionally prefixed symbol with an optional integer power ("m2",
// "s-1", "m^3") or a plain number.
func (u *Units) parse(s string) (unitDefinition, error) {
	s = strings.TrimSpace(s)
	if m := unitSince.FindStringSubmatch(s); m != nil {
		return u.parseReference(s, m[1], m[2])
	}
	if s == "" {
		return unitDefinition{si: unit.New(1, nil)}, nil
	}
	if d, ok := u.defs[s]; ok {
		return d, nil
	}
	result := unit.New(1, nil)
	var terms int
	divide := false
	for _, tok := range tokenizeUnit(s) {
		if tok == "/" {
			if divide || terms == 0 {
				return unitDefinition{}, errorf(ErrUnitConversion, "invalid unit '%s'", s)
			}
			divide = true
			continue
		}
		t, err := u.parseTerm(tok)
		if err != nil {
			return unitDefinition{}, errorf(ErrUnitConversion, "invalid unit '%s' (%v)", s, err)
		}
		if divide {
			result.Div(t)
		} else {
			result.Mul(t)
		}
		divide = false
		terms++
	}
	if divide {
		return unitDefinition{}, errorf(ErrUnitConversion, "invalid unit '%s'", s)
	}
	return unitDefinition{si: result}, nil
}

func tokenizeUnit(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '*' && !(i+1 < len(s) && s[i+1] == '*') && !(i > 0 && s[i-1] == '*'):
			flush()
		case r == '.' && !(i > 0 && s[i-1] >= '0' && s[i-1] <= '9' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'):
			flush()
		case r == '/':
			flush()
			out = append(out, "/")
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func (u *Units) parseTerm(tok string) (*unit.Unit, error) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return unit.New(v, nil), nil
	}
	m := unitTerm.FindStringSubmatch(tok)
	if m == nil {
		return nil, errorf(ErrUnitConversion, "invalid term '%s'", tok)
	}
	base, err := u.lookup(m[1])
	if err != nil {
		return nil, err
	}
	power := 1
	if m[2] != "" {
		if power, err = strconv.Atoi(m[2]); err != nil {
			return nil, err
		}
	}
	out := unit.New(1, nil)
	for i := 0; i < power; i++ {
		out.Mul(base)
	}
	for i := 0; i > power; i-- {
		out.Div(base)
	}
	return out, nil
}

// lookup resolves a symbol, trying an exact match before a prefixed one.
func (u *Units) lookup(symbol string) (*unit.Unit, error) {
	if d, ok := u.defs[symbol]; ok {
		return d.si, nil
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(symbol, p.symbol) || len(symbol) == len(p.symbol) {
			continue
		}
		d, ok := u.defs[symbol[len(p.symbol):]]
		if !ok || d.offset != 0 {
			continue
		}
		o := d.si.Clone()
		o.Mul(unit.New(p.scale, nil))
		return o, nil
	}
	return nil, errorf(ErrUnitConversion, "unknown unit '%s'", symbol)
}

// parseReference handles "UNIT since DATE" time references. The SI
// reference is seconds since 2000-01-01 UTC.
func (u *Units) parseReference(s, base, date string) (unitDefinition, error) {
	d, err := u.parse(base)
	if err != nil {
		return unitDefinition{}, err
	}
	if !d.si.Dimensions().Matches(unit.Dimensions{unit.TimeDim: 1}) {
		return unitDefinition{}, errorf(ErrUnitConversion, "invalid unit '%s' (reference unit is not a time unit)", s)
	}
	date = strings.TrimSpace(date)
	for _, layout := range referenceFormats {
		t, err := time.Parse(layout, date)
		if err == nil {
			return unitDefinition{si: d.si, offset: t.Sub(datetimeEpoch).Seconds()}, nil
		}
	}
	return unitDefinition{}, errorf(ErrUnitConversion, "invalid unit '%s' (could not parse reference time '%s')", s, date)
}

// UnitConverter converts values between two units.
type UnitConverter struct {
	scale, offset float64
}

// Converter returns a converter from one unit to another. The units
// must have the same dimensions.
func (u *Units) Converter(from, to string) (*UnitConverter, error) {
	f, err := u.parse(from)
	if err != nil {
		return nil, err
	}
	t, err := u.parse(to)
	if err != nil {
		return nil, err
	}
	if !f.si.Dimensions().Matches(t.si.Dimensions()) {
		return nil, errorf(ErrUnitConversion, "unit '%s' cannot be converted to unit '%s'", from, to)
	}
	return &UnitConverter{
		scale:  f.si.Value() / t.si.Value(),
		offset: (f.offset - t.offset) / t.si.Value(),
	}, nil
}

// Convert converts a single value.
func (c *UnitConverter) Convert(v float64) float64 { return v*c.scale + c.offset }

// ConvertSlice converts values in place.
func (c *UnitConverter) ConvertSlice(values []float64) {
	for i, v := range values {
		values[i] = c.Convert(v)
	}
}

// Convert converts values in place.
func (u *Units) Convert(from, to string, values []float64) error {
	c, err := u.Converter(from, to)
	if err != nil {
		return err
	}
	c.ConvertSlice(values)
	return nil
}

// Compatible reports whether values in unit a can be converted to unit b.
func (u *Units) Compatible(a, b string) bool {
	_, err := u.Converter(a, b)
	return err == nil
}

// Dimensions returns the SI dimensions of a unit expression, such as
// "kg m^-3".
func (u *Units) Dimensions(s string) (string, error) {
	d, err := u.parse(s)
	if err != nil {
		return "", err
	}
	return d.si.Dimensions().String(), nil
}

// ConvertUnit converts values in place using the built-in unit table.
func ConvertUnit(from, to string, values []float64) error {
	return defaultUnits.Convert(from, to, values)
}
