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

package harp

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/harp/libharp"
)

// Variable is a named array or scalar with dimension tags and optional
// metadata. The rank of Data equals the length of Dimension; a scalar
// has no dimensions.
type Variable struct {
	// Data is a scalar (an integer, float, string or []byte) or an *Array.
	Data interface{}

	Dimension []DimensionType

	// Unit is "" when absent. String data has no unit.
	Unit string

	// ValidMin and ValidMax are nil when absent.
	ValidMin, ValidMax interface{}

	Description string

	// Enum holds the labels of integer-backed categorical data.
	Enum []string
}

// NewVariable returns a variable holding data. A bare element slice is
// stored as a one dimensional *Array.
func NewVariable(data interface{}, dimension ...DimensionType) *Variable {
	return &Variable{Data: normalizeData(data), Dimension: dimension}
}

// Copy returns a deep copy of v.
func (v *Variable) Copy() *Variable {
	o := *v
	if a, ok := v.Data.(*Array); ok && a != nil {
		o.Data = a.Clone()
	}
	o.Dimension = append([]DimensionType(nil), v.Dimension...)
	o.Enum = append([]string(nil), v.Enum...)
	return &o
}

// DataType returns the wire type of v: the narrowest type holding the
// data and both valid range bounds.
func (v *Variable) DataType() (DataType, error) {
	t, err := InferDataType(normalizeData(v.Data))
	if err != nil || t == String {
		return t, err
	}
	for _, attr := range []string{"valid_min", "valid_max"} {
		value := v.ValidMin
		if attr == "valid_max" {
			value = v.ValidMax
		}
		if value == nil {
			continue
		}
		b, err := boundValue(attr, value)
		if err != nil {
			return 0, err
		}
		bt, err := boundType(b)
		if err != nil {
			return 0, err
		}
		j, ok := joinDataType(t, bt)
		if !ok {
			return 0, errorf("type '%s' of %s attribute incompatible with type '%s' of data", bt, attr, t)
		}
		t = j
	}
	return t, nil
}

// boundValue collapses a single element bound to a scalar.
func boundValue(attr string, value interface{}) (interface{}, error) {
	if a, ok := normalizeData(value).(*Array); ok {
		if a == nil || a.Len() != 1 {
			return nil, errorf("%s attribute should be scalar", attr)
		}
		return a.At(0), nil
	}
	return value, nil
}

// boundFloat64 returns a numeric bound as a float64.
func boundFloat64(value interface{}) (float64, bool) {
	s, ok := scalarSlice(value)
	if !ok {
		return 0, false
	}
	f, ok := float64s(s)
	return f[0], ok
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

func castSlice[D, S number](dst []D, src []S) {
	for i, x := range src {
		dst[i] = D(x)
	}
}

// castInto copies numeric elements into dst.
func castInto[D number](dst []D, src interface{}) bool {
	switch s := src.(type) {
	case []int8:
		castSlice(dst, s)
	case []int16:
		castSlice(dst, s)
	case []int32:
		castSlice(dst, s)
	case []int:
		castSlice(dst, s)
	case []int64:
		castSlice(dst, s)
	case []uint8:
		castSlice(dst, s)
	case []uint16:
		castSlice(dst, s)
	case []uint32:
		castSlice(dst, s)
	case []float32:
		castSlice(dst, s)
	case []float64:
		castSlice(dst, s)
	default:
		return false
	}
	return true
}

// copyNumeric fills a native buffer from numeric elements. The type of
// dst holds every value of src.
func copyNumeric(dst libharp.Array, src interface{}) bool {
	switch dst.DataType() {
	case libharp.Int8:
		return castInto(dst.Int8(), src)
	case libharp.Int16:
		return castInto(dst.Int16(), src)
	case libharp.Int32:
		return castInto(dst.Int32(), src)
	case libharp.Float:
		return castInto(dst.Float(), src)
	case libharp.Double:
		return castInto(dst.Double(), src)
	}
	return false
}

// stringElements returns string data as a slice of strings or byte
// strings.
func stringElements(elems interface{}) []interface{} {
	switch s := elems.(type) {
	case []interface{}:
		return s
	case []string:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	case [][]byte:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	}
	return nil
}

// variableToNative builds the native form of v. The caller attaches the
// result to a native product.
func (c *Context) variableToNative(name string, v *Variable) (*libharp.Variable, error) {
	if v == nil || v.Data == nil {
		return nil, errorf("no data for variable")
	}
	data := normalizeData(v.Data)
	elems, shape, ok := elements(data)
	if !ok {
		return nil, unsupportedType(v.Data)
	}
	a, isArray := data.(*Array)
	if len(v.Dimension) == 0 {
		if isArray && a.Len() != 1 {
			return nil, errorf("size of data must be 1 for a scalar")
		}
		shape = nil
	} else {
		if !isArray || a.Rank() != len(v.Dimension) {
			return nil, errorf("dimensions incorrect")
		}
		if err := a.check(); err != nil {
			return nil, err
		}
	}
	t, err := v.DataType()
	if err != nil {
		return nil, err
	}
	dimType := make([]libharp.DimensionType, len(v.Dimension))
	for i, d := range v.Dimension {
		code, err := DimensionCode(d)
		if err != nil {
			return nil, err
		}
		dimType[i] = libharp.DimensionType(code)
	}
	cname, err := c.encode(name)
	if err != nil {
		return nil, err
	}
	nv, err := c.Library.NewVariable(cname, t.native(), dimType, shape)
	if err != nil {
		return nil, libraryError(err)
	}
	if err := c.fillNative(nv, t, v, elems); err != nil {
		nv.Delete()
		return nil, err
	}
	return nv, nil
}

// fillNative copies the data and attributes of v into nv.
func (c *Context) fillNative(nv *libharp.Variable, t DataType, v *Variable, elems interface{}) error {
	if t == String {
		for i, x := range stringElements(elems) {
			s, err := c.encodeElement(x)
			if err != nil {
				return err
			}
			if err := nv.SetString(i, s); err != nil {
				return libraryError(err)
			}
		}
	} else {
		if !copyNumeric(nv.Data, elems) {
			return unsupportedType(elems)
		}
		for _, bound := range []struct {
			attr  string
			value interface{}
			dst   *libharp.Scalar
		}{{"valid_min", v.ValidMin, &nv.ValidMin}, {"valid_max", v.ValidMax, &nv.ValidMax}} {
			if bound.value == nil {
				continue
			}
			b, err := boundValue(bound.attr, bound.value)
			if err != nil {
				return err
			}
			f, ok := boundFloat64(b)
			if !ok {
				return errorf("%s attribute should be numeric", bound.attr)
			}
			*bound.dst = libharp.ScalarOf(t.native(), f)
		}
	}
	var err error
	if v.Unit != "" {
		if nv.Unit, err = c.encode(v.Unit); err != nil {
			return err
		}
	}
	if v.Description != "" {
		if nv.Description, err = c.encode(v.Description); err != nil {
			return err
		}
	}
	if len(v.Enum) > 0 {
		labels := make([]string, len(v.Enum))
		for i, l := range v.Enum {
			if labels[i], err = c.encode(l); err != nil {
				return err
			}
		}
		if err := nv.SetEnumeration(labels); err != nil {
			return libraryError(err)
		}
	}
	return nil
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// nativeScalar returns a native bound as a Go value of type t.
func nativeScalar(t DataType, s libharp.Scalar) interface{} {
	switch t {
	case Int8:
		return s.Int8
	case Int16:
		return s.Int16
	case Int32:
		return s.Int32
	case Float32:
		return s.Float
	}
	return s.Double
}

// variableFromNative copies nv into a new Variable. Rank 0 data becomes
// a scalar.
func (c *Context) variableFromNative(nv *libharp.Variable) (*Variable, error) {
	t, err := dataTypeFromNative(nv.DataType)
	if err != nil {
		return nil, err
	}
	var elems interface{}
	switch t {
	case Int8:
		elems = cloneSlice(nv.Data.Int8())
	case Int16:
		elems = cloneSlice(nv.Data.Int16())
	case Int32:
		elems = cloneSlice(nv.Data.Int32())
	case Float32:
		elems = cloneSlice(nv.Data.Float())
	case Float64:
		elems = cloneSlice(nv.Data.Double())
	case String:
		src := nv.Data.Strings()
		s := make([]string, len(src))
		for i, x := range src {
			if s[i], err = c.decode(x); err != nil {
				return nil, err
			}
		}
		elems = s
	}
	v := new(Variable)
	if len(nv.Dimension) == 0 {
		v.Data = (&Array{Elements: elems}).At(0)
	} else {
		v.Data = &Array{Shape: cloneSlice(nv.Dimension), Elements: elems}
		v.Dimension = make([]DimensionType, len(nv.DimensionType))
		for i, code := range nv.DimensionType {
			if v.Dimension[i], err = DimensionName(int(code)); err != nil {
				return nil, err
			}
		}
	}
	if nv.Unit != "" {
		if v.Unit, err = c.decode(nv.Unit); err != nil {
			return nil, err
		}
	}
	if t != String {
		if !nv.HasDefaultValidMin() {
			v.ValidMin = nativeScalar(t, nv.ValidMin)
		}
		if !nv.HasDefaultValidMax() {
			v.ValidMax = nativeScalar(t, nv.ValidMax)
		}
	}
	if nv.Description != "" {
		if v.Description, err = c.decode(nv.Description); err != nil {
			return nil, err
		}
	}
	for _, l := range nv.EnumName {
		label, err := c.decode(l)
		if err != nil {
			return nil, err
		}
		v.Enum = append(v.Enum, label)
	}
	return v, nil
}

// formatDataType names the wire type of data, or "<invalid>".
func formatDataType(data interface{}) string {
	t, err := InferDataType(normalizeData(data))
	if err != nil {
		return "<invalid>"
	}
	return t.String()
}

// formatDimensions describes the axes of data as {time=3, 2}.
func formatDimensions(dimension []DimensionType, data interface{}) string {
	a, ok := normalizeData(data).(*Array)
	if !ok || a.Rank() != len(dimension) {
		return "{<invalid>}"
	}
	parts := make([]string, len(dimension))
	for i, d := range dimension {
		if d == Independent {
			parts[i] = fmt.Sprint(a.Shape[i])
		} else {
			parts[i] = fmt.Sprintf("%s=%d", d, a.Shape[i])
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *Variable) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "type =", formatDataType(v.Data))
	if len(v.Dimension) > 0 {
		fmt.Fprintln(&b, "dimension =", formatDimensions(v.Dimension, v.Data))
	}
	if v.Unit != "" {
		fmt.Fprintf(&b, "unit = %q\n", v.Unit)
	}
	if v.ValidMin != nil {
		fmt.Fprintf(&b, "valid_min = %v\n", v.ValidMin)
	}
	if v.ValidMax != nil {
		fmt.Fprintf(&b, "valid_max = %v\n", v.ValidMax)
	}
	if v.Description != "" {
		fmt.Fprintf(&b, "description = %q\n", v.Description)
	}
	if len(v.Enum) > 0 {
		fmt.Fprintf(&b, "enum = %q\n", v.Enum)
	}
	switch data := normalizeData(v.Data).(type) {
	case nil:
	case *Array:
		switch {
		case len(v.Dimension) == 0 && data.Len() == 1:
			fmt.Fprintf(&b, "data = %v\n", data.At(0))
		case data.Len() == 0:
			fmt.Fprintln(&b, "data = <empty>")
		default:
			fmt.Fprintf(&b, "data =\n%v\n", data.Elements)
		}
	case string, []byte:
		fmt.Fprintf(&b, "data = %q\n", data)
	default:
		fmt.Fprintf(&b, "data = %v\n", data)
	}
	return b.String()
}
