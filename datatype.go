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
	"math"

	"github.com/spatialmodel/harp/libharp"
)

// DataType is a wire type of the native layer.
type DataType int

// The wire types, narrowest first.
const (
	Int8 DataType = iota
	Int16
	Int32
	Float32
	Float64
	String
)

var dataTypeNames = [...]string{"byte", "int", "long", "float", "double", "string"}

func (t DataType) String() string {
	if t < Int8 || t > String {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return dataTypeNames[t]
}

// native returns the native type code.
func (t DataType) native() libharp.DataType {
	switch t {
	case Int8:
		return libharp.Int8
	case Int16:
		return libharp.Int16
	case Int32:
		return libharp.Int32
	case Float32:
		return libharp.Float
	case Float64:
		return libharp.Double
	}
	return libharp.String
}

func dataTypeFromNative(t libharp.DataType) (DataType, error) {
	switch t {
	case libharp.Int8:
		return Int8, nil
	case libharp.Int16:
		return Int16, nil
	case libharp.Int32:
		return Int32, nil
	case libharp.Float:
		return Float32, nil
	case libharp.Double:
		return Float64, nil
	case libharp.String:
		return String, nil
	}
	return 0, &UnsupportedTypeError{Message: fmt.Sprintf("unsupported native data type code '%d'", int(t))}
}

// CanCast reports whether every value of type src can be stored as dst
// without loss.
func CanCast(src, dst DataType) bool {
	switch dst {
	case Int8:
		return src == Int8
	case Int16:
		return src == Int8 || src == Int16
	case Int32:
		return src == Int8 || src == Int16 || src == Int32
	case Float32:
		return src == Int8 || src == Int16 || src == Float32 || src == Float64
	case Float64:
		return src == Int8 || src == Int16 || src == Int32 || src == Float32 || src == Float64
	case String:
		return src == String
	}
	return false
}

// widens reports whether src converts to dst without narrowing. Unlike
// CanCast it never accepts double as float.
func widens(src, dst DataType) bool {
	return CanCast(src, dst) && !(src == Float64 && dst == Float32)
}

// joinDataType returns the narrowest type every one of types widens to.
// Bounds are classified by value before joining, so a double bound that
// float represents exactly joins as float.
func joinDataType(types ...DataType) (DataType, bool) {
	for t := Int8; t <= String; t++ {
		ok := true
		for _, s := range types {
			if !widens(s, t) {
				ok = false
				break
			}
		}
		if ok {
			return t, true
		}
	}
	return 0, false
}

// integerType returns the narrowest integer type holding every value in
// [min, max].
func integerType(min, max int64) (DataType, bool) {
	switch {
	case min >= math.MinInt8 && max <= math.MaxInt8:
		return Int8, true
	case min >= math.MinInt16 && max <= math.MaxInt16:
		return Int16, true
	case min >= math.MinInt32 && max <= math.MaxInt32:
		return Int32, true
	}
	return 0, false
}

// intRange returns the extremes of an integer slice. An empty slice has
// the range [0, 0].
func intRange[T int8 | int16 | int32 | int | int64 | uint8 | uint16 | uint32](s []T) (min, max int64) {
	for i, x := range s {
		v := int64(x)
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	return min, max
}

func unsupportedType(value interface{}) error {
	return &UnsupportedTypeError{Message: fmt.Sprintf("unsupported type '%T'", value)}
}

func integerOutOfRange(value interface{}) error {
	return &UnsupportedTypeError{Message: fmt.Sprintf("integer data of type '%T' exceeds the range of a long", value)}
}

// InferDataType returns the wire type for a Variable data value: a
// scalar or an *Array. Integers map to the narrowest of byte, int and
// long that holds every value. A []byte value is a byte string scalar;
// byte arrays are *Array values with []uint8 elements.
func InferDataType(value interface{}) (DataType, error) {
	switch x := value.(type) {
	case *Array:
		if x == nil {
			return 0, unsupportedType(value)
		}
		return inferElements(x.Elements)
	case string, []byte:
		return String, nil
	}
	if s, ok := scalarSlice(value); ok {
		return inferElements(s)
	}
	return 0, unsupportedType(value)
}

// inferElements returns the wire type of an element slice.
func inferElements(elements interface{}) (DataType, error) {
	var min, max int64
	switch s := elements.(type) {
	case []float32:
		return Float32, nil
	case []float64:
		return Float64, nil
	case []string, [][]byte:
		return String, nil
	case []interface{}:
		return inferObjects(s)
	case []int8:
		min, max = intRange(s)
	case []int16:
		min, max = intRange(s)
	case []int32:
		min, max = intRange(s)
	case []int:
		min, max = intRange(s)
	case []int64:
		min, max = intRange(s)
	case []uint8:
		min, max = intRange(s)
	case []uint16:
		min, max = intRange(s)
	case []uint32:
		min, max = intRange(s)
	default:
		return 0, &UnsupportedTypeError{Message: fmt.Sprintf("unsupported element type '%T'", elements)}
	}
	t, ok := integerType(min, max)
	if !ok {
		return 0, integerOutOfRange(elements)
	}
	return t, nil
}

// inferObjects accepts generic arrays made up entirely of text strings
// or entirely of byte strings.
func inferObjects(s []interface{}) (DataType, error) {
	var text, bytes int
	for _, x := range s {
		switch x.(type) {
		case string:
			text++
		case []byte:
			bytes++
		}
	}
	if text == len(s) || bytes == len(s) {
		return String, nil
	}
	return 0, &UnsupportedTypeError{Message: "elements of a generic array must be all text strings or all byte strings"}
}

// boundType classifies a valid_min or valid_max scalar by its value: a
// float64 that float32 represents exactly counts as float.
func boundType(value interface{}) (DataType, error) {
	if x, ok := value.(float64); ok {
		if math.IsNaN(x) || math.IsInf(x, 0) || float64(float32(x)) == x {
			return Float32, nil
		}
		return Float64, nil
	}
	return InferDataType(value)
}
