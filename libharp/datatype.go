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
)

// DataType is the storage type of a native variable.
type DataType int

// The native storage types.
const (
	Int8 DataType = iota
	Int16
	Int32
	Float
	Double
	String
)

var dataTypeNames = [...]string{"int8", "int16", "int32", "float", "double", "string"}

func (t DataType) String() string {
	if t < Int8 || t > String {
		return "unknown"
	}
	return dataTypeNames[t]
}

// ParseDataType returns the data type with the given name.
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return 0, errorf(ErrInvalidType, "invalid data type '%s'", name)
}

// Size returns the number of bytes occupied by one element of t, or 0 for
// strings, which are held in a slot table.
func (t DataType) Size() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float:
		return 4
	case Double:
		return 8
	}
	return 0
}

// IsNumeric reports whether t holds numbers.
func (t DataType) IsNumeric() bool { return t >= Int8 && t <= Double }

// IsInteger reports whether t holds integers.
func (t DataType) IsInteger() bool { return t >= Int8 && t <= Int32 }

// Scalar holds one value of any numeric data type. Which field is
// meaningful depends on the data type it is used with.
type Scalar struct {
	Int8   int8
	Int16  int16
	Int32  int32
	Float  float32
	Double float64
}

// ScalarOf converts v into a scalar of type t.
func ScalarOf(t DataType, v float64) Scalar {
	var s Scalar
	switch t {
	case Int8:
		s.Int8 = int8(v)
	case Int16:
		s.Int16 = int16(v)
	case Int32:
		s.Int32 = int32(v)
	case Float:
		s.Float = float32(v)
	case Double:
		s.Double = v
	}
	return s
}

// Float64 returns the value of s interpreted as type t.
func (s Scalar) Float64(t DataType) float64 {
	switch t {
	case Int8:
		return float64(s.Int8)
	case Int16:
		return float64(s.Int16)
	case Int32:
		return float64(s.Int32)
	case Float:
		return float64(s.Float)
	case Double:
		return s.Double
	}
	return math.NaN()
}

// Equal compares two scalars of type t. NaN equals NaN.
func (s Scalar) Equal(t DataType, o Scalar) bool {
	a, b := s.Float64(t), o.Float64(t)
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// ValidMinFor returns the default lower bound of type t.
func ValidMinFor(t DataType) Scalar {
	switch t {
	case Int8:
		return Scalar{Int8: math.MinInt8}
	case Int16:
		return Scalar{Int16: math.MinInt16}
	case Int32:
		return Scalar{Int32: math.MinInt32}
	case Float:
		return Scalar{Float: float32(math.Inf(-1))}
	case Double:
		return Scalar{Double: math.Inf(-1)}
	}
	return Scalar{}
}

// ValidMaxFor returns the default upper bound of type t.
func ValidMaxFor(t DataType) Scalar {
	switch t {
	case Int8:
		return Scalar{Int8: math.MaxInt8}
	case Int16:
		return Scalar{Int16: math.MaxInt16}
	case Int32:
		return Scalar{Int32: math.MaxInt32}
	case Float:
		return Scalar{Float: float32(math.Inf(1))}
	case Double:
		return Scalar{Double: math.Inf(1)}
	}
	return Scalar{}
}

// DimensionType tags one axis of a variable.
type DimensionType int

// The dimension types. Independent axes have no shared length.
const (
	Independent DimensionType = iota - 1
	Time
	Latitude
	Longitude
	Vertical
	Spectral
)

// NumDimensionTypes is the number of dimension types with a product-wide
// length (all but Independent).
const NumDimensionTypes = 5

var dimensionNames = [...]string{"time", "latitude", "longitude", "vertical", "spectral"}

func (d DimensionType) String() string {
	if d == Independent {
		return "independent"
	}
	if d < Time || d > Spectral {
		return "unknown"
	}
	return dimensionNames[d]
}

// ParseDimensionType returns the dimension type with the given name.
func ParseDimensionType(name string) (DimensionType, error) {
	if name == "independent" {
		return Independent, nil
	}
	for i, n := range dimensionNames {
		if n == name {
			return DimensionType(i), nil
		}
	}
	return Independent, errorf(ErrInvalidArgument, "invalid dimension type '%s'", name)
}
