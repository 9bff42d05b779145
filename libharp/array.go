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
	"fmt"
	"math"
	"unsafe"
)

// Array is the flat storage of a native variable. Numeric data live in a
// single 8-byte aligned allocation that is viewed as a typed slice on
// demand; strings live in a slot table. The typed views alias the
// allocation, so callers that keep data beyond the lifetime of the
// variable must copy it.
type Array struct {
	dataType DataType
	n        int
	buf      []byte
	str      []string
}

// NewArray allocates zeroed storage for n elements of type t.
func NewArray(t DataType, n int) Array {
	a := Array{dataType: t, n: n}
	if t == String {
		a.str = make([]string, n)
		return a
	}
	if n == 0 {
		return a
	}
	size := n * t.Size()
	words := make([]uint64, (size+7)/8)
	a.buf = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	return a
}

// ArrayOf copies a typed slice ([]int8, []int16, []int32, []float32,
// []float64 or []string) into new storage.
func ArrayOf(values interface{}) (Array, error) {
	var a Array
	switch v := values.(type) {
	case []int8:
		a = NewArray(Int8, len(v))
		copy(a.Int8(), v)
	case []int16:
		a = NewArray(Int16, len(v))
		copy(a.Int16(), v)
	case []int32:
		a = NewArray(Int32, len(v))
		copy(a.Int32(), v)
	case []float32:
		a = NewArray(Float, len(v))
		copy(a.Float(), v)
	case []float64:
		a = NewArray(Double, len(v))
		copy(a.Double(), v)
	case []string:
		a = NewArray(String, len(v))
		copy(a.Strings(), v)
	default:
		return a, errorf(ErrInvalidType, "unsupported array type %T", values)
	}
	return a, nil
}

// DataType returns the element type.
func (a Array) DataType() DataType { return a.dataType }

// Len returns the number of elements.
func (a Array) Len() int { return a.n }

// Int8 views the storage as int8 values.
func (a Array) Int8() []int8 {
	if a.dataType != Int8 || a.n == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(&a.buf[0])), a.n)
}

// Int16 views the storage as int16 values.
func (a Array) Int16() []int16 {
	if a.dataType != Int16 || a.n == 0 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&a.buf[0])), a.n)
}

// Int32 views the storage as int32 values.
func (a Array) Int32() []int32 {
	if a.dataType != Int32 || a.n == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&a.buf[0])), a.n)
}

// Float views the storage as float32 values.
func (a Array) Float() []float32 {
	if a.dataType != Float || a.n == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&a.buf[0])), a.n)
}

// Double views the storage as float64 values.
func (a Array) Double() []float64 {
	if a.dataType != Double || a.n == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&a.buf[0])), a.n)
}

// Strings returns the string slot table.
func (a Array) Strings() []string {
	if a.dataType != String {
		return nil
	}
	return a.str
}

// Bytes returns the raw numeric storage in host byte order.
func (a Array) Bytes() []byte { return a.buf }

// Slice returns the typed view matching the element type.
func (a Array) Slice() interface{} {
	switch a.dataType {
	case Int8:
		return nonNil(a.Int8())
	case Int16:
		return nonNil(a.Int16())
	case Int32:
		return nonNil(a.Int32())
	case Float:
		return nonNil(a.Float())
	case Double:
		return nonNil(a.Double())
	}
	return nonNil(a.str)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Clone returns a deep copy.
func (a Array) Clone() Array {
	o := NewArray(a.dataType, a.n)
	copy(o.buf, a.buf)
	copy(o.str, a.str)
	return o
}

// Float64At returns element i as a float64. It panics for string data.
func (a Array) Float64At(i int) float64 {
	switch a.dataType {
	case Int8:
		return float64(a.Int8()[i])
	case Int16:
		return float64(a.Int16()[i])
	case Int32:
		return float64(a.Int32()[i])
	case Float:
		return float64(a.Float()[i])
	case Double:
		return a.Double()[i]
	}
	panic(fmt.Sprintf("libharp: Float64At on %s array", a.dataType))
}

// SetFloat64At stores v at element i, truncating for integer types.
func (a Array) SetFloat64At(i int, v float64) {
	switch a.dataType {
	case Int8:
		a.Int8()[i] = int8(v)
	case Int16:
		a.Int16()[i] = int16(v)
	case Int32:
		a.Int32()[i] = int32(v)
	case Float:
		a.Float()[i] = float32(v)
	case Double:
		a.Double()[i] = v
	default:
		panic(fmt.Sprintf("libharp: SetFloat64At on %s array", a.dataType))
	}
}

// Float64s copies the numeric data into a new float64 slice.
func (a Array) Float64s() []float64 {
	out := make([]float64, a.n)
	for i := range out {
		out[i] = a.Float64At(i)
	}
	return out
}

// Convert returns a copy of a holding type t. Numbers are converted with
// Go conversion rules; converting to or from strings is an error.
func (a Array) Convert(t DataType) (Array, error) {
	if t == a.dataType {
		return a.Clone(), nil
	}
	if t == String || a.dataType == String {
		return Array{}, errorf(ErrInvalidType, "cannot convert %s data to %s", a.dataType, t)
	}
	o := NewArray(t, a.n)
	for i := 0; i < a.n; i++ {
		v := a.Float64At(i)
		if t.IsInteger() && math.IsNaN(v) {
			v = 0
		}
		o.SetFloat64At(i, v)
	}
	return o, nil
}
