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

// Package ndarray holds shape arithmetic shared by the host and native
// product models. Arrays are flat slices in row-major order with the
// slowest-varying axis first.
package ndarray

import (
	"fmt"
	"math"
	"reflect"
)

// Len returns the number of elements in an array of the given shape.
// A scalar (empty shape) has one element.
func Len(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// Equal reports whether two shapes are identical.
func Equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Repeat returns n copies of elems laid end to end, which is elems
// with a new leading axis of length n.
func Repeat[T any](elems []T, n int) []T {
	out := make([]T, 0, len(elems)*n)
	for i := 0; i < n; i++ {
		out = append(out, elems...)
	}
	return out
}

// Pad extends the given axis of a row-major array to length, filling
// the new positions with fill. Shorter or equal lengths return elems.
func Pad[T any](elems []T, shape []int, axis, length int, fill T) []T {
	old := shape[axis]
	if length <= old {
		return elems
	}
	outer := Len(shape[:axis])
	inner := Len(shape[axis+1:])
	out := make([]T, outer*length*inner)
	for o := 0; o < outer; o++ {
		dst := out[o*length*inner : (o+1)*length*inner]
		copy(dst, elems[o*old*inner:(o+1)*old*inner])
		for i := old * inner; i < len(dst); i++ {
			dst[i] = fill
		}
	}
	return out
}

// Take gathers the given indices along the leading axis.
func Take[T any](elems []T, shape []int, index []int) []T {
	inner := Len(shape[1:])
	out := make([]T, len(index)*inner)
	for i, k := range index {
		copy(out[i*inner:(i+1)*inner], elems[k*inner:(k+1)*inner])
	}
	return out
}

// Size returns the length of a slice held in an interface.
func Size(elems interface{}) int {
	v := reflect.ValueOf(elems)
	if v.Kind() != reflect.Slice {
		return 0
	}
	return v.Len()
}

// Clone copies a slice held in an interface.
func Clone(elems interface{}) interface{} {
	v := reflect.ValueOf(elems)
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	return out.Interface()
}

// Fill returns the padding value used for an element type: NaN for
// floating point data and the zero value otherwise.
func Fill(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Float32:
		return reflect.ValueOf(float32(math.NaN()))
	case reflect.Float64:
		return reflect.ValueOf(math.NaN())
	}
	return reflect.Zero(t)
}

// RepeatAny is Repeat for a slice held in an interface.
func RepeatAny(elems interface{}, n int) interface{} {
	v := reflect.ValueOf(elems)
	l := v.Len()
	out := reflect.MakeSlice(v.Type(), l*n, l*n)
	for i := 0; i < n; i++ {
		reflect.Copy(out.Slice(i*l, (i+1)*l), v)
	}
	return out.Interface()
}

// PadAny is Pad for a slice held in an interface, using Fill as the
// padding value.
func PadAny(elems interface{}, shape []int, axis, length int) interface{} {
	old := shape[axis]
	if length <= old {
		return elems
	}
	v := reflect.ValueOf(elems)
	fill := Fill(v.Type().Elem())
	outer := Len(shape[:axis])
	inner := Len(shape[axis+1:])
	out := reflect.MakeSlice(v.Type(), outer*length*inner, outer*length*inner)
	for o := 0; o < outer; o++ {
		dst := out.Slice(o*length*inner, (o+1)*length*inner)
		reflect.Copy(dst, v.Slice(o*old*inner, (o+1)*old*inner))
		for i := old * inner; i < dst.Len(); i++ {
			dst.Index(i).Set(fill)
		}
	}
	return out.Interface()
}

// TakeAny is Take for a slice held in an interface.
func TakeAny(elems interface{}, shape []int, index []int) interface{} {
	v := reflect.ValueOf(elems)
	inner := Len(shape[1:])
	out := reflect.MakeSlice(v.Type(), len(index)*inner, len(index)*inner)
	for i, k := range index {
		reflect.Copy(out.Slice(i*inner, (i+1)*inner), v.Slice(k*inner, (k+1)*inner))
	}
	return out.Interface()
}

// ConcatAny appends b to a. Both must hold slices of the same type.
func ConcatAny(a, b interface{}) (interface{}, error) {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return nil, fmt.Errorf("ndarray: cannot concatenate %s and %s", va.Type(), vb.Type())
	}
	out := reflect.MakeSlice(va.Type(), 0, va.Len()+vb.Len())
	out = reflect.AppendSlice(out, va)
	out = reflect.AppendSlice(out, vb)
	return out.Interface(), nil
}

// Broadcast inserts a leading axis of length n into an array of the given
// shape, returning the new elements and shape.
func Broadcast(elems interface{}, shape []int, n int) (interface{}, []int) {
	return RepeatAny(elems, n), append([]int{n}, shape...)
}

// PadTo pads every non-leading axis of an array up to the lengths in
// target, which must have the same rank as shape. It returns the new
// elements and shape.
func PadTo(elems interface{}, shape, target []int) (interface{}, []int) {
	out := append([]int(nil), shape...)
	for axis := 1; axis < len(shape); axis++ {
		if target[axis] > out[axis] {
			elems = PadAny(elems, out, axis, target[axis])
			out[axis] = target[axis]
		}
	}
	return elems, out
}
