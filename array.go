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
	"reflect"

	"github.com/spatialmodel/harp/internal/ndarray"
)

// Array is a dense n-dimensional array. Elements holds the values in
// row-major order with the slowest-varying axis first, which is also the
// order of the native buffers, so no transpose happens at the native
// boundary. Tools that read the buffers column-major see the axes in
// reverse order.
//
// Elements is one of []int8, []int16, []int32, []int, []int64, []uint8,
// []uint16, []uint32, []float32, []float64, []string, [][]byte or a
// []interface{} holding only text strings or only byte strings.
type Array struct {
	Shape    []int
	Elements interface{}
}

// NewArray returns an array holding elements. Without a shape the array
// is one dimensional.
func NewArray(elements interface{}, shape ...int) (*Array, error) {
	if reflect.ValueOf(elements).Kind() != reflect.Slice {
		return nil, errorf("array elements must be a slice, not %T", elements)
	}
	if len(shape) == 0 {
		shape = []int{ndarray.Size(elements)}
	}
	a := &Array{Shape: append([]int(nil), shape...), Elements: elements}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

// Len returns the number of elements.
func (a *Array) Len() int { return ndarray.Size(a.Elements) }

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.Shape) }

// Clone returns a deep copy of a.
func (a *Array) Clone() *Array {
	return &Array{Shape: append([]int(nil), a.Shape...), Elements: ndarray.Clone(a.Elements)}
}

func (a *Array) check() error {
	for _, n := range a.Shape {
		if n < 0 {
			return errorf("negative array shape %v", a.Shape)
		}
	}
	if n := ndarray.Len(a.Shape); n != a.Len() {
		return errorf("array shape %v needs %d elements, not %d", a.Shape, n, a.Len())
	}
	return nil
}

// At returns element i in row-major order.
func (a *Array) At(i int) interface{} {
	return reflect.ValueOf(a.Elements).Index(i).Interface()
}

func (a *Array) String() string {
	return fmt.Sprintf("%v%v", a.Shape, a.Elements)
}

// scalarSlice wraps a numeric scalar in a one element slice.
func scalarSlice(value interface{}) (interface{}, bool) {
	switch x := value.(type) {
	case int8:
		return []int8{x}, true
	case int16:
		return []int16{x}, true
	case int32:
		return []int32{x}, true
	case int:
		return []int{x}, true
	case int64:
		return []int64{x}, true
	case uint8:
		return []uint8{x}, true
	case uint16:
		return []uint16{x}, true
	case uint32:
		return []uint32{x}, true
	case float32:
		return []float32{x}, true
	case float64:
		return []float64{x}, true
	}
	return nil, false
}

// normalizeData turns a bare element slice into a one dimensional
// *Array. Scalars, byte strings and arrays are returned unchanged.
func normalizeData(data interface{}) interface{} {
	if _, ok := data.([]byte); ok || data == nil {
		return data
	}
	if reflect.ValueOf(data).Kind() == reflect.Slice {
		return &Array{Shape: []int{ndarray.Size(data)}, Elements: data}
	}
	return data
}

// elements returns the data of a variable as an element slice and a
// shape; scalars have an empty shape.
func elements(data interface{}) (interface{}, []int, bool) {
	switch x := data.(type) {
	case *Array:
		if x == nil {
			return nil, nil, false
		}
		return x.Elements, x.Shape, true
	case string:
		return []string{x}, nil, true
	case []byte:
		return [][]byte{x}, nil, true
	}
	s, ok := scalarSlice(data)
	return s, nil, ok
}

// float64s converts numeric elements to float64.
func float64s(elems interface{}) ([]float64, bool) {
	v := reflect.ValueOf(elems)
	if v.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(e.Uint())
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		default:
			return nil, false
		}
	}
	return out, true
}
