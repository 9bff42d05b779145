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
	"reflect"

	"github.com/spatialmodel/harp/internal/ndarray"
)

// Concatenate merges products along the time axis. Every product must
// hold every variable except index, which is dropped. Variables without
// a time axis are repeated along a new leading time axis; a product
// without any time axis takes the longest time length of the others.
// Shorter non-time axes are padded with NaN (floats), zero (integers)
// or "" (strings). The result has no source_product or history.
func Concatenate(products []*Product) (*Product, error) {
	if len(products) == 0 {
		return nil, errorf("product list is empty")
	}
	var names []string
	seen := make(map[string]bool)
	for i, p := range products {
		if p == nil {
			return nil, errorf("product %d is nil", i)
		}
		for _, name := range p.names {
			if name != "index" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for _, name := range names {
		for _, p := range products {
			if !p.Has(name) {
				return nil, &MissingVariableError{Name: name}
			}
		}
	}

	lengths := make([]int, len(products))
	hasTime := make([]bool, len(products))
	longest := 0
	for i, p := range products {
		n, ok, err := timeLength(p)
		if err != nil {
			return nil, err
		}
		lengths[i], hasTime[i] = n, ok
		if ok && n > longest {
			longest = n
		}
	}
	if longest == 0 {
		longest = 1
	}
	for i := range products {
		if !hasTime[i] {
			lengths[i] = longest
		}
	}

	out := NewProduct()
	for _, name := range names {
		var target *Variable
		for i, p := range products {
			v, err := timeDependent(p.variables[name], lengths[i])
			if err != nil {
				return nil, err
			}
			if target == nil {
				target = v
				continue
			}
			if err := appendVariable(name, target, v); err != nil {
				return nil, err
			}
		}
		out.names = append(out.names, name)
		out.variables[name] = target
	}
	return out, nil
}

// timeLength returns the length of the time axis of p and whether p has
// one. Time must lead and agree across variables.
func timeLength(p *Product) (int, bool, error) {
	n, found := 0, false
	for _, name := range p.names {
		v := p.variables[name]
		if len(v.Dimension) == 0 {
			continue
		}
		a, ok := normalizeData(v.Data).(*Array)
		if !ok || a == nil || a.Rank() != len(v.Dimension) {
			return 0, false, errorf("dimensions incorrect")
		}
		for i, d := range v.Dimension {
			if d != Time {
				continue
			}
			if i != 0 {
				return 0, false, errorf("dimensions incorrect")
			}
			if !found {
				n, found = a.Shape[0], true
			} else if a.Shape[0] != n {
				return 0, false, errorf("inconsistent dimension lengths for 'time'")
			}
		}
	}
	return n, found, nil
}

// timeDependent returns a copy of v with a leading time axis of length
// n, repeating the data if v has none.
func timeDependent(v *Variable, n int) (*Variable, error) {
	o := v.Copy()
	o.Data = normalizeData(o.Data)
	if len(o.Dimension) > 0 && o.Dimension[0] == Time {
		return o, nil
	}
	elems, shape, ok := elements(o.Data)
	if !ok {
		return nil, unsupportedType(v.Data)
	}
	if len(o.Dimension) == 0 {
		shape = nil
	}
	elems, shape = ndarray.Broadcast(elems, shape, n)
	o.Data = &Array{Shape: shape, Elements: elems}
	o.Dimension = append([]DimensionType{Time}, o.Dimension...)
	return o, nil
}

// appendVariable appends the samples of src to target along time. The
// unit of src is only checked when target has one.
func appendVariable(name string, target, src *Variable) error {
	if target.Unit != "" && target.Unit != src.Unit {
		return errorf("inconsistent units in appending variable '%s'", name)
	}
	ta, sa := target.Data.(*Array), src.Data.(*Array)
	if ta.Rank() != sa.Rank() {
		return errorf("inconsistent number of dimensions for appending variable '%s'", name)
	}
	shape := make([]int, ta.Rank())
	for i := range shape {
		shape[i] = ta.Shape[i]
		if sa.Shape[i] > shape[i] {
			shape[i] = sa.Shape[i]
		}
	}
	tElems, tShape := ndarray.PadTo(ta.Elements, ta.Shape, shape)
	sElems, sShape := ndarray.PadTo(sa.Elements, sa.Shape, shape)
	if reflect.TypeOf(tElems) != reflect.TypeOf(sElems) {
		var ok bool
		if tElems, sElems, ok = promote(tElems, sElems); !ok {
			return errorf("inconsistent data types for appending variable '%s'", name)
		}
	}
	joined, err := ndarray.ConcatAny(tElems, sElems)
	if err != nil {
		return &Error{Message: "appending variable '" + name + "'", Err: err}
	}
	tShape[0] += sShape[0]
	target.Data = &Array{Shape: tShape, Elements: joined}
	return nil
}

// integerWidth is the narrowest signed element width, in bytes, that
// holds every value of an integer element kind.
var integerWidth = map[reflect.Kind]int{
	reflect.Int8:   1,
	reflect.Uint8:  2,
	reflect.Int16:  2,
	reflect.Uint16: 4,
	reflect.Int32:  4,
	reflect.Uint32: 8,
	reflect.Int:    8,
	reflect.Int64:  8,
}

// promote converts two element slices of different types to one type.
// Integer slices become the wider signed integer type; any other numeric
// mix becomes []float64.
func promote(a, b interface{}) (interface{}, interface{}, bool) {
	wa, okA := integerWidth[reflect.TypeOf(a).Elem().Kind()]
	wb, okB := integerWidth[reflect.TypeOf(b).Elem().Kind()]
	if okA && okB {
		if wb > wa {
			wa = wb
		}
		return integerElements(a, wa), integerElements(b, wa), true
	}
	af, okA := float64s(a)
	bf, okB := float64s(b)
	return af, bf, okA && okB
}

// integerElements copies integer elements into a signed slice of the
// given element width.
func integerElements(elems interface{}, width int) interface{} {
	n := reflect.ValueOf(elems).Len()
	switch width {
	case 1:
		d := make([]int8, n)
		castInto(d, elems)
		return d
	case 2:
		d := make([]int16, n)
		castInto(d, elems)
		return d
	case 4:
		d := make([]int32, n)
		castInto(d, elems)
		return d
	}
	d := make([]int64, n)
	castInto(d, elems)
	return d
}
