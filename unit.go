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

// ConvertUnit converts values from one unit to another; see
// (*Context).ConvertUnit.
func ConvertUnit(from, to string, values interface{}) (interface{}, error) {
	return Default.ConvertUnit(from, to, values)
}

// ConvertUnit converts numeric values from one unit to another. A scalar
// yields a float64, a slice a []float64 and an *Array an *Array of the
// same shape holding float64 elements. The input is not modified.
func (c *Context) ConvertUnit(from, to string, values interface{}) (interface{}, error) {
	var (
		f     []float64
		ok    bool
		shape []int
	)
	switch x := values.(type) {
	case *Array:
		if x == nil {
			return nil, unsupportedType(values)
		}
		f, ok = float64s(x.Elements)
		shape = append([]int{}, x.Shape...)
	default:
		if s, isScalar := scalarSlice(values); isScalar {
			f, _ = float64s(s)
			if err := c.convert(from, to, f); err != nil {
				return nil, err
			}
			return f[0], nil
		}
		f, ok = float64s(values)
	}
	if !ok {
		return nil, unsupportedType(values)
	}
	if err := c.convert(from, to, f); err != nil {
		return nil, err
	}
	if shape != nil {
		return &Array{Shape: shape, Elements: f}, nil
	}
	return f, nil
}

func (c *Context) convert(from, to string, f []float64) error {
	cfrom, err := c.encode(from)
	if err != nil {
		return err
	}
	cto, err := c.encode(to)
	if err != nil {
		return err
	}
	return libraryError(c.Library.ConvertUnit(cfrom, cto, f))
}
