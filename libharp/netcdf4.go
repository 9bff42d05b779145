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
	"reflect"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/spatialmodel/harp/internal/ndarray"
)

// readNetCDF4 reads a netCDF-4 (HDF5) HARP file.
func readNetCDF4(file api.ReadSeekerCloser) (*Product, error) {
	g, err := netcdf.New(file)
	if err != nil {
		return nil, errorf(ErrHDF5, "could not open netCDF-4 file (%v)", err)
	}
	defer g.Close()

	attrs := g.Attributes()
	conventions, _ := attributeText(attrs, "Conventions")
	if err := checkConventions(conventions); err != nil {
		return nil, err
	}
	p := NewProduct()
	p.SourceProduct, _ = attributeText(attrs, "source_product")
	p.History, _ = attributeText(attrs, "history")
	for _, name := range g.ListVariables() {
		v, err := readNetCDF4Variable(g, name)
		if err != nil {
			p.Delete()
			return nil, err
		}
		if err := p.AddVariable(v); err != nil {
			p.Delete()
			return nil, err
		}
	}
	return p, nil
}

func attributeText(attrs api.AttributeMap, name string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	val, ok := attrs.Get(name)
	if !ok {
		return "", false
	}
	switch s := val.(type) {
	case string:
		return strings.TrimRight(s, "\x00"), true
	case []string:
		return strings.Join(s, " "), true
	}
	return "", false
}

func attributeNumber(attrs api.AttributeMap, name string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	val, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// flatten turns the nested slices returned by the netCDF-4 reader into a
// flat row-major slice and its shape.
func flatten(values interface{}) (reflect.Value, []int) {
	rv := reflect.ValueOf(values)
	var shape []int
	t := rv.Type()
	for t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			for t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Slice {
				t = t.Elem()
			}
			return reflect.MakeSlice(t, 0, 0), shape
		}
		t = t.Elem()
		rv = concatRows(rv)
	}
	if rv.Kind() != reflect.Slice {
		s := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
		s.Index(0).Set(rv)
		return s, shape
	}
	return rv, append(shape, rv.Len())
}

// concatRows joins the rows of a slice of slices; row lengths must be
// equal.
func concatRows(rv reflect.Value) reflect.Value {
	out := reflect.MakeSlice(rv.Type().Elem(), 0, 0)
	for i := 0; i < rv.Len(); i++ {
		out = reflect.AppendSlice(out, rv.Index(i))
	}
	return out
}

func readNetCDF4Variable(g api.Group, name string) (*Variable, error) {
	nv, err := g.GetVariable(name)
	if err != nil {
		return nil, errorf(ErrHDF5, "could not read variable '%s' (%v)", name, err)
	}
	flat, shape := flatten(nv.Values)
	dims := nv.Dimensions
	if flat.Type().Elem().Kind() == reflect.String && len(dims) == len(shape)+1 {
		// Text data carries a trailing string length dimension.
		dims = dims[:len(dims)-1]
	}
	if len(shape) < len(dims) && ndarray.Len(shape) == 0 {
		// An empty leading axis hides the inner lengths.
		shape = append(shape, make([]int, len(dims)-len(shape))...)
	}
	if len(shape) != len(dims) {
		return nil, errorf(ErrUnsupportedProduct, "variable '%s' has %d dimensions but %d-dimensional data",
			name, len(dims), len(shape))
	}

	var data Array
	switch flat.Type().Elem().Kind() {
	case reflect.Uint8:
		data = widen(flat, Int16)
	case reflect.Uint16:
		data = widen(flat, Int32)
	case reflect.Uint32, reflect.Int64, reflect.Uint64:
		return nil, errorf(ErrUnsupportedProduct, "variable '%s' has unsupported data type %s", name, flat.Type().Elem())
	default:
		data, err = ArrayOf(flat.Interface())
	}
	if err != nil {
		return nil, errorf(ErrUnsupportedProduct, "variable '%s': %v", name, err)
	}
	dimType := make([]DimensionType, len(dims))
	for i, d := range dims {
		dimType[i] = dimensionTypeForName(d)
	}
	v, err := NewVariable(name, data.DataType(), dimType, shape)
	if err != nil {
		return nil, err
	}
	if v.NumElements() != data.Len() {
		return nil, errorf(ErrUnsupportedProduct, "variable '%s' has %d elements; expected %d",
			name, data.Len(), v.NumElements())
	}
	if v.DataType == String {
		for i, s := range data.Strings() {
			data.Strings()[i] = strings.TrimRight(s, "\x00")
		}
	}
	v.Data = data
	v.Description, _ = attributeText(nv.Attributes, "description")
	if v.DataType != String {
		v.Unit, _ = attributeText(nv.Attributes, "units")
		if x, ok := attributeNumber(nv.Attributes, "valid_min"); ok {
			v.ValidMin = ScalarOf(v.DataType, x)
		}
		if x, ok := attributeNumber(nv.Attributes, "valid_max"); ok {
			v.ValidMax = ScalarOf(v.DataType, x)
		}
	}
	if meanings, ok := attributeText(nv.Attributes, "flag_meanings"); ok && v.DataType.IsInteger() {
		if err := v.SetEnumeration(strings.Fields(meanings)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// widen copies unsigned data into the next larger signed type.
func widen(flat reflect.Value, t DataType) Array {
	a := NewArray(t, flat.Len())
	for i := 0; i < flat.Len(); i++ {
		a.SetFloat64At(i, float64(flat.Index(i).Uint()))
	}
	return a
}
