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
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
)

// Conventions is the value of the Conventions attribute of HARP files.
const Conventions = "HARP-1.0"

// dimensionTypeForName maps a netCDF dimension name to a dimension type.
// Unknown names are independent dimensions.
func dimensionTypeForName(name string) DimensionType {
	for i, n := range dimensionNames {
		if n == name {
			return DimensionType(i)
		}
	}
	return Independent
}

// netcdfLayout collects the dimensions a product needs on disk.
type netcdfLayout struct {
	names   []string
	lengths []int
	index   map[string]int
}

func (l *netcdfLayout) add(name string, length int) {
	if _, ok := l.index[name]; ok {
		return
	}
	l.index[name] = len(l.names)
	l.names = append(l.names, name)
	l.lengths = append(l.lengths, length)
}

// variableDimensions returns the netCDF dimension names of v, including
// the trailing string length dimension of string data.
func variableDimensions(v *Variable) []string {
	dims := make([]string, 0, len(v.Dimension)+1)
	for i, dt := range v.DimensionType {
		if dt == Independent {
			dims = append(dims, fmt.Sprintf("independent_%d", v.Dimension[i]))
		} else {
			dims = append(dims, dimensionNames[dt])
		}
	}
	if v.DataType == String {
		dims = append(dims, fmt.Sprintf("string_%d", maxStringLength(v)))
	}
	return dims
}

// maxStringLength is the string dimension length of v; at least 1.
func maxStringLength(v *Variable) int {
	n := 1
	for _, s := range v.Data.Strings() {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

func newLayout(p *Product) (*netcdfLayout, error) {
	l := &netcdfLayout{index: make(map[string]int)}
	for dt, name := range dimensionNames {
		if p.Dimension[dt] > 0 {
			l.add(name, p.Dimension[dt])
		}
	}
	var extra []string
	lengths := make(map[string]int)
	for _, v := range p.Variables {
		dims := variableDimensions(v)
		for i, d := range dims {
			if _, ok := l.index[d]; ok {
				continue
			}
			n := maxStringLength(v)
			if i < len(v.Dimension) {
				n = v.Dimension[i]
			}
			if _, ok := lengths[d]; !ok {
				extra = append(extra, d)
			}
			lengths[d] = n
		}
	}
	sort.Strings(extra)
	for _, d := range extra {
		l.add(d, lengths[d])
	}
	for i, n := range l.lengths {
		if n == 0 {
			return nil, errorf(ErrExport, "dimension '%s' has length 0", l.names[i])
		}
	}
	return l, nil
}

// zeroValue returns the cdf type marker for a native data type.
func zeroValue(t DataType) interface{} {
	switch t {
	case Int8:
		return []uint8{0}
	case Int16:
		return []int16{0}
	case Int32:
		return []int32{0}
	case Float:
		return []float32{0}
	case Double:
		return []float64{0}
	}
	return ""
}

// scalarAttribute returns a one-element attribute value of type t.
func scalarAttribute(t DataType, s Scalar) interface{} {
	switch t {
	case Int8:
		return []uint8{uint8(s.Int8)}
	case Int16:
		return []int16{s.Int16}
	case Int32:
		return []int32{s.Int32}
	case Float:
		return []float32{s.Float}
	}
	return []float64{s.Double}
}

// enumAttribute returns the flag_values attribute for n labels.
func enumAttribute(t DataType, n int) interface{} {
	a := NewArray(t, n)
	for i := 0; i < n; i++ {
		a.SetFloat64At(i, float64(i))
	}
	if t == Int8 {
		return int8ToBytes(a.Int8())
	}
	return a.Slice()
}

func int8ToBytes(v []int8) []uint8 {
	out := make([]uint8, len(v))
	for i, x := range v {
		out[i] = uint8(x)
	}
	return out
}

func bytesToInt8(v []uint8) []int8 {
	out := make([]int8, len(v))
	for i, x := range v {
		out[i] = int8(x)
	}
	return out
}

// netcdfHeader builds the header of the file holding p.
func netcdfHeader(p *Product, l *netcdfLayout) (h *cdf.Header, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorf(ErrNetCDF, "could not define netCDF header (%v)", r)
		}
	}()
	h = cdf.NewHeader(l.names, l.lengths)
	h.AddAttribute("", "Conventions", Conventions)
	if start, stop, err := p.DatetimeRange(); err == nil {
		h.AddAttribute("", "datetime_start", []float64{start})
		h.AddAttribute("", "datetime_stop", []float64{stop})
	}
	if p.SourceProduct != "" {
		h.AddAttribute("", "source_product", p.SourceProduct)
	}
	if p.History != "" {
		h.AddAttribute("", "history", p.History)
	}
	for _, v := range p.Variables {
		h.AddVariable(v.Name, variableDimensions(v), zeroValue(v.DataType))
		if v.Description != "" {
			h.AddAttribute(v.Name, "description", v.Description)
		}
		if v.Unit != "" {
			h.AddAttribute(v.Name, "units", v.Unit)
		}
		if !v.HasDefaultValidMin() {
			h.AddAttribute(v.Name, "valid_min", scalarAttribute(v.DataType, v.ValidMin))
		}
		if !v.HasDefaultValidMax() {
			h.AddAttribute(v.Name, "valid_max", scalarAttribute(v.DataType, v.ValidMax))
		}
		if len(v.EnumName) > 0 {
			for _, label := range v.EnumName {
				if label == "" || strings.ContainsAny(label, " \t\n") {
					return nil, errorf(ErrExport, "enumeration value '%s' of variable '%s' cannot be stored "+
						"as a flag meaning", label, v.Name)
				}
			}
			h.AddAttribute(v.Name, "flag_values", enumAttribute(v.DataType, len(v.EnumName)))
			h.AddAttribute(v.Name, "flag_meanings", strings.Join(v.EnumName, " "))
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return nil, errorf(ErrNetCDF, "invalid netCDF header (%v)", err)
	}
	return h, nil
}

// writeNetCDF stores p as a classic netCDF file in rw.
func writeNetCDF(rw cdf.ReaderWriterAt, p *Product) error {
	l, err := newLayout(p)
	if err != nil {
		return err
	}
	h, err := netcdfHeader(p, l)
	if err != nil {
		return err
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return errorf(ErrNetCDF, "could not create netCDF file (%v)", err)
	}
	for _, v := range p.Variables {
		if v.NumElements() == 0 {
			continue
		}
		var data interface{}
		switch v.DataType {
		case Int8:
			data = int8ToBytes(v.Data.Int8())
		case String:
			data = packStrings(v.Data.Strings(), maxStringLength(v))
		default:
			data = v.Data.Slice()
		}
		if _, err := f.Writer(v.Name, nil, nil).Write(data); err != nil && err != io.EOF {
			return errorf(ErrNetCDF, "could not write variable '%s' (%v)", v.Name, err)
		}
	}
	return nil
}

// packStrings lays strings out in NUL-padded fixed-width slots.
func packStrings(s []string, width int) string {
	var b strings.Builder
	b.Grow(len(s) * width)
	for _, x := range s {
		b.WriteString(x)
		for i := len(x); i < width; i++ {
			b.WriteByte(0)
		}
	}
	return b.String()
}

// unpackStrings splits fixed-width slots and strips the NUL padding.
func unpackStrings(b []byte, width int) []string {
	if width == 0 {
		return make([]string, 0)
	}
	out := make([]string, len(b)/width)
	for i := range out {
		slot := b[i*width : (i+1)*width]
		if j := strings.IndexByte(string(slot), 0); j >= 0 {
			slot = slot[:j]
		}
		out[i] = string(slot)
	}
	return out
}

// attributeString returns a text attribute, or "" if it is absent or
// not text.
func attributeString(h *cdf.Header, v, name string) string {
	s, _ := h.GetAttribute(v, name).(string)
	return strings.TrimRight(s, "\x00")
}

// attributeFloat64 returns the first element of a numeric attribute.
func attributeFloat64(val interface{}) (float64, bool) {
	switch a := val.(type) {
	case []uint8:
		if len(a) > 0 {
			return float64(int8(a[0])), true
		}
	case []int16:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	}
	return math.NaN(), false
}

// checkConventions verifies the Conventions attribute of a HARP file.
func checkConventions(conventions string) error {
	if !strings.HasPrefix(conventions, "HARP-") {
		return errorf(ErrUnsupportedProduct, "not a HARP product (invalid 'Conventions' attribute '%s')", conventions)
	}
	return nil
}

// readNetCDF reads a classic netCDF HARP file.
func readNetCDF(rw cdf.ReaderWriterAt) (p *Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.Delete()
			p, err = nil, errorf(ErrNetCDF, "could not read netCDF file (%v)", r)
		}
	}()
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, errorf(ErrNetCDF, "could not open netCDF file (%v)", err)
	}
	h := f.Header
	if err := checkConventions(attributeString(h, "", "Conventions")); err != nil {
		return nil, err
	}
	p = NewProduct()
	p.SourceProduct = attributeString(h, "", "source_product")
	p.History = attributeString(h, "", "history")
	for _, name := range h.Variables() {
		v, err := readNetCDFVariable(f, name)
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

func readNetCDFVariable(f *cdf.File, name string) (*Variable, error) {
	h := f.Header
	dims := h.Dimensions(name)
	lengths := h.Lengths(name)
	zero := h.ZeroValue(name, 0)

	var t DataType
	switch zero.(type) {
	case []uint8:
		t = Int8
	case []int16:
		t = Int16
	case []int32:
		t = Int32
	case []float32:
		t = Float
	case []float64:
		t = Double
	case string:
		t = String
	default:
		return nil, errorf(ErrUnsupportedProduct, "variable '%s' has an unsupported data type", name)
	}
	width := 0
	if t == String {
		if len(dims) == 0 {
			return nil, errorf(ErrUnsupportedProduct, "string variable '%s' has no string length dimension", name)
		}
		width = lengths[len(lengths)-1]
		dims, lengths = dims[:len(dims)-1], lengths[:len(lengths)-1]
	}
	dimType := make([]DimensionType, len(dims))
	for i, d := range dims {
		dimType[i] = dimensionTypeForName(d)
	}
	v, err := NewVariable(name, t, dimType, lengths)
	if err != nil {
		return nil, err
	}
	if n := v.NumElements(); n > 0 {
		var buf interface{}
		switch t {
		case Int8:
			buf = make([]uint8, n)
		case String:
			buf = make([]uint8, n*width)
		default:
			buf = v.Data.Slice()
		}
		if _, err := f.Reader(name, nil, nil).Read(buf); err != nil && err != io.EOF {
			return nil, errorf(ErrNetCDF, "could not read variable '%s' (%v)", name, err)
		}
		switch t {
		case Int8:
			copy(v.Data.Int8(), bytesToInt8(buf.([]uint8)))
		case String:
			copy(v.Data.Strings(), unpackStrings(buf.([]uint8), width))
		}
	}
	v.Description = attributeString(h, name, "description")
	if t != String {
		v.Unit = attributeString(h, name, "units")
		if x, ok := attributeFloat64(h.GetAttribute(name, "valid_min")); ok {
			v.ValidMin = ScalarOf(t, x)
		}
		if x, ok := attributeFloat64(h.GetAttribute(name, "valid_max")); ok {
			v.ValidMax = ScalarOf(t, x)
		}
	}
	if meanings := attributeString(h, name, "flag_meanings"); meanings != "" && t.IsInteger() {
		if err := v.SetEnumeration(strings.Fields(meanings)); err != nil {
			return nil, err
		}
	}
	return v, nil
}
