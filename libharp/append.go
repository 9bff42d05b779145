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
	"github.com/spatialmodel/harp/internal/ndarray"
)

// MakeTimeDependent gives every variable of p a leading time axis.
// Variables without one get their data replicated along it. A product
// without a time axis gets one of length 1.
func MakeTimeDependent(p *Product) error {
	n := p.Dimension[Time]
	if !p.hasTimeAxis() {
		n = 1
	}
	for _, v := range p.Variables {
		if v.IsTimeDependent() {
			continue
		}
		if len(v.Dimension) >= MaxNumDims {
			return errorf(ErrArrayNumDimsMismatch, "cannot make variable '%s' time dependent; "+
				"it already has the maximum number of dimensions", v.Name)
		}
	}
	for _, v := range p.Variables {
		if v.IsTimeDependent() {
			continue
		}
		data, shape := ndarray.Broadcast(v.Data.Slice(), v.Dimension, n)
		a, err := ArrayOf(data)
		if err != nil {
			return err
		}
		v.Data = a
		v.Dimension = shape
		v.DimensionType = append([]DimensionType{Time}, v.DimensionType...)
	}
	if len(p.Variables) > 0 {
		p.Dimension[Time] = n
	}
	return nil
}

func (p *Product) hasTimeAxis() bool {
	for _, v := range p.Variables {
		if v.IsTimeDependent() {
			return true
		}
	}
	return false
}

// normalize prepares p for merging: every variable becomes time
// dependent and an index variable numbers the samples.
func normalize(p *Product) error {
	if err := MakeTimeDependent(p); err != nil {
		return err
	}
	if p.HasVariable("index") || len(p.Variables) == 0 {
		return nil
	}
	n := p.Dimension[Time]
	index, err := NewVariable("index", Int32, []DimensionType{Time}, []int{n})
	if err != nil {
		return err
	}
	index.Description = "zero-based index of the sample within the source product"
	ids := index.Data.Int32()
	for i := range ids {
		ids[i] = int32(i)
	}
	return p.AddVariable(index)
}

// joinDataType returns the narrowest native type both a and b convert to
// without loss.
func joinDataType(a, b DataType) (DataType, bool) {
	if a == b {
		return a, true
	}
	if a == String || b == String {
		return 0, false
	}
	if a > b {
		a, b = b, a
	}
	if a == Int32 && b == Float {
		return Double, true
	}
	return b, true
}

// Append merges src into dst along the time axis. A nil src only
// normalizes dst: all variables become time dependent and an int32
// index variable numbers the samples. Otherwise src is normalized too and
// every variable of dst is extended with the samples of the same variable
// in src. Non-time axes are padded to the longer of the two lengths.
// Variables that only exist in src are ignored. src stays owned by the
// caller.
func Append(dst, src *Product) error {
	if dst == nil {
		return errorf(ErrInvalidArgument, "product is empty (NULL)")
	}
	if err := normalize(dst); err != nil {
		return err
	}
	if src == nil {
		dst.SourceProduct = ""
		return nil
	}
	if err := normalize(src); err != nil {
		return err
	}
	if count, err := dst.Variable("count"); err == nil && !src.HasVariable("count") {
		if err := addUnitCount(src, count); err != nil {
			return err
		}
	}

	type pair struct {
		dst, src *Variable
		dataType DataType
		shape    []int
	}
	pairs := make([]pair, 0, len(dst.Variables))
	for _, dv := range dst.Variables {
		sv, err := src.Variable(dv.Name)
		if err != nil {
			return errorf(ErrInvalidArgument, "product to append does not contain variable '%s'", dv.Name)
		}
		if !sv.HasDimensionTypes(dv.DimensionType...) {
			return errorf(ErrInvalidArgument, "dimensions of variable '%s' do not match", dv.Name)
		}
		if sv.Unit != dv.Unit {
			return errorf(ErrInvalidArgument, "unit of variable '%s' does not match ('%s' vs. '%s')",
				dv.Name, sv.Unit, dv.Unit)
		}
		t, ok := joinDataType(dv.DataType, sv.DataType)
		if !ok {
			return errorf(ErrInvalidType, "data type of variable '%s' does not match (%s vs. %s)",
				dv.Name, sv.DataType, dv.DataType)
		}
		shape := append([]int(nil), dv.Dimension...)
		for i := 1; i < len(shape); i++ {
			if sv.Dimension[i] > shape[i] {
				shape[i] = sv.Dimension[i]
			}
		}
		pairs = append(pairs, pair{dst: dv, src: sv, dataType: t, shape: shape})
	}

	for _, pr := range pairs {
		a, err := pr.dst.Data.Convert(pr.dataType)
		if err != nil {
			return err
		}
		b, err := pr.src.Data.Convert(pr.dataType)
		if err != nil {
			return err
		}
		ad, _ := ndarray.PadTo(a.Slice(), pr.dst.Dimension, pr.shape)
		bd, _ := ndarray.PadTo(b.Slice(), pr.src.Dimension, pr.shape)
		joined, err := ndarray.ConcatAny(ad, bd)
		if err != nil {
			return errorf(ErrInvalidArgument, "cannot append variable '%s': %v", pr.dst.Name, err)
		}
		data, err := ArrayOf(joined)
		if err != nil {
			return err
		}
		if pr.dataType != pr.dst.DataType {
			if err := pr.dst.ConvertDataType(pr.dataType); err != nil {
				return err
			}
		}
		pr.dst.Data = data
		pr.dst.Dimension = pr.shape
		pr.dst.Dimension[0] = pr.dst.Dimension[0] + pr.src.Dimension[0]
	}
	dst.resetDimensions()
	return nil
}

// addUnitCount gives p a count variable shaped like like, with every
// sample counted once.
func addUnitCount(p *Product, like *Variable) error {
	dim := append([]int(nil), like.Dimension...)
	dim[0] = p.Dimension[Time]
	for i := 1; i < len(dim); i++ {
		if dt := like.DimensionType[i]; dt != Independent && p.Dimension[dt] != 0 {
			dim[i] = p.Dimension[dt]
		}
	}
	count, err := NewVariable("count", like.DataType, like.DimensionType, dim)
	if err != nil {
		return err
	}
	count.Description = like.Description
	for i := 0; i < count.Data.Len(); i++ {
		count.Data.SetFloat64At(i, 1)
	}
	return p.AddVariable(count)
}
