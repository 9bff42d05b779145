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
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spatialmodel/harp/internal/ndarray"
)

// MaxNumDims is the maximum rank of a variable.
const MaxNumDims = 8

// Variable is a named flat array with dimension information and metadata.
type Variable struct {
	Name          string
	DataType      DataType
	Dimension     []int
	DimensionType []DimensionType
	Data          Array

	Unit        string
	Description string
	ValidMin    Scalar
	ValidMax    Scalar
	EnumName    []string

	owner   *Product
	deleted bool
}

// NewVariable allocates a variable of the given type and shape with
// zeroed data and default valid range.
func NewVariable(name string, t DataType, dimType []DimensionType, dim []int) (*Variable, error) {
	if !validName(name) {
		return nil, errorf(ErrInvalidName, "invalid variable name '%s'", name)
	}
	if t < Int8 || t > String {
		return nil, errorf(ErrInvalidType, "invalid data type %d", int(t))
	}
	if len(dimType) != len(dim) {
		return nil, errorf(ErrArrayNumDimsMismatch, "variable '%s' has %d dimension types for %d dimensions",
			name, len(dimType), len(dim))
	}
	if len(dim) > MaxNumDims {
		return nil, errorf(ErrArrayNumDimsMismatch, "variable '%s' has %d dimensions (maximum is %d)",
			name, len(dim), MaxNumDims)
	}
	for i, d := range dim {
		if d < 0 {
			return nil, errorf(ErrInvalidArgument, "dimension %d of variable '%s' has negative length", i, name)
		}
		if dimType[i] < Independent || dimType[i] > Spectral {
			return nil, errorf(ErrInvalidArgument, "invalid dimension type %d", int(dimType[i]))
		}
	}
	v := &Variable{
		Name:          name,
		DataType:      t,
		Dimension:     append([]int(nil), dim...),
		DimensionType: append([]DimensionType(nil), dimType...),
		Data:          NewArray(t, ndarray.Len(dim)),
		ValidMin:      ValidMinFor(t),
		ValidMax:      ValidMaxFor(t),
	}
	return v, nil
}

// validName reports whether name is an identifier: a letter followed by
// letters, digits and underscores.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '_' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// NumElements returns the number of data elements.
func (v *Variable) NumElements() int { return ndarray.Len(v.Dimension) }

// NumDimensions returns the rank.
func (v *Variable) NumDimensions() int { return len(v.Dimension) }

// IsTimeDependent reports whether the leading axis is a time axis.
func (v *Variable) IsTimeDependent() bool {
	return len(v.DimensionType) > 0 && v.DimensionType[0] == Time
}

// HasDimensionTypes reports whether the variable has exactly the given
// dimension types.
func (v *Variable) HasDimensionTypes(dimType ...DimensionType) bool {
	if len(dimType) != len(v.DimensionType) {
		return false
	}
	for i := range dimType {
		if dimType[i] != v.DimensionType[i] {
			return false
		}
	}
	return true
}

// SetString stores s in string slot i.
func (v *Variable) SetString(i int, s string) error {
	if v.DataType != String {
		return errorf(ErrInvalidType, "variable '%s' does not hold strings", v.Name)
	}
	if i < 0 || i >= v.Data.Len() {
		return errorf(ErrArrayOutOfBounds, "index %d out of bounds for variable '%s'", i, v.Name)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return errorf(ErrInvalidArgument, "string for variable '%s' contains a NUL byte", v.Name)
	}
	v.Data.Strings()[i] = s
	return nil
}

// SetEnumeration sets the labels of an integer-backed categorical variable.
func (v *Variable) SetEnumeration(labels []string) error {
	if !v.DataType.IsInteger() && len(labels) > 0 {
		return errorf(ErrInvalidType, "enumeration values are only allowed for integer variables ('%s' is %s)",
			v.Name, v.DataType)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return errorf(ErrInvalidArgument, "duplicate enumeration value '%s' for variable '%s'", l, v.Name)
		}
		seen[l] = true
	}
	v.EnumName = append([]string(nil), labels...)
	return nil
}

// HasDefaultValidMin reports whether the lower bound is the type default.
func (v *Variable) HasDefaultValidMin() bool {
	return v.DataType == String || v.ValidMin.Equal(v.DataType, ValidMinFor(v.DataType))
}

// HasDefaultValidMax reports whether the upper bound is the type default.
func (v *Variable) HasDefaultValidMax() bool {
	return v.DataType == String || v.ValidMax.Equal(v.DataType, ValidMaxFor(v.DataType))
}

// Owner returns the product the variable is attached to, if any.
func (v *Variable) Owner() *Product { return v.owner }

// Delete releases the variable. Deleting a variable that is attached to a
// product is a no-op; the product owns it.
func (v *Variable) Delete() {
	if v == nil || v.owner != nil {
		return
	}
	v.Data = Array{}
	v.EnumName = nil
	v.deleted = true
}

// Deleted reports whether Delete released the variable.
func (v *Variable) Deleted() bool { return v.deleted }

// Copy returns an unattached deep copy.
func (v *Variable) Copy() *Variable {
	o := *v
	o.Dimension = append([]int(nil), v.Dimension...)
	o.DimensionType = append([]DimensionType(nil), v.DimensionType...)
	o.Data = v.Data.Clone()
	o.EnumName = append([]string(nil), v.EnumName...)
	o.owner = nil
	return &o
}

// ConvertDataType changes the storage type in place. The valid range is
// carried over where the new type can represent it.
func (v *Variable) ConvertDataType(t DataType) error {
	if t == v.DataType {
		return nil
	}
	data, err := v.Data.Convert(t)
	if err != nil {
		return err
	}
	oldMin, oldMax := v.HasDefaultValidMin(), v.HasDefaultValidMax()
	min, max := v.ValidMin.Float64(v.DataType), v.ValidMax.Float64(v.DataType)
	v.Data = data
	v.ValidMin, v.ValidMax = ValidMinFor(t), ValidMaxFor(t)
	if !oldMin && min >= ValidMinFor(t).Float64(t) {
		v.ValidMin = ScalarOf(t, min)
	}
	if !oldMax && max <= ValidMaxFor(t).Float64(t) {
		v.ValidMax = ScalarOf(t, max)
	}
	if !t.IsInteger() {
		v.EnumName = nil
	}
	v.DataType = t
	return nil
}

// Verify checks the internal consistency of the variable.
func (v *Variable) Verify() error {
	if !validName(v.Name) {
		return errorf(ErrInvalidName, "invalid variable name '%s'", v.Name)
	}
	if len(v.Dimension) != len(v.DimensionType) {
		return errorf(ErrInvalidVariable, "variable '%s' has inconsistent dimension information", v.Name)
	}
	for i, dt := range v.DimensionType {
		if dt == Time && i != 0 {
			return errorf(ErrInvalidVariable, "dimension %d of variable '%s' is of type 'time'; "+
				"only the first dimension can be of type 'time'", i, v.Name)
		}
	}
	if v.Data.Len() != v.NumElements() || v.Data.DataType() != v.DataType {
		return errorf(ErrInvalidVariable, "data of variable '%s' does not match its dimensions", v.Name)
	}
	if v.DataType == String && v.Unit != "" {
		return errorf(ErrInvalidVariable, "string variable '%s' has a unit", v.Name)
	}
	if len(v.EnumName) > 0 && !v.DataType.IsInteger() {
		return errorf(ErrInvalidVariable, "enumeration values for non-integer variable '%s'", v.Name)
	}
	return nil
}

// Checksum returns an xxhash digest of the variable's name, type, shape,
// unit and data. Two variables with equal checksums hold the same content.
func (v *Variable) Checksum() uint64 {
	h := xxhash.New()
	var word [8]byte
	writeInt := func(i int) {
		binary.LittleEndian.PutUint64(word[:], uint64(i))
		h.Write(word[:])
	}
	h.WriteString(v.Name)
	writeInt(int(v.DataType))
	for i, d := range v.Dimension {
		writeInt(int(v.DimensionType[i]))
		writeInt(d)
	}
	h.WriteString(v.Unit)
	if v.DataType == String {
		for _, s := range v.Data.Strings() {
			writeInt(len(s))
			h.WriteString(s)
		}
		return h.Sum64()
	}
	for i := 0; i < v.Data.Len(); i++ {
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(v.Data.Float64At(i)))
		h.Write(word[:])
	}
	return h.Sum64()
}
