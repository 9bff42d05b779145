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
	"strings"

	"github.com/spatialmodel/harp/internal/hash"
)

// DatetimeUnit is the reference unit of product datetime ranges.
const DatetimeUnit = "days since 2000-01-01"

// Product is a flat collection of variables that share dimension lengths.
// Dimension holds the length of each non-independent dimension type, or
// zero when no variable uses it.
type Product struct {
	Dimension     [NumDimensionTypes]int
	Variables     []*Variable
	SourceProduct string
	History       string

	deleted bool
}

// NewProduct returns an empty product.
func NewProduct() *Product { return new(Product) }

// IsEmpty reports whether the product has no variables, or has a
// variable without elements.
func (p *Product) IsEmpty() bool {
	if len(p.Variables) == 0 {
		return true
	}
	for _, v := range p.Variables {
		if v.NumElements() == 0 {
			return true
		}
	}
	return false
}

// Delete releases the product and all variables it owns.
func (p *Product) Delete() {
	if p == nil {
		return
	}
	for _, v := range p.Variables {
		v.owner = nil
		v.Delete()
	}
	p.Variables = nil
	p.Dimension = [NumDimensionTypes]int{}
	p.deleted = true
}

// Deleted reports whether Delete released the product.
func (p *Product) Deleted() bool { return p.deleted }

// variableIndex returns the position of the named variable or -1.
func (p *Product) variableIndex(name string) int {
	for i, v := range p.Variables {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// HasVariable reports whether the product holds the named variable.
func (p *Product) HasVariable(name string) bool { return p.variableIndex(name) >= 0 }

// Variable returns the named variable.
func (p *Product) Variable(name string) (*Variable, error) {
	i := p.variableIndex(name)
	if i < 0 {
		return nil, errorf(ErrVariableNotFound, "variable '%s' does not exist", name)
	}
	return p.Variables[i], nil
}

// checkDimensions verifies that the lengths of v agree with the product.
func (p *Product) checkDimensions(v *Variable) error {
	for i, dt := range v.DimensionType {
		if dt == Independent {
			continue
		}
		if n := p.Dimension[dt]; n != 0 && n != v.Dimension[i] {
			return errorf(ErrInvalidArgument, "dimension %d (of type '%s') of variable '%s' has length %d; "+
				"expected %d", i, dt, v.Name, v.Dimension[i], n)
		}
	}
	return nil
}

// AddVariable attaches v to the product, which takes ownership of it.
func (p *Product) AddVariable(v *Variable) error {
	if v.owner != nil {
		return errorf(ErrInvalidArgument, "variable '%s' is already part of a product", v.Name)
	}
	if p.HasVariable(v.Name) {
		return errorf(ErrInvalidArgument, "variable '%s' already exists", v.Name)
	}
	if err := v.Verify(); err != nil {
		return err
	}
	if err := p.checkDimensions(v); err != nil {
		return err
	}
	for i, dt := range v.DimensionType {
		if dt != Independent {
			p.Dimension[dt] = v.Dimension[i]
		}
	}
	v.owner = p
	p.Variables = append(p.Variables, v)
	return nil
}

// ReplaceVariable swaps the variable with the same name as v for v and
// deletes the old one.
func (p *Product) ReplaceVariable(v *Variable) error {
	i := p.variableIndex(v.Name)
	if i < 0 {
		return errorf(ErrVariableNotFound, "variable '%s' does not exist", v.Name)
	}
	if v.owner != nil {
		return errorf(ErrInvalidArgument, "variable '%s' is already part of a product", v.Name)
	}
	if err := v.Verify(); err != nil {
		return err
	}
	old := p.Variables[i]
	p.Variables[i] = nil
	p.resetDimensions()
	if err := p.checkDimensions(v); err != nil {
		p.Variables[i] = old
		p.resetDimensions()
		return err
	}
	old.owner = nil
	old.Delete()
	v.owner = p
	p.Variables[i] = v
	p.resetDimensions()
	return nil
}

// DetachVariable removes the named variable from the product and hands
// ownership to the caller.
func (p *Product) DetachVariable(name string) (*Variable, error) {
	i := p.variableIndex(name)
	if i < 0 {
		return nil, errorf(ErrVariableNotFound, "variable '%s' does not exist", name)
	}
	v := p.Variables[i]
	p.Variables = append(p.Variables[:i], p.Variables[i+1:]...)
	v.owner = nil
	p.resetDimensions()
	return v, nil
}

// RemoveVariable deletes the named variable.
func (p *Product) RemoveVariable(name string) error {
	v, err := p.DetachVariable(name)
	if err != nil {
		return err
	}
	v.Delete()
	return nil
}

// resetDimensions recomputes the product dimension lengths from its
// variables. Nil entries are skipped.
func (p *Product) resetDimensions() {
	p.Dimension = [NumDimensionTypes]int{}
	for _, v := range p.Variables {
		if v == nil {
			continue
		}
		for i, dt := range v.DimensionType {
			if dt != Independent {
				p.Dimension[dt] = v.Dimension[i]
			}
		}
	}
}

// Verify checks every variable and the consistency of dimension lengths.
func (p *Product) Verify() error {
	var dim [NumDimensionTypes]int
	set := [NumDimensionTypes]bool{}
	seen := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if seen[v.Name] {
			return errorf(ErrInvalidProduct, "duplicate variable '%s'", v.Name)
		}
		seen[v.Name] = true
		if err := v.Verify(); err != nil {
			return err
		}
		for i, dt := range v.DimensionType {
			if dt == Independent {
				continue
			}
			if set[dt] && dim[dt] != v.Dimension[i] {
				return errorf(ErrInvalidProduct, "inconsistent length for dimension '%s' (variable '%s')",
					dt, v.Name)
			}
			dim[dt], set[dt] = v.Dimension[i], true
		}
	}
	if strings.IndexByte(p.SourceProduct, 0) >= 0 || strings.IndexByte(p.History, 0) >= 0 {
		return errorf(ErrInvalidProduct, "product attribute contains a NUL byte")
	}
	return nil
}

// Copy returns a deep copy of the product.
func (p *Product) Copy() *Product {
	o := &Product{
		Dimension:     p.Dimension,
		SourceProduct: p.SourceProduct,
		History:       p.History,
		Variables:     make([]*Variable, len(p.Variables)),
	}
	for i, v := range p.Variables {
		c := v.Copy()
		c.owner = o
		o.Variables[i] = c
	}
	return o
}

// AddHistory appends a line to the history attribute.
func (p *Product) AddHistory(line string) {
	if p.History == "" {
		p.History = line
		return
	}
	p.History += "\n" + line
}

// DatetimeRange returns the first and last sample time of the product in
// days since 2000-01-01. It uses datetime_start and datetime_stop when
// present and datetime otherwise. NaN values are ignored.
func (p *Product) DatetimeRange() (start, stop float64, err error) {
	start, err = p.datetimeExtreme("datetime_start", false)
	if err != nil {
		return 0, 0, err
	}
	stop, err = p.datetimeExtreme("datetime_stop", true)
	if err != nil {
		return 0, 0, err
	}
	return start, stop, nil
}

func (p *Product) datetimeExtreme(name string, max bool) (float64, error) {
	v, err := p.Variable(name)
	if err != nil {
		if v, err = p.Variable("datetime"); err != nil {
			return 0, errorf(ErrVariableNotFound, "product has no datetime information")
		}
	}
	if !v.DataType.IsNumeric() {
		return 0, errorf(ErrInvalidVariable, "variable '%s' is not numeric", v.Name)
	}
	values := v.Data.Float64s()
	if err := ConvertUnit(v.Unit, DatetimeUnit, values); err != nil {
		return 0, err
	}
	result := math.NaN()
	for _, x := range values {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(result) || (max && x > result) || (!max && x < result) {
			result = x
		}
	}
	if math.IsNaN(result) {
		return 0, errorf(ErrInvalidVariable, "variable '%s' has no valid values", v.Name)
	}
	return result, nil
}

type productDigest struct {
	SourceProduct string
	History       string
	Names         []string
	Checksums     []uint64
}

// Checksum returns a digest of the product attributes and the checksums
// of its variables in order.
func (p *Product) Checksum() string {
	d := productDigest{SourceProduct: p.SourceProduct, History: p.History}
	for _, v := range p.Variables {
		d.Names = append(d.Names, v.Name)
		d.Checksums = append(d.Checksums, v.Checksum())
	}
	return hash.Hash(d)
}
