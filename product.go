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
	"strings"

	"github.com/spatialmodel/harp/libharp"
)

// The reserved product attribute names.
const (
	SourceProductAttr = "source_product"
	HistoryAttr       = "history"
)

// Product is an ordered set of named variables plus the source_product
// and history attributes. Variable order is the on-disk order.
//
// The key accessors (Get, Set, Delete, Has) and the attribute accessors
// (Attr, SetAttr, DelAttr) share one reserved-name check: a reserved
// attribute name given to a key accessor addresses the attribute, and
// names starting with an underscore are never variable names.
type Product struct {
	// SourceProduct is the name of the file the product derives from.
	SourceProduct string

	// History holds one line per command applied to the product.
	History string

	names     []string
	variables map[string]*Variable
}

// NewProduct returns an empty product.
func NewProduct() *Product {
	return &Product{variables: make(map[string]*Variable)}
}

func isAttribute(name string) bool { return name == SourceProductAttr || name == HistoryAttr }

func isReserved(name string) bool { return strings.HasPrefix(name, "_") || isAttribute(name) }

// Len returns the number of variables.
func (p *Product) Len() int { return len(p.names) }

// Names returns the variable names in order.
func (p *Product) Names() []string { return append([]string(nil), p.names...) }

// Has reports whether the product holds the named variable.
func (p *Product) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Get returns the named variable.
func (p *Product) Get(name string) (*Variable, bool) {
	if isReserved(name) {
		return nil, false
	}
	v, ok := p.variables[name]
	return v, ok
}

// Set adds or replaces the named variable, keeping the position of a
// replaced variable. A bare element slice as data is stored as a one
// dimensional *Array. Setting a reserved attribute name stores the
// string data of v in that attribute.
func (p *Product) Set(name string, v *Variable) error {
	if v == nil {
		return errorf("variable '%s' is nil", name)
	}
	if isAttribute(name) {
		s, ok := v.Data.(string)
		if !ok {
			return errorf("attribute '%s' must be a string", name)
		}
		return p.SetAttr(name, s)
	}
	if name == "" || isReserved(name) {
		return errorf("invalid variable name '%s'", name)
	}
	v.Data = normalizeData(v.Data)
	if p.variables == nil {
		p.variables = make(map[string]*Variable)
	}
	if _, ok := p.variables[name]; !ok {
		p.names = append(p.names, name)
	}
	p.variables[name] = v
	return nil
}

// Delete removes the named variable, or clears a reserved attribute.
func (p *Product) Delete(name string) error {
	if isAttribute(name) {
		return p.DelAttr(name)
	}
	if _, ok := p.Get(name); !ok {
		return errorf("product has no variable '%s'", name)
	}
	delete(p.variables, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return nil
}

// Range calls f for each variable in order until f returns false.
func (p *Product) Range(f func(name string, v *Variable) bool) {
	for _, name := range p.names {
		if !f(name, p.variables[name]) {
			return
		}
	}
}

// Attr returns a product attribute and whether it is set.
func (p *Product) Attr(name string) (string, bool) {
	switch name {
	case SourceProductAttr:
		return p.SourceProduct, p.SourceProduct != ""
	case HistoryAttr:
		return p.History, p.History != ""
	}
	return "", false
}

// SetAttr sets a product attribute.
func (p *Product) SetAttr(name, value string) error {
	switch name {
	case SourceProductAttr:
		p.SourceProduct = value
	case HistoryAttr:
		p.History = value
	default:
		return errorf("'%s' is not a product attribute", name)
	}
	return nil
}

// DelAttr clears a product attribute.
func (p *Product) DelAttr(name string) error { return p.SetAttr(name, "") }

// ToDict returns the data of every variable by name. A variable with a
// unit adds a NAME_unit entry holding the unit. Other attributes are
// dropped.
func (p *Product) ToDict() map[string]interface{} {
	d := make(map[string]interface{}, 2*len(p.names))
	p.Range(func(name string, v *Variable) bool {
		d[name] = v.Data
		if v.Unit != "" {
			d[name+"_unit"] = v.Unit
		}
		return true
	})
	return d
}

func (p *Product) String() string {
	var b strings.Builder
	if p.SourceProduct != "" {
		fmt.Fprintf(&b, "source product = %q\n", p.SourceProduct)
	}
	if p.History != "" {
		fmt.Fprintf(&b, "history = %q\n", p.History)
	}
	if len(p.names) == 0 {
		return b.String()
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	p.Range(func(name string, v *Variable) bool {
		if v == nil || v.Data == nil {
			fmt.Fprintf(&b, "<non-compliant variable '%s'>\n", name)
			return true
		}
		if a, ok := normalizeData(v.Data).(*Array); ok && a.Len() == 0 {
			fmt.Fprintf(&b, "<empty variable '%s'>\n", name)
			return true
		}
		b.WriteString(formatDataType(v.Data) + " " + name)
		if len(v.Dimension) > 0 {
			b.WriteString(" " + formatDimensions(v.Dimension, v.Data))
		}
		if v.Unit != "" {
			fmt.Fprintf(&b, " [%s]", v.Unit)
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

// productToNative builds the native form of p. On failure nothing is
// left allocated.
func (c *Context) productToNative(p *Product) (*libharp.Product, error) {
	np := c.Library.NewProduct()
	var err error
	if p.SourceProduct != "" {
		if np.SourceProduct, err = c.encode(p.SourceProduct); err != nil {
			np.Delete()
			return nil, err
		}
	}
	if p.History != "" {
		if np.History, err = c.encode(p.History); err != nil {
			np.Delete()
			return nil, err
		}
	}
	for _, name := range p.names {
		nv, err := c.variableToNative(name, p.variables[name])
		if err == nil {
			if err = np.AddVariable(nv); err != nil {
				nv.Delete()
				err = libraryError(err)
			}
		}
		if err != nil {
			np.Delete()
			return nil, &Error{Message: fmt.Sprintf("variable '%s' could not be exported (%s)", name, message(err)), Err: err}
		}
	}
	return np, nil
}

// productFromNative copies np into a new Product.
func (c *Context) productFromNative(np *libharp.Product) (*Product, error) {
	p := NewProduct()
	var err error
	if np.SourceProduct != "" {
		if p.SourceProduct, err = c.decode(np.SourceProduct); err != nil {
			return nil, err
		}
	}
	if np.History != "" {
		if p.History, err = c.decode(np.History); err != nil {
			return nil, err
		}
	}
	for _, nv := range np.Variables {
		v, err := c.variableFromNative(nv)
		if err != nil {
			return nil, err
		}
		name, err := c.decode(nv.Name)
		if err != nil {
			return nil, err
		}
		p.names = append(p.names, name)
		p.variables[name] = v
	}
	return p, nil
}
