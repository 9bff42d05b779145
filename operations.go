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

// ExecuteOperations applies operations to p; see
// (*Context).ExecuteOperations.
func ExecuteOperations(p *Product, operations string) (*Product, error) {
	return Default.ExecuteOperations(p, operations)
}

// ExecuteOperationsAll applies operations to each product and merges
// the results; see (*Context).ExecuteOperationsAll.
func ExecuteOperationsAll(products []*Product, operations, postOperations string) (*Product, error) {
	return Default.ExecuteOperationsAll(products, operations, postOperations)
}

// ExecuteOperations returns the result of applying operations to p as a
// new product. Without operations p itself is returned.
func (c *Context) ExecuteOperations(p *Product, operations string) (*Product, error) {
	if operations == "" {
		return p, nil
	}
	np, err := c.productToNative(p)
	if err != nil {
		return nil, err
	}
	defer np.Delete()
	if err := c.Library.ExecuteOperations(np, operations); err != nil {
		return nil, libraryError(err)
	}
	return c.productFromNative(np)
}

// ExecuteOperationsAll applies operations to each product, appends the
// non-empty results in order, applies postOperations to the merged
// product and returns it.
func (c *Context) ExecuteOperationsAll(products []*Product, operations, postOperations string) (*Product, error) {
	m := &merger{ctx: c}
	for _, p := range products {
		np, err := c.productToNative(p)
		if err != nil {
			m.release()
			return nil, err
		}
		if err := c.Library.ExecuteOperations(np, operations); err != nil {
			np.Delete()
			m.release()
			return nil, libraryError(err)
		}
		if err := m.add(np); err != nil {
			m.release()
			return nil, err
		}
	}
	return m.finish(postOperations)
}
