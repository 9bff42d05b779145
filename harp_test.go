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
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp/libharp"
	"github.com/stretchr/testify/require"
)

// trackingLibrary is the native library with a record of the files it
// imported and the products it handed out.
type trackingLibrary struct {
	*libharp.Library

	imports  []string
	products []*libharp.Product

	// failOn names a file whose import fails.
	failOn string
}

func newTrackingLibrary() *trackingLibrary {
	l := libharp.New()
	log := logrus.New()
	log.Out = io.Discard
	l.Log = log
	return &trackingLibrary{Library: l}
}

func (l *trackingLibrary) NewProduct() *libharp.Product {
	p := l.Library.NewProduct()
	l.products = append(l.products, p)
	return p
}

func (l *trackingLibrary) Import(filename, operations, options string) (*libharp.Product, error) {
	l.imports = append(l.imports, filepath.Base(filename))
	if l.failOn != "" && filepath.Base(filename) == l.failOn {
		return nil, &libharp.Error{Code: libharp.ErrFileRead, Message: "could not read '" + filename + "'"}
	}
	p, err := l.Library.Import(filename, operations, options)
	if p != nil {
		l.products = append(l.products, p)
	}
	return p, err
}

// live returns the products that were not deleted.
func (l *trackingLibrary) live() []*libharp.Product {
	var out []*libharp.Product
	for _, p := range l.products {
		if !p.Deleted() {
			out = append(out, p)
		}
	}
	return out
}

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func newTestContext() (*Context, *trackingLibrary) {
	lib := newTrackingLibrary()
	c := NewContext(lib)
	c.Log = lib.Log
	c.now = func() time.Time { return testNow }
	return c, lib
}

// timeSeries returns a product with one float64 variable along time.
func timeSeries(name, unit string, values ...float64) *Product {
	p := NewProduct()
	v := NewVariable(values, Time)
	v.Unit = unit
	if err := p.Set(name, v); err != nil {
		panic(err)
	}
	return p
}

// writeProduct exports p to dir/name with a context of its own.
func writeProduct(t *testing.T, dir, name string, p *Product) string {
	t.Helper()
	c, _ := newTestContext()
	filename := filepath.Join(dir, name)
	require.NoError(t, c.Export(p, filename, ExportOptions{}))
	return filename
}

// variableData returns the elements of a variable holding an *Array.
func variableData(t *testing.T, p *Product, name string) interface{} {
	t.Helper()
	v, ok := p.Get(name)
	require.True(t, ok, "product has no variable %q", name)
	a, ok := v.Data.(*Array)
	require.True(t, ok, "variable %q holds %T", name, v.Data)
	return a.Elements
}
