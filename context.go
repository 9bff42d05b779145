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
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp/libharp"
	"golang.org/x/text/encoding"
)

// Library is the native call boundary. *libharp.Library implements it.
// Every native product returned to the caller is owned by the caller
// until it is deleted or handed to Append as its source.
type Library interface {
	Version() string
	NewProduct() *libharp.Product
	NewVariable(name string, t libharp.DataType, dimType []libharp.DimensionType, dim []int) (*libharp.Variable, error)
	Import(filename, operations, options string) (*libharp.Product, error)
	ImportMetadata(filename, options string) (*libharp.ProductMetadata, error)
	Export(filename, format string, p *libharp.Product) error
	ExecuteOperations(p *libharp.Product, operations string) error
	Append(dst, src *libharp.Product) error
	ConvertUnit(from, to string, values []float64) error
	SetHDF5Compression(level int) error
}

// Context holds the settings used to convert products at the native
// boundary. A Context may be shared once configured.
type Context struct {
	Library Library
	Log     logrus.FieldLogger

	encoding string
	codec    encoding.Encoding
	now      func() time.Time
}

// NewContext returns a context using lib with the default encoding.
func NewContext(lib Library) *Context {
	return &Context{
		Library:  lib,
		Log:      logrus.StandardLogger(),
		encoding: DefaultEncoding,
		now:      time.Now,
	}
}

// Default is the context used by the package level functions.
var Default = NewContext(libharp.New())

// SetEncoding sets the encoding of the default context.
func SetEncoding(name string) error { return Default.SetEncoding(name) }

// GetEncoding returns the encoding of the default context.
func GetEncoding() string { return Default.Encoding() }

// Version returns the version of the native library.
func Version() string { return Default.Library.Version() }

// updateHistory appends a line recording command to the product history.
func (c *Context) updateHistory(p *Product, command string) {
	line := c.now().UTC().Format("2006-01-02T15:04:05Z") + " [harp-" + c.Library.Version() + "] " + command
	if p.History == "" {
		p.History = line
		return
	}
	p.History += "\n" + line
}
