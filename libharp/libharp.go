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

// Package libharp is the native HARP layer: flat typed variable buffers,
// products with per-dimension-type lengths, netCDF import and export,
// product merging, the operation language and unit conversion.
// Failures are reported as *Error values carrying a numeric code.
package libharp

import (
	"github.com/sirupsen/logrus"
)

// Version is the HARP version implemented by this package.
const Version = "1.20"

// Library holds the process-wide settings of the native layer.
type Library struct {
	// Log receives debug output of import, export and operations.
	Log logrus.FieldLogger

	units           *Units
	hdf5Compression int
}

// New returns a library with the built-in unit table and no
// compression.
func New() *Library {
	return &Library{
		Log:   logrus.StandardLogger(),
		units: defaultUnits.Clone(),
	}
}

// Version returns the library version.
func (l *Library) Version() string { return Version }

// SetHDF5Compression sets the compression level (0 to 9) used when
// writing compressed products.
func (l *Library) SetHDF5Compression(level int) error {
	if level < 0 || level > 9 {
		return errorf(ErrInvalidArgument, "compression level (%d) should be in the range [0, 9]", level)
	}
	l.hdf5Compression = level
	return nil
}

// HDF5Compression returns the compression level.
func (l *Library) HDF5Compression() int { return l.hdf5Compression }

// Units returns the unit registry of the library.
func (l *Library) Units() *Units { return l.units }

// LoadUnitDefinitions adds the unit definitions in a TOML file to the
// registry.
func (l *Library) LoadUnitDefinitions(path string) error {
	if err := l.units.Load(path); err != nil {
		return err
	}
	l.Log.WithField("file", path).Debug("loaded unit definitions")
	return nil
}

// ConvertUnit converts values in place.
func (l *Library) ConvertUnit(from, to string, values []float64) error {
	return l.units.Convert(from, to, values)
}

// NewProduct returns an empty product.
func (l *Library) NewProduct() *Product { return NewProduct() }

// Append merges src into dst; see Append.
func (l *Library) Append(dst, src *Product) error { return Append(dst, src) }

// NewVariable returns a zero-filled variable; see NewVariable.
func (l *Library) NewVariable(name string, t DataType, dimType []DimensionType, dim []int) (*Variable, error) {
	return NewVariable(name, t, dimType, dim)
}
