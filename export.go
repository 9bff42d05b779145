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
	"github.com/sirupsen/logrus"
)

// ExportOptions control an export.
type ExportOptions struct {
	// Format is "netcdf" (the default), "hdf4" or "hdf5".
	Format string

	// Operations run on the exported copy of the product.
	Operations string

	// HDF5Compression is the compression level, 0 (off) to 9, of
	// compressed output.
	HDF5Compression int
}

// Export writes p to filename; see (*Context).Export.
func Export(p *Product, filename string, opts ExportOptions) error {
	return Default.Export(p, filename, opts)
}

// Export writes p to filename. When operations are given they are
// recorded in the history of p and applied to the written copy only.
// A filename ending in .gz, .zst or .lz4 is written compressed.
func (c *Context) Export(p *Product, filename string, opts ExportOptions) error {
	if p == nil {
		return errorf("product is nil")
	}
	format := opts.Format
	if format == "" {
		format = "netcdf"
	}
	if opts.Operations != "" {
		c.updateHistory(p, "harp.export_product("+quote(filename)+", operations="+quote(opts.Operations)+")")
	}
	np, err := c.productToNative(p)
	if err != nil {
		return err
	}
	defer np.Delete()
	if opts.Operations != "" {
		if err := c.Library.ExecuteOperations(np, opts.Operations); err != nil {
			return libraryError(err)
		}
	}
	if err := c.Library.SetHDF5Compression(opts.HDF5Compression); err != nil {
		return libraryError(err)
	}
	if err := c.Library.Export(filename, format, np); err != nil {
		return libraryError(err)
	}
	c.Log.WithFields(logrus.Fields{"file": filename, "step": "export", "format": format}).Debug("exported product")
	return nil
}
