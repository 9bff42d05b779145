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
	"os"

	"github.com/sirupsen/logrus"
)

// Export writes p to filename in the given format. Only "netcdf" (the
// default) can be written. A file name ending in .gz, .zst or .lz4 is
// written compressed at the configured compression level.
func (l *Library) Export(filename, format string, p *Product) error {
	log := l.Log.WithFields(logrus.Fields{"file": filename, "step": "export"})
	switch format {
	case "", "netcdf":
	case "hdf4":
		return errorf(ErrNoHDF4Support, "could not export '%s' (HARP was built without HDF4 support)", filename)
	case "hdf5":
		return errorf(ErrNoHDF5Support, "could not export '%s' (HARP was built without HDF5 write support)", filename)
	default:
		return errorf(ErrInvalidFormat, "unsupported export format '%s'", format)
	}
	if p == nil {
		return errorf(ErrInvalidArgument, "product is empty (NULL)")
	}
	if err := p.Verify(); err != nil {
		return errorf(ErrExport, "could not export '%s' (%v)", filename, err)
	}

	var mem memFile
	if err := writeNetCDF(&mem, p); err != nil {
		return err
	}
	c := CompressionForFile(filename)
	log.WithFields(logrus.Fields{"compression": c.String(), "bytes": len(mem.buf)}).Debug("writing product")

	f, err := os.Create(filename)
	if err != nil {
		return errorf(ErrFileOpen, "could not create '%s' (%v)", filename, err)
	}
	w, err := compress(f, c, l.hdf5Compression)
	if err == nil {
		_, err = w.Write(mem.buf)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errorf(ErrFileClose, "could not close '%s' (%v)", filename, cerr)
	}
	if err != nil {
		os.Remove(filename)
		if Errno(err) == ErrFileClose {
			return err
		}
		return errorf(ErrFileWrite, "could not write '%s' (%v)", filename, err)
	}
	return nil
}
