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
	"bytes"
	"io"
	"math"

	"github.com/ctessum/cdf"
)

// ProductMetadata summarizes a product file without reading its data.
type ProductMetadata struct {
	Filename      string
	Format        string
	DatetimeStart float64
	DatetimeStop  float64
	Dimension     [NumDimensionTypes]int
	SourceProduct string
	History       string
}

// ImportMetadata reads the global attributes and dimension lengths of a
// product file. The datetime range comes from the datetime_start and
// datetime_stop attributes, or else from the datetime variables; it is
// -Inf/+Inf when neither exists.
func (l *Library) ImportMetadata(filename, options string) (*ProductMetadata, error) {
	opts, err := parseIngestionOptions(options)
	if err != nil {
		return nil, err
	}
	s, err := openSource(filename, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	switch {
	case bytes.HasPrefix(s.magic, magicCDF):
	case bytes.HasPrefix(s.magic, magicHDF5):
		return nil, errorf(ErrImport, "extraction of global attributes not yet supported for HDF5")
	case bytes.HasPrefix(s.magic, magicHDF4):
		return nil, errorf(ErrNoHDF4Support, "could not import '%s' (HARP was built without HDF4 support)", filename)
	default:
		return nil, errorf(ErrUnsupportedProduct, "unsupported file format for '%s'", filename)
	}

	ra := s.readerAt()
	h, err := cdf.ReadHeader(io.NewSectionReader(ra, 0, 1<<31))
	if err != nil {
		return nil, errorf(ErrNetCDF, "could not read netCDF header of '%s' (%v)", filename, err)
	}
	if err := checkConventions(attributeString(h, "", "Conventions")); err != nil {
		return nil, err
	}
	m := &ProductMetadata{
		Filename:      filename,
		Format:        "netCDF",
		DatetimeStart: math.Inf(-1),
		DatetimeStop:  math.Inf(1),
		SourceProduct: attributeString(h, "", "source_product"),
		History:       attributeString(h, "", "history"),
	}
	names, lengths := h.Dimensions(""), h.Lengths("")
	for i, name := range names {
		if dt := dimensionTypeForName(name); dt != Independent {
			m.Dimension[dt] = lengths[i]
		}
	}
	start, okStart := attributeFloat64(h.GetAttribute("", "datetime_start"))
	stop, okStop := attributeFloat64(h.GetAttribute("", "datetime_stop"))
	if okStart && okStop {
		m.DatetimeStart, m.DatetimeStop = start, stop
		return m, nil
	}
	// Fall back to the datetime variables.
	p, err := readNetCDF(ra)
	if err != nil {
		return nil, err
	}
	defer p.Delete()
	if start, stop, err := p.DatetimeRange(); err == nil {
		m.DatetimeStart, m.DatetimeStop = start, stop
	}
	return m, nil
}
