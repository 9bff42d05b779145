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
	"math"
	"time"
)

// The datetimes reported for an unbounded metadata range.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// datetimeEpoch is the origin of native datetime values, which count
// days.
var datetimeEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Metadata describes a product file without its data.
type Metadata struct {
	Filename      string
	DatetimeStart time.Time
	DatetimeStop  time.Time

	// Dimension lengths.
	Time, Latitude, Longitude, Vertical, Spectral int

	Format        string
	SourceProduct string
	History       string
}

// datetime converts days since 2000-01-01 into a time; infinite values
// map to MinTime and MaxTime.
func datetime(days float64) time.Time {
	switch {
	case math.IsInf(days, -1) || math.IsNaN(days):
		return MinTime
	case math.IsInf(days, 1):
		return MaxTime
	}
	return datetimeEpoch.Add(time.Duration(math.Round(days * 24 * float64(time.Hour))))
}

// ImportMetadata reads the metadata of one file; see
// (*Context).ImportMetadata.
func ImportMetadata(filename, options string) (*Metadata, error) {
	return Default.ImportMetadata(filename, options)
}

// ImportMetadataAll reads the metadata of every file matching pattern.
func ImportMetadataAll(pattern, options string) ([]*Metadata, error) {
	return Default.ImportMetadataAll(pattern, options)
}

// ImportMetadata reads the metadata of filename. A pattern must match
// exactly one file.
func (c *Context) ImportMetadata(filename, options string) (*Metadata, error) {
	if isPattern(filename) {
		all, err := c.ImportMetadataAll(filename, options)
		if err != nil {
			return nil, err
		}
		if len(all) > 1 {
			return nil, errorf("'%s' matches %d files; use ImportMetadataAll", filename, len(all))
		}
		return all[0], nil
	}
	return c.importMetadata(filename, options)
}

func (c *Context) importMetadata(filename, options string) (*Metadata, error) {
	m, err := c.Library.ImportMetadata(filename, options)
	if err != nil {
		return nil, libraryError(err)
	}
	md := &Metadata{
		DatetimeStart: datetime(m.DatetimeStart),
		DatetimeStop:  datetime(m.DatetimeStop),
		Time:          m.Dimension[0],
		Latitude:      m.Dimension[1],
		Longitude:     m.Dimension[2],
		Vertical:      m.Dimension[3],
		Spectral:      m.Dimension[4],
	}
	for _, s := range []struct {
		dst *string
		src string
	}{
		{&md.Filename, m.Filename},
		{&md.Format, m.Format},
		{&md.SourceProduct, m.SourceProduct},
		{&md.History, m.History},
	} {
		if *s.dst, err = c.decode(s.src); err != nil {
			return nil, err
		}
	}
	return md, nil
}

// ImportMetadataAll reads the metadata of every file matching pattern,
// in sorted order.
func (c *Context) ImportMetadataAll(pattern, options string) ([]*Metadata, error) {
	files := []string{pattern}
	if isPattern(pattern) {
		var err error
		if files, err = glob(pattern); err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, &NoFilesError{Pattern: pattern}
		}
	}
	out := make([]*Metadata, len(files))
	for i, f := range files {
		m, err := c.importMetadata(f, options)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
