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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spatialmodel/harp/libharp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	c, lib := newTestContext()
	p := timeSeries("temperature", "K", 280, 290, 300)
	p.History = "created"

	filename := filepath.Join(dir, "out.nc.gz")
	require.NoError(t, c.Export(p, filename, ExportOptions{Operations: "temperature > 285", HDF5Compression: 6}))
	assert.Equal(t, []float64{280, 290, 300}, variableData(t, p, "temperature"), "p keeps its data")
	line := "2026-10-19T12:00:00Z [harp-" + libharp.Version + "] harp.export_product('" + filename +
		"', operations='temperature > 285')"
	assert.Equal(t, "created\n"+line, p.History)

	got, err := c.Import(filename, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []float64{290, 300}, variableData(t, got, "temperature"))
	assert.Equal(t, p.History, got.History)
	assert.Empty(t, lib.live())
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()
	c, lib := newTestContext()
	p := timeSeries("temperature", "K", 280)
	var le *LibraryError

	err := c.Export(p, filepath.Join(dir, "out.hdf"), ExportOptions{Format: "hdf4"})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrNoHDF4Support, le.Code)

	err = c.Export(p, filepath.Join(dir, "out.nc"), ExportOptions{HDF5Compression: 12})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrInvalidArgument, le.Code)

	err = c.Export(p, filepath.Join(dir, "out.nc"), ExportOptions{Operations: "keep("})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrOperationSyntax, le.Code)

	assert.Error(t, c.Export(nil, filepath.Join(dir, "out.nc"), ExportOptions{}))

	require.NoError(t, p.Set("bad", NewVariable([]float64{1, 2})))
	err = c.Export(p, filepath.Join(dir, "out.nc"), ExportOptions{})
	assert.EqualError(t, err, "harp: variable 'bad' could not be exported (size of data must be 1 for a scalar)")

	_, statErr := os.Stat(filepath.Join(dir, "out.nc"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, lib.live())
}

func TestImportMetadata(t *testing.T) {
	dir := t.TempDir()
	p := timeSeries("temperature", "K", 280, 290)
	dt := NewVariable([]float64{0.5, 1.5}, Time)
	dt.Unit = "days since 2000-01-01"
	require.NoError(t, p.Set("datetime", dt))
	require.NoError(t, p.Set("altitude", NewVariable(&Array{Shape: []int{2, 3}, Elements: make([]float64, 6)}, Time, Vertical)))
	p.SourceProduct = "L2.nc"
	p.History = "created"
	first := writeProduct(t, dir, "first.nc", p)
	second := writeProduct(t, dir, "second.nc", timeSeries("temperature", "K", 1))

	c, _ := newTestContext()
	m, err := c.ImportMetadata(first, "")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{
		Filename:      first,
		DatetimeStart: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		DatetimeStop:  time.Date(2000, 1, 2, 12, 0, 0, 0, time.UTC),
		Time:          2,
		Vertical:      3,
		Format:        "netCDF",
		SourceProduct: "L2.nc",
		History:       "created",
	}, m)

	m, err = c.ImportMetadata(second, "")
	require.NoError(t, err)
	assert.Equal(t, MinTime, m.DatetimeStart)
	assert.Equal(t, MaxTime, m.DatetimeStop)

	all, err := c.ImportMetadataAll(filepath.Join(dir, "*.nc"), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first, all[0].Filename)
	assert.Equal(t, second, all[1].Filename)

	_, err = c.ImportMetadata(filepath.Join(dir, "*.nc"), "")
	assert.True(t, err != nil && strings.Contains(err.Error(), "ImportMetadataAll"), "%v", err)

	m, err = c.ImportMetadata(filepath.Join(dir, "s*.nc"), "")
	require.NoError(t, err)
	assert.Equal(t, second, m.Filename)

	var nfe *NoFilesError
	_, err = c.ImportMetadataAll(filepath.Join(dir, "*.xyz"), "")
	assert.ErrorAs(t, err, &nfe)

	var le *LibraryError
	_, err = c.ImportMetadata(filepath.Join(dir, "missing.nc"), "")
	require.ErrorAs(t, err, &le)
	assert.Equal(t, libharp.ErrFileNotFound, le.Code)
}
