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
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container a product file is wrapped in.
type Compression int

// Supported containers.
const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

var compressionNames = []string{"none", "gzip", "zstd", "lz4"}

func (c Compression) String() string { return compressionNames[c] }

// ParseCompression returns the container with the given name.
func ParseCompression(name string) (Compression, error) {
	for i, n := range compressionNames {
		if n == name {
			return Compression(i), nil
		}
	}
	return 0, errorf(ErrInvalidIngestionOptValue, "invalid compression '%s' (expected one of %s)",
		name, strings.Join(compressionNames, ", "))
}

// CompressionForFile returns the container implied by the file name
// extension.
func CompressionForFile(filename string) Compression {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		return CompressionGzip
	case ".zst":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	}
	return CompressionNone
}

// sniffCompression recognizes a container by its magic bytes.
func sniffCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, []byte{0x1f, 0x8b}):
		return CompressionGzip
	case bytes.HasPrefix(header, []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return CompressionZstd
	case bytes.HasPrefix(header, []byte{0x04, 0x22, 0x4d, 0x18}):
		return CompressionLZ4
	}
	return CompressionNone
}

// decompress returns the full uncompressed content of r.
func decompress(r io.Reader, c Compression) ([]byte, error) {
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case CompressionZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return io.ReadAll(d)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(r))
	}
	return io.ReadAll(r)
}

var lz4Levels = []lz4.CompressionLevel{lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}

// compress wraps w in the given container. Level 0 selects the default
// level of the codec; 1 to 9 trade speed for size.
func compress(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderLevel(zstd.SpeedDefault)}
		if level > 0 {
			opts = []zstd.EOption{zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level))}
		}
		return zstd.NewWriter(w, opts...)
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
			return nil, err
		}
		return zw, nil
	}
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// memFile is an in-memory io.ReaderAt and io.WriterAt.
type memFile struct {
	buf []byte
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	return copy(m.buf[off:], p), nil
}

// readSeekCloser adapts a bytes.Reader to the file interface expected by
// the netCDF-4 reader.
type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }
