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
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// File signatures.
var (
	magicCDF  = []byte("CDF")
	magicHDF5 = []byte("\x89HDF\r\n\x1a\n")
	magicHDF4 = []byte{0x0e, 0x03, 0x13, 0x01}
)

// ingestionOptions are the key/value pairs of an option string such as
// "compression=gzip;foo=bar".
type ingestionOptions map[string]string

// supportedOptions lists the option names the importer understands.
var supportedOptions = map[string]bool{"compression": true}

func parseIngestionOptions(s string) (ingestionOptions, error) {
	opts := make(ingestionOptions)
	for _, field := range strings.Split(s, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		i := strings.IndexByte(field, '=')
		if i <= 0 {
			return nil, errorf(ErrIngestionOptionSyntax, "syntax error in ingestion option '%s'", field)
		}
		key := strings.TrimSpace(field[:i])
		value := strings.Trim(strings.TrimSpace(field[i+1:]), `"'`)
		if !validName(key) || value == "" {
			return nil, errorf(ErrIngestionOptionSyntax, "syntax error in ingestion option '%s'", field)
		}
		if !supportedOptions[key] {
			return nil, errorf(ErrInvalidIngestionOption, "ingestion option '%s' is not supported", key)
		}
		if _, ok := opts[key]; ok {
			return nil, errorf(ErrIngestionOptionSyntax, "ingestion option '%s' given more than once", key)
		}
		opts[key] = value
	}
	return opts, nil
}

// source is an opened product file, decompressed if needed.
type source struct {
	file        *os.File
	data        []byte
	compression Compression
	magic       []byte
}

// Close releases the file handle.
func (s *source) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// readerAt returns random access to the uncompressed content.
func (s *source) readerAt() *memFileOrFile {
	if s.data != nil {
		return &memFileOrFile{mem: &memFile{buf: s.data}}
	}
	return &memFileOrFile{file: s.file}
}

// memFileOrFile serves reads from memory or from the file.
type memFileOrFile struct {
	mem  *memFile
	file *os.File
}

func (m *memFileOrFile) ReadAt(p []byte, off int64) (int, error) {
	if m.mem != nil {
		return m.mem.ReadAt(p, off)
	}
	return m.file.ReadAt(p, off)
}

func (m *memFileOrFile) WriteAt(p []byte, off int64) (int, error) {
	if m.mem != nil {
		return m.mem.WriteAt(p, off)
	}
	return 0, errorf(ErrFileWrite, "product file is opened read-only")
}

// openSource opens filename and unwraps its compression container.
func openSource(filename string, opts ingestionOptions) (*source, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return nil, errorf(ErrFileNotFound, "could not find '%s'", filename)
		}
		return nil, errorf(ErrFileOpen, "could not open '%s' (%v)", filename, err)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errorf(ErrFileOpen, "could not open '%s' (%v)", filename, err)
	}
	s := &source{file: f}
	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, errorf(ErrFileRead, "could not read '%s' (%v)", filename, err)
	}
	head = head[:n]
	s.compression = sniffCompression(head)
	if name, ok := opts["compression"]; ok {
		if s.compression, err = ParseCompression(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	if s.compression == CompressionNone {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, errorf(ErrFileRead, "could not read '%s' (%v)", filename, err)
		}
		s.magic = head
		return s, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, errorf(ErrFileRead, "could not read '%s' (%v)", filename, err)
	}
	data, err := decompress(f, s.compression)
	f.Close()
	s.file = nil
	if err != nil {
		return nil, errorf(ErrFileRead, "could not decompress '%s' as %s (%v)", filename, s.compression, err)
	}
	s.data = data
	s.magic = data
	if len(s.magic) > 8 {
		s.magic = s.magic[:8]
	}
	return s, nil
}

// readProduct decodes the content of s by its file signature.
func readProduct(filename string, s *source) (*Product, error) {
	switch {
	case bytes.HasPrefix(s.magic, magicCDF):
		return readNetCDF(s.readerAt())
	case bytes.HasPrefix(s.magic, magicHDF5):
		if s.data != nil {
			return readNetCDF4(readSeekCloser{bytes.NewReader(s.data)})
		}
		f, err := os.Open(filename)
		if err != nil {
			return nil, errorf(ErrFileOpen, "could not open '%s' (%v)", filename, err)
		}
		p, err := readNetCDF4(f)
		if err != nil {
			f.Close()
		}
		return p, err
	case bytes.HasPrefix(s.magic, magicHDF4):
		return nil, errorf(ErrNoHDF4Support, "could not import '%s' (HARP was built without HDF4 support)", filename)
	}
	return nil, errorf(ErrUnsupportedProduct, "unsupported file format for '%s'", filename)
}

// Import reads a HARP product from filename, applies the ingestion
// options and then runs operations on the result.
func (l *Library) Import(filename, operations, options string) (*Product, error) {
	log := l.Log.WithFields(logrus.Fields{"file": filename, "step": "import"})
	opts, err := parseIngestionOptions(options)
	if err != nil {
		return nil, err
	}
	var prog *Program
	if operations != "" {
		if prog, err = ParseOperations(operations); err != nil {
			return nil, err
		}
	}
	s, err := openSource(filename, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	log.WithField("compression", s.compression.String()).Debug("reading product")

	p, err := readProduct(filename, s)
	if err != nil {
		return nil, err
	}
	if err := p.Verify(); err != nil {
		p.Delete()
		return nil, errorf(ErrImport, "product '%s' is invalid (%v)", filename, err)
	}
	if p.SourceProduct == "" {
		p.SourceProduct = filepath.Base(filename)
	}
	if prog != nil {
		if err := l.execute(p, prog); err != nil {
			p.Delete()
			return nil, err
		}
	}
	log.WithField("variables", len(p.Variables)).Debug("imported product")
	return p, nil
}
