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
	"fmt"
	"strings"

	"github.com/spatialmodel/harp/libharp"
)

// Error is a failure detected by this package. Err holds the underlying
// failure, if any.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return "harp: " + e.Message }

func (e *Error) Unwrap() error { return e.Err }

func errorf(format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// LibraryError is a failure reported by the native layer, with the code
// and message it reported at the moment of failure.
type LibraryError struct {
	Code    int
	Message string
	Err     error
}

func (e *LibraryError) Error() string { return "harp: " + e.Message }

func (e *LibraryError) Unwrap() error { return e.Err }

// libraryError wraps err, returned by a Library call, as a
// *LibraryError.
func libraryError(err error) error {
	if err == nil {
		return nil
	}
	return &LibraryError{Code: libharp.Errno(err), Message: err.Error(), Err: err}
}

// UnsupportedTypeError reports a value that no wire type can represent.
type UnsupportedTypeError struct {
	Message string
}

func (e *UnsupportedTypeError) Error() string { return "harp: " + e.Message }

// UnsupportedDimensionError reports an unknown dimension name or code.
type UnsupportedDimensionError struct {
	Message string
}

func (e *UnsupportedDimensionError) Error() string { return "harp: " + e.Message }

// NoDataError reports an import that yields no usable variables.
type NoDataError struct{}

func (e *NoDataError) Error() string {
	return "harp: product contains no variables, or variables without data"
}

// NoFilesError reports a file pattern that matches nothing.
type NoFilesError struct {
	Pattern string
}

func (e *NoFilesError) Error() string {
	return fmt.Sprintf("harp: no files matching '%s'", e.Pattern)
}

// MissingVariableError reports a variable absent from one of the
// products being concatenated.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("harp: not all products contain variable '%s'", e.Name)
}

// EncodingError reports text that cannot be converted under the active
// encoding.
type EncodingError struct {
	Encoding string
	Text     string
	Decode   bool
}

func (e *EncodingError) Error() string {
	if e.Decode {
		return fmt.Sprintf("harp: cannot decode %q using encoding '%s'", e.Text, e.Encoding)
	}
	return fmt.Sprintf("harp: cannot encode %q using encoding '%s'", e.Text, e.Encoding)
}

// message returns the text of err without the package prefix.
func message(err error) string {
	return strings.TrimPrefix(err.Error(), "harp: ")
}
