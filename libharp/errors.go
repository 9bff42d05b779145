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
	"errors"
	"fmt"
)

// Error codes reported by the native layer. Zero means success.
const (
	ErrOutOfMemory = -1

	ErrHDF4          = -10
	ErrNoHDF4Support = -11
	ErrHDF5          = -12
	ErrNoHDF5Support = -13
	ErrNetCDF        = -14

	ErrFileNotFound = -20
	ErrFileOpen     = -21
	ErrFileClose    = -22
	ErrFileRead     = -23
	ErrFileWrite    = -24

	ErrInvalidArgument      = -100
	ErrInvalidIndex         = -101
	ErrInvalidName          = -102
	ErrInvalidFormat        = -103
	ErrInvalidDatetime      = -104
	ErrInvalidType          = -105
	ErrArrayNumDimsMismatch = -106
	ErrArrayOutOfBounds     = -107
	ErrVariableNotFound     = -108

	ErrUnitConversion = -200

	ErrOperation       = -300
	ErrOperationSyntax = -301

	ErrImport = -400
	ErrExport = -401

	ErrIngestion                = -500
	ErrIngestionOptionSyntax    = -501
	ErrInvalidIngestionOption   = -502
	ErrInvalidProduct           = -503
	ErrUnsupportedProduct       = -504
	ErrInvalidVariable          = -505
	ErrNoData                   = -506
	ErrInvalidIngestionOptValue = -507
)

var errorMessages = map[int]string{
	ErrOutOfMemory:              "not enough memory",
	ErrHDF4:                     "HDF4 error",
	ErrNoHDF4Support:            "HDF4 is not supported",
	ErrHDF5:                     "HDF5 error",
	ErrNoHDF5Support:            "HDF5 is not supported",
	ErrNetCDF:                   "netCDF error",
	ErrFileNotFound:             "file not found",
	ErrFileOpen:                 "could not open file",
	ErrFileClose:                "could not close file",
	ErrFileRead:                 "could not read from file",
	ErrFileWrite:                "could not write to file",
	ErrInvalidArgument:          "invalid argument",
	ErrInvalidIndex:             "invalid index argument",
	ErrInvalidName:              "invalid name",
	ErrInvalidFormat:            "invalid format in argument",
	ErrInvalidDatetime:          "invalid date/time argument",
	ErrInvalidType:              "invalid type",
	ErrArrayNumDimsMismatch:     "incorrect number of dimensions argument",
	ErrArrayOutOfBounds:         "array index out of bounds",
	ErrVariableNotFound:         "variable not found",
	ErrUnitConversion:           "unit conversion error",
	ErrOperation:                "operation error",
	ErrOperationSyntax:          "syntax error in operation",
	ErrImport:                   "import error",
	ErrExport:                   "export error",
	ErrIngestion:                "ingestion error",
	ErrIngestionOptionSyntax:    "syntax error in ingestion option",
	ErrInvalidIngestionOption:   "invalid ingestion option",
	ErrInvalidProduct:           "invalid product",
	ErrUnsupportedProduct:       "unsupported product",
	ErrInvalidVariable:          "invalid variable",
	ErrNoData:                   "product contains no data",
	ErrInvalidIngestionOptValue: "invalid ingestion option value",
}

// Error is a failure reported by the native layer. It carries a numeric
// code and a message describing the failure at the moment it happened.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return ErrorMessage(e.Code)
	}
	return e.Message
}

// ErrorMessage returns the generic description of an error code.
func ErrorMessage(code int) string {
	if code == 0 {
		return "success (no error)"
	}
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error (%d)", code)
}

// Errno returns the code of the native error wrapped in err, 0 for a nil
// error and ErrInvalidArgument for errors that did not originate here.
func Errno(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInvalidArgument
}

func errorf(code int, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
