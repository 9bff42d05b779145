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

	"github.com/spatialmodel/harp/libharp"
)

// DimensionType tags one axis of a variable.
type DimensionType string

// The dimension tags. Independent axes are untagged.
const (
	Independent DimensionType = ""
	Time        DimensionType = "time"
	Latitude    DimensionType = "latitude"
	Longitude   DimensionType = "longitude"
	Vertical    DimensionType = "vertical"
	Spectral    DimensionType = "spectral"
)

var dimensionCodes = map[DimensionType]int{
	Independent: int(libharp.Independent),
	Time:        int(libharp.Time),
	Latitude:    int(libharp.Latitude),
	Longitude:   int(libharp.Longitude),
	Vertical:    int(libharp.Vertical),
	Spectral:    int(libharp.Spectral),
}

var dimensionNames = map[int]DimensionType{
	int(libharp.Independent): Independent,
	int(libharp.Time):        Time,
	int(libharp.Latitude):    Latitude,
	int(libharp.Longitude):   Longitude,
	int(libharp.Vertical):    Vertical,
	int(libharp.Spectral):    Spectral,
}

func (d DimensionType) String() string {
	if d == Independent {
		return "independent"
	}
	return string(d)
}

// DimensionCode returns the native code of a dimension tag.
func DimensionCode(d DimensionType) (int, error) {
	code, ok := dimensionCodes[d]
	if !ok {
		return 0, &UnsupportedDimensionError{Message: fmt.Sprintf("unsupported dimension '%s'", string(d))}
	}
	return code, nil
}

// DimensionName returns the dimension tag of a native code.
func DimensionName(code int) (DimensionType, error) {
	d, ok := dimensionNames[code]
	if !ok {
		return "", &UnsupportedDimensionError{Message: fmt.Sprintf("unsupported dimension type code '%d'", code)}
	}
	return d, nil
}

// ParseDimensionType returns the tag named s. Both "" and
// "independent" name the untagged dimension.
func ParseDimensionType(s string) (DimensionType, error) {
	if s == "independent" {
		return Independent, nil
	}
	d := DimensionType(s)
	if _, err := DimensionCode(d); err != nil {
		return "", err
	}
	return d, nil
}
