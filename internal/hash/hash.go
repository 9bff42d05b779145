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

// Package hash computes content digests of arbitrary values.
package hash

import (
	"encoding/gob"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/davecgh/go-spew/spew"
)

// Sum64 returns the xxhash digest of the gob encoding of object.
func Sum64(object interface{}) uint64 {
	h := xxhash.New()
	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		return h.Sum64()
	}
	// Values gob cannot encode (unexported fields, nil pointers) are
	// hashed through their spew dump instead.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return h.Sum64()
}

// Hash returns Sum64 as a 16 digit hexadecimal key.
func Hash(object interface{}) string {
	return fmt.Sprintf("%016x", Sum64(object))
}
