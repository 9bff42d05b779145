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

package hash

import "testing"

type record struct {
	Name  string
	Shape []int
	Data  []float64
}

type opaque struct {
	name string
	next *opaque
}

func TestHash(t *testing.T) {
	a := record{Name: "x", Shape: []int{2}, Data: []float64{1, 2}}
	b := record{Name: "x", Shape: []int{2}, Data: []float64{1, 2}}
	if Hash(a) != Hash(b) {
		t.Errorf("equal values hash differently: %s != %s", Hash(a), Hash(b))
	}
	b.Data[1] = 3
	if Hash(a) == Hash(b) {
		t.Error("different values share a hash")
	}
	if len(Hash(a)) != 16 {
		t.Errorf("hash %q should have 16 digits", Hash(a))
	}
}

func TestHashUnexported(t *testing.T) {
	a := opaque{name: "a"}
	b := opaque{name: "b"}
	if Sum64(a) == Sum64(b) {
		t.Error("values gob cannot encode should still be distinguished")
	}
	if Sum64(a) != Sum64(opaque{name: "a"}) {
		t.Error("hash of unexported fields is not stable")
	}
}
