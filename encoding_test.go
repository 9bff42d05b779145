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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoding(t *testing.T) {
	c, _ := newTestContext()
	assert.Equal(t, "ascii", c.Encoding())

	_, err := c.variableToNative("x", NewVariable("café"))
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "ascii", ee.Encoding)
	assert.False(t, ee.Decode)

	require.NoError(t, c.SetEncoding("UTF-8"))
	assert.Equal(t, "utf-8", c.Encoding())
	got := roundTrip(t, c, NewVariable("café"))
	assert.Equal(t, "café", got.Data)

	require.NoError(t, c.SetEncoding("ISO-8859-1"))
	assert.Equal(t, "ISO-8859-1", c.Encoding())
	nv, err := c.variableToNative("x", NewVariable([]string{"café"}, Time))
	require.NoError(t, err)
	assert.Equal(t, []string{"caf\xe9"}, nv.Data.Strings())
	back, err := c.variableFromNative(nv)
	require.NoError(t, err)
	assert.Equal(t, []string{"café"}, back.Data.(*Array).Elements)

	_, err = c.variableToNative("x", NewVariable("€"))
	assert.ErrorAs(t, err, &ee)

	// Byte strings are passed on as they are.
	nv, err = c.variableToNative("x", NewVariable([]byte("\xff")))
	require.NoError(t, err)
	assert.Equal(t, []string{"\xff"}, nv.Data.Strings())

	assert.Error(t, c.SetEncoding("klingon"))
	assert.Equal(t, "ISO-8859-1", c.Encoding(), "a failed change keeps the encoding")

	require.NoError(t, c.SetEncoding("ascii"))
	_, err = c.decode("\xe9")
	require.ErrorAs(t, err, &ee)
	assert.True(t, ee.Decode)
}

func TestDefaultEncoding(t *testing.T) {
	defer func() { require.NoError(t, SetEncoding(DefaultEncoding)) }()
	assert.Equal(t, "ascii", GetEncoding())
	require.NoError(t, SetEncoding("windows-1252"))
	assert.Equal(t, "windows-1252", GetEncoding())
}
