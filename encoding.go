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
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the text encoding of a new Context.
const DefaultEncoding = "ascii"

// SetEncoding selects the encoding of text crossing the native boundary:
// "ascii", "utf-8" or any IANA character set name such as "ISO-8859-1"
// or "windows-1252".
func (c *Context) SetEncoding(name string) error {
	switch strings.ToLower(name) {
	case "ascii", "us-ascii":
		c.encoding, c.codec = "ascii", nil
	case "utf-8", "utf8":
		c.encoding, c.codec = "utf-8", nil
	default:
		e, err := ianaindex.IANA.Encoding(name)
		if err != nil || e == nil {
			return errorf("unknown encoding '%s'", name)
		}
		c.encoding, c.codec = name, e
	}
	return nil
}

// Encoding returns the name of the active encoding.
func (c *Context) Encoding() string { return c.encoding }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// encode converts text to the byte string handed to the native layer.
func (c *Context) encode(s string) (string, error) {
	fail := &EncodingError{Encoding: c.encoding, Text: s}
	switch {
	case c.codec != nil:
		out, err := c.codec.NewEncoder().String(s)
		if err != nil {
			return "", fail
		}
		return out, nil
	case c.encoding == "utf-8":
		if !utf8.ValidString(s) {
			return "", fail
		}
	case !isASCII(s):
		return "", fail
	}
	return s, nil
}

// decode converts a native byte string to text.
func (c *Context) decode(s string) (string, error) {
	fail := &EncodingError{Encoding: c.encoding, Text: s, Decode: true}
	switch {
	case c.codec != nil:
		out, err := c.codec.NewDecoder().String(s)
		if err != nil {
			return "", fail
		}
		return out, nil
	case c.encoding == "utf-8":
		if !utf8.ValidString(s) {
			return "", fail
		}
	case !isASCII(s):
		return "", fail
	}
	return s, nil
}

// encodeElement encodes one element of string data. Byte strings are
// already encoded and pass unchanged.
func (c *Context) encodeElement(x interface{}) (string, error) {
	switch s := x.(type) {
	case string:
		return c.encode(s)
	case []byte:
		return string(s), nil
	}
	return "", &UnsupportedTypeError{Message: "string data holds a non-string element"}
}
