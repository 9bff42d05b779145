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

// Package harp converts between Go representations of HARP products and
// the native HARP layer, and offers the product level operations built
// on it: import of one or many files with merging, export, metadata
// import, concatenation, operations and unit conversion.
//
// A Product is an ordered set of named Variables. Each Variable holds a
// scalar or an *Array with one dimension tag per axis. Conversion to the
// native layer picks the narrowest wire type that holds the data and its
// valid range, and text crossing the boundary is encoded with the
// encoding of the Context.
package harp
