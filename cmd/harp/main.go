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

// Command harp converts, merges and inspects HARP atmospheric data
// products.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/harp/harputil"
)

func main() {
	cfg := harputil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if err == harputil.ErrEmptyMerge {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
