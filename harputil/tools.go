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

package harputil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp"
)

// Convert imports the product in input and exports it to output.
func Convert(ctx *harp.Context, input, output string, imp harp.ImportOptions, exp harp.ExportOptions) error {
	p, err := ctx.Import(input, harp.ImportOptions{Operations: imp.Operations, Options: imp.Options})
	if err != nil {
		return err
	}
	if err := ctx.Export(p, output, exp); err != nil {
		return err
	}
	ctx.Log.WithFields(logrus.Fields{"input": input, "output": output}).Info("converted product")
	return nil
}

// Merge imports the products in inputs, which may contain file
// patterns, and exports their concatenation to output. It returns
// ErrEmptyMerge without writing output if no product holds data.
func Merge(ctx *harp.Context, inputs []string, output string, imp harp.ImportOptions, exp harp.ExportOptions) error {
	p, err := ctx.ImportFiles(inputs, imp)
	var nde *harp.NoDataError
	if errors.As(err, &nde) {
		ctx.Log.WithField("output", output).Warn("no input holds any data; nothing written")
		return ErrEmptyMerge
	}
	if err != nil {
		return err
	}
	if err := ctx.Export(p, output, exp); err != nil {
		return err
	}
	ctx.Log.WithFields(logrus.Fields{"inputs": len(inputs), "output": output}).Info("merged products")
	return nil
}

// readFileLists returns the file names listed in the given text files,
// one per line. Blank lines and lines starting with # are skipped.
func readFileLists(lists []string) ([]string, error) {
	var files []string
	for _, list := range lists {
		f, err := os.Open(list)
		if err != nil {
			return nil, fmt.Errorf("harp: reading file list: %v", err)
		}
		s := bufio.NewScanner(f)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			files = append(files, line)
		}
		f.Close()
		if err := s.Err(); err != nil {
			return nil, fmt.Errorf("harp: reading file list '%s': %v", list, err)
		}
	}
	return files, nil
}

// Check imports each file and writes one line per file to w telling
// whether it is a valid product. It fails if any file is invalid.
func Check(w io.Writer, ctx *harp.Context, files []string, options string) error {
	var failed int
	for _, f := range files {
		_, err := ctx.Import(f, harp.ImportOptions{Options: options})
		var nde *harp.NoDataError
		switch {
		case err == nil:
			fmt.Fprintf(w, "%s: OK\n", f)
		case errors.As(err, &nde):
			fmt.Fprintf(w, "%s: OK (no data)\n", f)
		default:
			failed++
			fmt.Fprintf(w, "%s: ERROR %s\n", f, strings.TrimPrefix(err.Error(), "harp: "))
		}
	}
	if failed > 0 {
		return fmt.Errorf("harp: %d of %d products failed the check", failed, len(files))
	}
	return nil
}

// ConvertUnits writes each value converted from one unit to another to
// w, one per line.
func ConvertUnits(w io.Writer, ctx *harp.Context, from, to string, values []float64) error {
	out, err := ctx.ConvertUnit(from, to, values)
	if err != nil {
		return err
	}
	for _, v := range out.([]float64) {
		fmt.Fprintln(w, v)
	}
	return nil
}
