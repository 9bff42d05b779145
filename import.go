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
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp/libharp"
)

// ImportOptions control an import.
type ImportOptions struct {
	// Operations run on each product as part of its import.
	Operations string

	// Options are ingestion options, "key=value" pairs separated by
	// semicolons.
	Options string

	// ReduceOperations run on the merged product after each file is
	// appended to it. They bound the memory of time reductions such as
	// bin() and only apply when several files are merged.
	ReduceOperations string

	// PostOperations run once on the merged product and only apply when
	// several files are merged.
	PostOperations string
}

func isPattern(name string) bool { return strings.ContainsAny(name, "*?") }

// glob returns the sorted matches of pattern.
func glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid file pattern '%s'", pattern), Err: err}
	}
	sort.Strings(matches)
	return matches, nil
}

// resolveFiles expands the patterns among filenames and keeps the other
// entries as given.
func resolveFiles(filenames []string) ([]string, error) {
	var files []string
	for _, f := range filenames {
		if !isPattern(f) {
			files = append(files, f)
			continue
		}
		matches, err := glob(f)
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// Import reads a product from filename. A filename containing * or ? is
// a pattern: every match is imported in sorted order and the products
// are merged as by ImportFiles.
func Import(filename string, opts ImportOptions) (*Product, error) {
	return Default.Import(filename, opts)
}

// ImportFiles imports and merges several files; see (*Context).ImportFiles.
func ImportFiles(filenames []string, opts ImportOptions) (*Product, error) {
	return Default.ImportFiles(filenames, opts)
}

// Import reads a product from filename. A filename containing * or ? is
// a pattern: every match is imported in sorted order and the products
// are merged as by ImportFiles.
func (c *Context) Import(filename string, opts ImportOptions) (*Product, error) {
	if isPattern(filename) {
		files, err := glob(filename)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, &NoFilesError{Pattern: filename}
		}
		return c.importMerged(files, quote(filename), opts)
	}

	log := c.Log.WithFields(logrus.Fields{"file": filename, "step": "import"})
	np, err := c.Library.Import(filename, opts.Operations, opts.Options)
	if err != nil {
		return nil, libraryError(err)
	}
	defer np.Delete()
	if np.IsEmpty() {
		return nil, &NoDataError{}
	}
	p, err := c.productFromNative(np)
	if err != nil {
		return nil, err
	}
	if opts.Operations != "" || opts.Options != "" {
		c.updateHistory(p, importCommand(quote(filename), ImportOptions{
			Operations: opts.Operations,
			Options:    opts.Options,
		}))
	}
	log.WithField("variables", p.Len()).Debug("imported product")
	return p, nil
}

// ImportFiles imports every file in order and appends the non-empty
// products into one merged product. Entries containing * or ? are
// expanded in sorted order. ReduceOperations run after each append,
// PostOperations once at the end.
func (c *Context) ImportFiles(filenames []string, opts ImportOptions) (*Product, error) {
	files, err := resolveFiles(filenames)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoFilesError{Pattern: strings.Join(filenames, ", ")}
	}
	return c.importMerged(files, listRepr(filenames), opts)
}

func (c *Context) importMerged(files []string, source string, opts ImportOptions) (*Product, error) {
	m := &merger{ctx: c, reduce: opts.ReduceOperations}
	for _, file := range files {
		c.Log.WithFields(logrus.Fields{"file": file, "step": "import"}).Debug("importing product")
		np, err := c.Library.Import(file, opts.Operations, opts.Options)
		if err != nil {
			m.release()
			return nil, libraryError(err)
		}
		if err := m.add(np); err != nil {
			m.release()
			return nil, err
		}
	}
	p, err := m.finish(opts.PostOperations)
	if err != nil {
		return nil, err
	}
	if opts.Operations != "" || opts.Options != "" || opts.ReduceOperations != "" || opts.PostOperations != "" {
		c.updateHistory(p, importCommand(source, opts))
	}
	return p, nil
}

// merger folds native products into one accumulator. It owns the
// accumulator and every product handed to add.
type merger struct {
	ctx    *Context
	reduce string
	merged *libharp.Product
	count  int
}

// add appends np to the accumulator. Empty products are discarded; the
// first non-empty product becomes the accumulator and is appended once
// on its own so it has the merged layout.
func (m *merger) add(np *libharp.Product) error {
	lib := m.ctx.Library
	if np.IsEmpty() {
		np.Delete()
		return nil
	}
	if m.merged == nil {
		m.merged = np
		if err := lib.Append(m.merged, nil); err != nil {
			return libraryError(err)
		}
	} else {
		err := lib.Append(m.merged, np)
		np.Delete()
		if err != nil {
			return libraryError(err)
		}
	}
	m.count++
	if m.reduce != "" {
		if err := lib.ExecuteOperations(m.merged, m.reduce); err != nil {
			return libraryError(err)
		}
	}
	return nil
}

// release deletes the accumulator.
func (m *merger) release() {
	if m.merged != nil {
		m.merged.Delete()
		m.merged = nil
	}
}

// finish runs post and converts the accumulator, which it releases.
func (m *merger) finish(post string) (*Product, error) {
	if m.merged == nil {
		return nil, &NoDataError{}
	}
	defer m.release()
	if post != "" {
		if err := m.ctx.Library.ExecuteOperations(m.merged, post); err != nil {
			return nil, libraryError(err)
		}
	}
	m.ctx.Log.WithFields(logrus.Fields{"step": "merge", "products": m.count}).Debug("merged products")
	return m.ctx.productFromNative(m.merged)
}

func quote(s string) string { return "'" + s + "'" }

// listRepr formats a file list the way history lines record it.
func listRepr(filenames []string) string {
	q := make([]string, len(filenames))
	for i, f := range filenames {
		q[i] = quote(f)
	}
	return "[" + strings.Join(q, ", ") + "]"
}

// importCommand is the history line of an import.
func importCommand(source string, opts ImportOptions) string {
	command := "harp.import_product(" + source
	if opts.Operations != "" {
		command += ",operations=" + quote(opts.Operations)
	}
	if opts.Options != "" {
		command += ",options=" + quote(opts.Options)
	}
	if opts.ReduceOperations != "" {
		command += ",reduce_operations=" + quote(opts.ReduceOperations)
	}
	if opts.PostOperations != "" {
		command += ",post_operations=" + quote(opts.PostOperations)
	}
	return command + ")"
}
