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
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spatialmodel/harp"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DumpOptions control the output of Dump.
type DumpOptions struct {
	// Format is text (the default), json or yaml.
	Format string

	// List limits the output to the variable names.
	List bool

	// Data includes the variable data.
	Data bool

	// Checksum includes the digest of each variable.
	Checksum bool

	Import harp.ImportOptions
}

type dumpVariable struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Dimension   []string    `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Shape       []int       `json:"shape,omitempty" yaml:"shape,omitempty"`
	Unit        string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	ValidMin    interface{} `json:"valid_min,omitempty" yaml:"valid_min,omitempty"`
	ValidMax    interface{} `json:"valid_max,omitempty" yaml:"valid_max,omitempty"`
	Enum        []string    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Checksum    string      `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Data        interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

type dumpProduct struct {
	SourceProduct string         `json:"source_product,omitempty" yaml:"source_product,omitempty"`
	History       string         `json:"history,omitempty" yaml:"history,omitempty"`
	Variables     []dumpVariable `json:"variables" yaml:"variables"`
}

// Dump writes the contents of the product in filename to w.
func Dump(w io.Writer, ctx *harp.Context, filename string, opts DumpOptions) error {
	imp := harp.ImportOptions{Operations: opts.Import.Operations, Options: opts.Import.Options}
	p, err := ctx.Import(filename, imp)
	if err != nil {
		return err
	}
	var checksums map[string]string
	if opts.Checksum {
		if checksums, err = variableChecksums(ctx, filename, imp); err != nil {
			return err
		}
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return dumpText(w, p, checksums, opts)
	case "json":
		b, err := json.MarshalIndent(newDumpProduct(p, checksums, opts), "", "  ")
		if err != nil {
			return fmt.Errorf("harp: dump: %v", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case "yaml":
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(newDumpProduct(p, checksums, opts)); err != nil {
			return fmt.Errorf("harp: dump: %v", err)
		}
		return e.Close()
	}
	return fmt.Errorf("harp: invalid dump format '%s'", opts.Format)
}

// variableChecksums imports the native form of filename and returns the
// digest of each variable by name.
func variableChecksums(ctx *harp.Context, filename string, imp harp.ImportOptions) (map[string]string, error) {
	np, err := ctx.Library.Import(filename, imp.Operations, imp.Options)
	if err != nil {
		return nil, fmt.Errorf("harp: %v", err)
	}
	defer np.Delete()
	sums := make(map[string]string, len(np.Variables))
	for _, v := range np.Variables {
		sums[v.Name] = fmt.Sprintf("%016x", v.Checksum())
	}
	return sums, nil
}

func dumpText(w io.Writer, p *harp.Product, checksums map[string]string, opts DumpOptions) error {
	if opts.List {
		for _, name := range p.Names() {
			fmt.Fprintln(w, name)
		}
		return nil
	}
	fmt.Fprint(w, p.String())
	if opts.Checksum {
		fmt.Fprintln(w)
		for _, name := range p.Names() {
			fmt.Fprintf(w, "%s  %s\n", checksums[name], name)
		}
	}
	if opts.Data {
		p.Range(func(name string, v *harp.Variable) bool {
			fmt.Fprintf(w, "\n%s:\n", name)
			for _, line := range strings.Split(strings.TrimSuffix(v.String(), "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
			return true
		})
	}
	return nil
}

func newDumpProduct(p *harp.Product, checksums map[string]string, opts DumpOptions) *dumpProduct {
	d := &dumpProduct{
		SourceProduct: p.SourceProduct,
		History:       p.History,
		Variables:     []dumpVariable{},
	}
	p.Range(func(name string, v *harp.Variable) bool {
		dv := dumpVariable{Name: name}
		if opts.List {
			d.Variables = append(d.Variables, dv)
			return true
		}
		if t, err := v.DataType(); err == nil {
			dv.Type = t.String()
		}
		for _, dim := range v.Dimension {
			dv.Dimension = append(dv.Dimension, dim.String())
		}
		if a, ok := v.Data.(*harp.Array); ok && len(v.Dimension) > 0 {
			dv.Shape = a.Shape
		}
		dv.Unit = v.Unit
		dv.Description = v.Description
		dv.ValidMin = finite(v.ValidMin)
		dv.ValidMax = finite(v.ValidMax)
		dv.Enum = v.Enum
		dv.Checksum = checksums[name]
		if opts.Data {
			if a, ok := v.Data.(*harp.Array); ok {
				dv.Data = finite(a.Elements)
			} else {
				dv.Data = finite(v.Data)
			}
		}
		d.Variables = append(d.Variables, dv)
		return true
	})
	return d
}

// finite replaces NaN and infinite floating point values, which JSON
// cannot hold, by nil. Slices of floats become []interface{}.
func finite(x interface{}) interface{} {
	switch f := x.(type) {
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
		return f
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case []float32, []float64:
		rv := reflect.ValueOf(f)
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = finite(rv.Index(i).Interface())
		}
		return out
	}
	return x
}
