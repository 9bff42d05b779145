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

package libharp

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/harp/internal/ndarray"
	"gonum.org/v1/gonum/floats"
)

// Operation transforms a product in place.
type Operation interface {
	apply(l *Library, p *Product) error
	fmt.Stringer
}

// Program is a parsed list of operations.
type Program struct {
	ops []Operation
}

// Len returns the number of operations.
func (prog *Program) Len() int { return len(prog.ops) }

func (prog *Program) String() string {
	s := make([]string, len(prog.ops))
	for i, op := range prog.ops {
		s[i] = op.String()
	}
	return strings.Join(s, ";")
}

// ExecuteOperations parses operations and applies them to p in order.
func (l *Library) ExecuteOperations(p *Product, operations string) error {
	if p == nil {
		return errorf(ErrInvalidArgument, "product is empty (NULL)")
	}
	prog, err := ParseOperations(operations)
	if err != nil {
		return err
	}
	return l.execute(p, prog)
}

func (l *Library) execute(p *Product, prog *Program) error {
	for _, op := range prog.ops {
		l.Log.WithFields(logrus.Fields{"step": "operation", "operation": op.String()}).Debug("executing operation")
		if err := op.apply(l, p); err != nil {
			return err
		}
	}
	return nil
}

func isPattern(s string) bool { return strings.ContainsAny(s, "*?") }

// matchVariables returns the names of p's variables matched by patterns.
// A plain name that does not exist is an error.
func matchVariables(p *Product, patterns []string, verb string) (map[string]bool, error) {
	matched := make(map[string]bool)
	for _, pat := range patterns {
		if !isPattern(pat) {
			if !p.HasVariable(pat) {
				return nil, errorf(ErrOperation, "cannot %s non-existent variable '%s'", verb, pat)
			}
			matched[pat] = true
			continue
		}
		for _, v := range p.Variables {
			if ok, err := path.Match(pat, v.Name); err != nil {
				return nil, errorf(ErrOperationSyntax, "invalid pattern '%s'", pat)
			} else if ok {
				matched[v.Name] = true
			}
		}
	}
	return matched, nil
}

type keepOp struct{ patterns []string }

func (o keepOp) String() string { return "keep(" + strings.Join(o.patterns, ",") + ")" }

func (o keepOp) apply(_ *Library, p *Product) error {
	keep, err := matchVariables(p, o.patterns, "keep")
	if err != nil {
		return err
	}
	for _, name := range variableNames(p) {
		if !keep[name] {
			if err := p.RemoveVariable(name); err != nil {
				return err
			}
		}
	}
	return nil
}

type excludeOp struct{ patterns []string }

func (o excludeOp) String() string { return "exclude(" + strings.Join(o.patterns, ",") + ")" }

func (o excludeOp) apply(_ *Library, p *Product) error {
	drop, err := matchVariables(p, o.patterns, "exclude")
	if err != nil {
		return err
	}
	for _, name := range variableNames(p) {
		if drop[name] {
			if err := p.RemoveVariable(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func variableNames(p *Product) []string {
	names := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		names[i] = v.Name
	}
	return names
}

type renameOp struct{ from, to string }

func (o renameOp) String() string { return "rename(" + o.from + "," + o.to + ")" }

func (o renameOp) apply(_ *Library, p *Product) error {
	v, err := p.Variable(o.from)
	if err != nil {
		return errorf(ErrOperation, "cannot rename non-existent variable '%s'", o.from)
	}
	if o.from == o.to {
		return nil
	}
	if p.HasVariable(o.to) {
		return errorf(ErrOperation, "cannot rename variable '%s' to '%s'; variable already exists", o.from, o.to)
	}
	v.Name = o.to
	return nil
}

type deriveOp struct {
	name     string
	dataType *DataType
	dims     []DimensionType
	hasDims  bool
	unit     string
	hasUnit  bool
}

func (o deriveOp) String() string {
	s := "derive(" + o.name
	if o.dataType != nil {
		s += " " + o.dataType.String()
	}
	if o.hasDims {
		d := make([]string, len(o.dims))
		for i, dt := range o.dims {
			d[i] = dt.String()
		}
		s += " {" + strings.Join(d, ",") + "}"
	}
	if o.hasUnit {
		s += " [" + o.unit + "]"
	}
	return s + ")"
}

// apply brings an existing variable to the requested dimensions, data
// type and unit. A time axis can be added to a variable that lacks one.
func (o deriveOp) apply(l *Library, p *Product) error {
	v, err := p.Variable(o.name)
	if err != nil {
		return errorf(ErrOperation, "cannot derive variable '%s'; only existing variables can be derived", o.name)
	}
	if o.hasDims && !v.HasDimensionTypes(o.dims...) {
		if len(o.dims) == 0 || o.dims[0] != Time || v.IsTimeDependent() || !v.HasDimensionTypes(o.dims[1:]...) {
			return errorf(ErrOperation, "cannot derive variable '%s' with dimensions %s", o.name, o)
		}
		n := p.Dimension[Time]
		if n == 0 {
			n = 1
		}
		data, shape := ndarray.Broadcast(v.Data.Slice(), v.Dimension, n)
		a, err := ArrayOf(data)
		if err != nil {
			return err
		}
		v.Data, v.Dimension = a, shape
		v.DimensionType = append([]DimensionType{Time}, v.DimensionType...)
		p.resetDimensions()
	}
	if o.hasUnit && o.unit != v.Unit {
		if !v.DataType.IsNumeric() {
			return errorf(ErrOperation, "cannot convert unit of string variable '%s'", o.name)
		}
		c, err := l.units.Converter(v.Unit, o.unit)
		if err != nil {
			return err
		}
		if v.DataType != Double && v.DataType != Float {
			if err := v.ConvertDataType(Double); err != nil {
				return err
			}
		}
		for i := 0; i < v.Data.Len(); i++ {
			v.Data.SetFloat64At(i, c.Convert(v.Data.Float64At(i)))
		}
		if !v.HasDefaultValidMin() {
			v.ValidMin = ScalarOf(v.DataType, c.Convert(v.ValidMin.Float64(v.DataType)))
		}
		if !v.HasDefaultValidMax() {
			v.ValidMax = ScalarOf(v.DataType, c.Convert(v.ValidMax.Float64(v.DataType)))
		}
		v.Unit = o.unit
	}
	if o.dataType != nil {
		if err := v.ConvertDataType(*o.dataType); err != nil {
			return errorf(ErrOperation, "cannot derive variable '%s' as %s (%v)", o.name, *o.dataType, err)
		}
	}
	return nil
}

// timeVariable returns the named variable, which must be one
// dimensional along time.
func timeVariable(p *Product, name, what string) (*Variable, error) {
	v, err := p.Variable(name)
	if err != nil {
		return nil, errorf(ErrOperation, "cannot %s non-existent variable '%s'", what, name)
	}
	if !v.HasDimensionTypes(Time) {
		return nil, errorf(ErrOperation, "cannot %s variable '%s'; it should be one dimensional and depend on time",
			what, name)
	}
	return v, nil
}

// reorderTime keeps the time samples in index, in that order, for every
// time dependent variable.
func reorderTime(p *Product, index []int) error {
	for _, v := range p.Variables {
		if !v.IsTimeDependent() {
			continue
		}
		a, err := ArrayOf(ndarray.TakeAny(v.Data.Slice(), v.Dimension, index))
		if err != nil {
			return err
		}
		v.Data = a
		v.Dimension[0] = len(index)
	}
	p.resetDimensions()
	return nil
}

// filterTime keeps the time samples for which mask is true.
func filterTime(p *Product, mask []bool) error {
	index := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			index = append(index, i)
		}
	}
	if len(index) == len(mask) {
		return nil
	}
	return reorderTime(p, index)
}

// sampleValue returns sample i of v as a float64 or a string.
func sampleValue(v *Variable, i int) interface{} {
	if v.DataType == String {
		return v.Data.Strings()[i]
	}
	return v.Data.Float64At(i)
}

// filterValue converts a filter value given in unit to the unit of v.
func filterValue(l *Library, v *Variable, value interface{}, unit string) (interface{}, error) {
	switch x := value.(type) {
	case string:
		if v.DataType != String {
			return nil, errorf(ErrOperation, "cannot compare numeric variable '%s' with a string", v.Name)
		}
		if unit != "" {
			return nil, errorf(ErrOperation, "unit not allowed for string comparison on variable '%s'", v.Name)
		}
		return x, nil
	case float64:
		if v.DataType == String {
			return nil, errorf(ErrOperation, "cannot compare string variable '%s' with a number", v.Name)
		}
		if unit != "" && unit != v.Unit {
			c, err := l.units.Converter(unit, v.Unit)
			if err != nil {
				return nil, err
			}
			x = c.Convert(x)
		}
		return x, nil
	}
	return nil, errorf(ErrOperation, "invalid filter value %v", value)
}

// evaluateMask evaluates a boolean expression of x (the sample) and y
// (the filter argument) for every sample of v.
func evaluateMask(v *Variable, expression string, y interface{}) ([]bool, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, errorf(ErrOperationSyntax, "invalid filter expression '%s' (%v)", expression, err)
	}
	mask := make([]bool, v.Dimension[0])
	params := map[string]interface{}{"y": y}
	for i := range mask {
		params["x"] = sampleValue(v, i)
		r, err := expr.Evaluate(params)
		if err != nil {
			return nil, errorf(ErrOperation, "could not evaluate filter on variable '%s' (%v)", v.Name, err)
		}
		b, ok := r.(bool)
		if !ok {
			return nil, errorf(ErrOperation, "filter on variable '%s' is not a condition", v.Name)
		}
		mask[i] = b
	}
	return mask, nil
}

type comparisonFilter struct {
	name  string
	op    string
	value interface{}
	unit  string
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return strconv.FormatFloat(v.(float64), 'g', -1, 64)
}

func formatUnit(u string) string {
	if u == "" {
		return ""
	}
	return " [" + u + "]"
}

func (o comparisonFilter) String() string {
	return o.name + o.op + formatValue(o.value) + formatUnit(o.unit)
}

func (o comparisonFilter) apply(l *Library, p *Product) error {
	v, err := timeVariable(p, o.name, "filter on")
	if err != nil {
		return err
	}
	y, err := filterValue(l, v, o.value, o.unit)
	if err != nil {
		return err
	}
	mask, err := evaluateMask(v, "x "+o.op+" y", y)
	if err != nil {
		return err
	}
	return filterTime(p, mask)
}

type membershipFilter struct {
	name   string
	not    bool
	values []interface{}
	unit   string
}

func (o membershipFilter) String() string {
	s := make([]string, len(o.values))
	for i, v := range o.values {
		s[i] = formatValue(v)
	}
	op := " in "
	if o.not {
		op = " not in "
	}
	return o.name + op + "(" + strings.Join(s, ",") + ")" + formatUnit(o.unit)
}

func (o membershipFilter) apply(l *Library, p *Product) error {
	v, err := timeVariable(p, o.name, "filter on")
	if err != nil {
		return err
	}
	set := make([]interface{}, len(o.values))
	for i, x := range o.values {
		if set[i], err = filterValue(l, v, x, o.unit); err != nil {
			return err
		}
	}
	expression := "x IN y"
	if o.not {
		expression = "!(x IN y)"
	}
	mask, err := evaluateMask(v, expression, set)
	if err != nil {
		return err
	}
	return filterTime(p, mask)
}

type validFilter struct{ name string }

func (o validFilter) String() string { return "valid(" + o.name + ")" }

// apply drops time samples outside the valid range of a one dimensional
// time variable. For other floating point variables, invalid values are
// set to NaN.
func (o validFilter) apply(_ *Library, p *Product) error {
	v, err := p.Variable(o.name)
	if err != nil {
		return errorf(ErrOperation, "cannot filter on non-existent variable '%s'", o.name)
	}
	if !v.DataType.IsNumeric() {
		return errorf(ErrOperation, "cannot filter on string variable '%s'", o.name)
	}
	min, max := v.ValidMin.Float64(v.DataType), v.ValidMax.Float64(v.DataType)
	valid := func(x float64) bool { return !math.IsNaN(x) && x >= min && x <= max }
	if v.HasDimensionTypes(Time) {
		mask := make([]bool, v.Data.Len())
		for i := range mask {
			mask[i] = valid(v.Data.Float64At(i))
		}
		return filterTime(p, mask)
	}
	if v.DataType != Float && v.DataType != Double {
		return errorf(ErrOperation, "cannot filter on variable '%s'; it should be one dimensional and depend on time",
			o.name)
	}
	for i := 0; i < v.Data.Len(); i++ {
		if !valid(v.Data.Float64At(i)) {
			v.Data.SetFloat64At(i, math.NaN())
		}
	}
	return nil
}

type sortOp struct{ name string }

func (o sortOp) String() string { return "sort(" + o.name + ")" }

// apply orders the time samples by the values of a one dimensional time
// variable. Ties keep their order and NaN values go last.
func (o sortOp) apply(_ *Library, p *Product) error {
	v, err := timeVariable(p, o.name, "sort on")
	if err != nil {
		return err
	}
	index := make([]int, v.Dimension[0])
	for i := range index {
		index[i] = i
	}
	if v.DataType == String {
		s := v.Data.Strings()
		sort.SliceStable(index, func(a, b int) bool { return s[index[a]] < s[index[b]] })
	} else {
		x := v.Data.Float64s()
		sort.SliceStable(index, func(a, b int) bool {
			xa, xb := x[index[a]], x[index[b]]
			return xa < xb || (!math.IsNaN(xa) && math.IsNaN(xb))
		})
	}
	return reorderTime(p, index)
}

type binOp struct{ name string }

func (o binOp) String() string { return "bin(" + o.name + ")" }

// apply averages the time samples per bin. Without a variable, all
// samples form a single bin; otherwise samples with equal values of the
// variable share a bin, in order of first appearance. Averages are
// weighted by an existing count variable and ignore NaN values. The index
// variable and string variables are removed and a count variable holds
// the number of samples per bin.
func (o binOp) apply(_ *Library, p *Product) error {
	n := p.Dimension[Time]
	if !p.hasTimeAxis() {
		return errorf(ErrOperation, "cannot bin a product without a time dimension")
	}
	bins := make([]int, n)
	first := []int{0}
	if n == 0 {
		first = nil
	}
	if o.name != "" {
		v, err := timeVariable(p, o.name, "bin on")
		if err != nil {
			return err
		}
		seen := make(map[string]int)
		first = first[:0]
		for i := 0; i < n; i++ {
			key := fmt.Sprint(sampleValue(v, i))
			b, ok := seen[key]
			if !ok {
				b = len(first)
				seen[key] = b
				first = append(first, i)
			}
			bins[i] = b
		}
	}
	nbins := len(first)

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	if c, err := p.Variable("count"); err == nil && c.HasDimensionTypes(Time) && c.DataType.IsNumeric() {
		weights = c.Data.Float64s()
	}
	counts := make([]float64, nbins)
	for i, b := range bins {
		counts[b] += weights[i]
	}

	var drop []string
	for _, v := range p.Variables {
		if !v.IsTimeDependent() {
			continue
		}
		switch {
		case v.Name == o.name:
			a, err := ArrayOf(ndarray.TakeAny(v.Data.Slice(), v.Dimension, first))
			if err != nil {
				return err
			}
			v.Data = a
			v.Dimension[0] = nbins
		case v.Name == "index" || v.Name == "count" || v.DataType == String:
			drop = append(drop, v.Name)
		default:
			if err := binVariable(v, bins, weights, nbins); err != nil {
				return err
			}
		}
	}
	for _, name := range drop {
		if err := p.RemoveVariable(name); err != nil {
			return err
		}
	}
	p.resetDimensions()
	p.Dimension[Time] = nbins

	count, err := NewVariable("count", Int32, []DimensionType{Time}, []int{nbins})
	if err != nil {
		return err
	}
	count.Description = "number of samples per bin"
	for b, c := range counts {
		count.Data.Int32()[b] = int32(math.Round(c))
	}
	return p.AddVariable(count)
}

// binVariable replaces the data of v by weighted per-bin averages.
func binVariable(v *Variable, bins []int, weights []float64, nbins int) error {
	n := v.Dimension[0]
	inner := 1
	if n > 0 {
		inner = v.NumElements() / n
	}
	sums := sparse.ZerosDense(nbins, inner)
	total := sparse.ZerosDense(nbins, inner)
	for i := 0; i < n; i++ {
		for j := 0; j < inner; j++ {
			x := v.Data.Float64At(i*inner + j)
			if math.IsNaN(x) {
				continue
			}
			sums.AddVal(x*weights[i], bins[i], j)
			total.AddVal(weights[i], bins[i], j)
		}
	}
	if v.DataType != Float && v.DataType != Double {
		if err := v.ConvertDataType(Double); err != nil {
			return err
		}
	}
	mean := make([]float64, nbins*inner)
	floats.DivTo(mean, sums.Elements, total.Elements)
	a := NewArray(v.DataType, len(mean))
	for i, x := range mean {
		a.SetFloat64At(i, x)
	}
	v.Data = a
	v.Dimension[0] = nbins
	return nil
}
