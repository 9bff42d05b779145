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
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokUnit
	tokPunct
	tokOperator
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("'%s'", t.text)
}

// tokenize splits an operation string into tokens. Units are written in
// square brackets and returned without them.
func tokenize(s string) ([]token, error) {
	var out []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		start := i
		switch {
		case unicode.IsSpace(r):
			i++
			continue
		case strings.ContainsRune("(),;{}", r):
			out = append(out, token{tokPunct, string(r), start})
			i++
		case strings.ContainsRune("=!<>", r):
			i++
			if i < len(rs) && rs[i] == '=' {
				i++
			}
			op := string(rs[start:i])
			if op == "=" || op == "!" {
				return nil, errorf(ErrOperationSyntax, "invalid operator '%s' at position %d", op, start)
			}
			out = append(out, token{tokOperator, op, start})
		case r == '[':
			j := i + 1
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			if j == len(rs) {
				return nil, errorf(ErrOperationSyntax, "unterminated unit at position %d", start)
			}
			out = append(out, token{tokUnit, strings.TrimSpace(string(rs[i+1 : j])), start})
			i = j + 1
		case r == '"' || r == '\'':
			j := i + 1
			var b strings.Builder
			for ; j < len(rs) && rs[j] != r; j++ {
				if rs[j] == '\\' && j+1 < len(rs) {
					j++
				}
				b.WriteRune(rs[j])
			}
			if j == len(rs) {
				return nil, errorf(ErrOperationSyntax, "unterminated string at position %d", start)
			}
			out = append(out, token{tokString, b.String(), start})
			i = j + 1
		case unicode.IsDigit(r) || r == '.' || ((r == '-' || r == '+') && i+1 < len(rs) &&
			(unicode.IsDigit(rs[i+1]) || rs[i+1] == '.')):
			j := i + 1
			for j < len(rs) {
				c := rs[j]
				if unicode.IsDigit(c) || c == '.' {
					j++
				} else if (c == 'e' || c == 'E') && j+1 < len(rs) {
					j++
					if rs[j] == '-' || rs[j] == '+' {
						j++
					}
				} else {
					break
				}
			}
			text := string(rs[i:j])
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, errorf(ErrOperationSyntax, "invalid number '%s' at position %d", text, start)
			}
			out = append(out, token{tokNumber, text, start})
			i = j
		case unicode.IsLetter(r) || r == '_' || r == '*' || r == '?':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) ||
				rs[j] == '_' || rs[j] == '*' || rs[j] == '?') {
				j++
			}
			out = append(out, token{tokIdent, string(rs[i:j]), start})
			i = j
		default:
			return nil, errorf(ErrOperationSyntax, "invalid character '%c' at position %d", r, start)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(rs)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errorf(ErrOperationSyntax, "%s (at position %d)", fmt.Sprintf(format, args...), p.peek().pos)
}

func (p *parser) accept(kind tokenKind, text string) bool {
	t := p.peek()
	if t.kind == kind && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, text string) error {
	if !p.accept(kind, text) {
		return p.errorf("expected '%s' instead of %s", text, p.peek())
	}
	return nil
}

func (p *parser) ident() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", p.errorf("expected a name instead of %s", t)
	}
	return t.text, nil
}

// name parses a plain variable name (no wildcards).
func (p *parser) name() (string, error) {
	n, err := p.ident()
	if err != nil {
		return "", err
	}
	if !validName(n) {
		return "", p.errorf("invalid variable name '%s'", n)
	}
	return n, nil
}

func (p *parser) optionalUnit() (string, bool) {
	if t := p.peek(); t.kind == tokUnit {
		p.pos++
		return t.text, true
	}
	return "", false
}

// value parses a number or a quoted string.
func (p *parser) value() (interface{}, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return strconv.ParseFloat(t.text, 64)
	case tokString:
		return t.text, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "nan":
			return strconv.ParseFloat("NaN", 64)
		case "inf", "+inf":
			return strconv.ParseFloat("+Inf", 64)
		}
	}
	return nil, p.errorf("expected a value instead of %s", t)
}

// ParseOperations parses a semicolon separated list of operations.
func ParseOperations(s string) (*Program, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := new(Program)
	for p.peek().kind != tokEOF {
		if p.accept(tokPunct, ";") {
			continue
		}
		op, err := p.operation()
		if err != nil {
			return nil, err
		}
		prog.ops = append(prog.ops, op)
		if p.peek().kind != tokEOF {
			if err := p.expect(tokPunct, ";"); err != nil {
				return nil, err
			}
		}
	}
	return prog, nil
}

func (p *parser) operation() (Operation, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return nil, p.errorf("expected an operation instead of %s", t)
	}
	if p.toks[p.pos+1].kind == tokPunct && p.toks[p.pos+1].text == "(" {
		p.pos += 2
		switch t.text {
		case "keep", "exclude":
			return p.variableList(t.text == "keep")
		case "rename":
			return p.rename()
		case "derive":
			return p.derive()
		case "valid":
			n, err := p.name()
			if err != nil {
				return nil, err
			}
			return validFilter{name: n}, p.expect(tokPunct, ")")
		case "sort":
			n, err := p.name()
			if err != nil {
				return nil, err
			}
			return sortOp{name: n}, p.expect(tokPunct, ")")
		case "bin":
			if p.accept(tokPunct, ")") {
				return binOp{}, nil
			}
			n, err := p.name()
			if err != nil {
				return nil, err
			}
			return binOp{name: n}, p.expect(tokPunct, ")")
		}
		return nil, errorf(ErrOperationSyntax, "unknown operation '%s' (at position %d)", t.text, t.pos)
	}
	return p.filter()
}

func (p *parser) variableList(keep bool) (Operation, error) {
	var patterns []string
	for {
		n, err := p.ident()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, n)
		if p.accept(tokPunct, ")") {
			break
		}
		if err := p.expect(tokPunct, ","); err != nil {
			return nil, err
		}
	}
	if keep {
		return keepOp{patterns: patterns}, nil
	}
	return excludeOp{patterns: patterns}, nil
}

func (p *parser) rename() (Operation, error) {
	from, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokPunct, ","); err != nil {
		return nil, err
	}
	to, err := p.name()
	if err != nil {
		return nil, err
	}
	return renameOp{from: from, to: to}, p.expect(tokPunct, ")")
}

func (p *parser) derive() (Operation, error) {
	n, err := p.name()
	if err != nil {
		return nil, err
	}
	op := deriveOp{name: n}
	if t := p.peek(); t.kind == tokIdent {
		p.pos++
		dt, err := ParseDataType(t.text)
		if err != nil {
			return nil, p.errorf("invalid data type '%s'", t.text)
		}
		op.dataType = &dt
	}
	if p.accept(tokPunct, "{") {
		op.hasDims = true
		for !p.accept(tokPunct, "}") {
			if len(op.dims) > 0 {
				if err := p.expect(tokPunct, ","); err != nil {
					return nil, err
				}
			}
			d, err := p.ident()
			if err != nil {
				return nil, err
			}
			dt, err := ParseDimensionType(d)
			if err != nil {
				return nil, p.errorf("invalid dimension type '%s'", d)
			}
			op.dims = append(op.dims, dt)
		}
	}
	op.unit, op.hasUnit = p.optionalUnit()
	return op, p.expect(tokPunct, ")")
}

func (p *parser) filter() (Operation, error) {
	n, err := p.name()
	if err != nil {
		return nil, err
	}
	t := p.next()
	switch {
	case t.kind == tokOperator:
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		f := comparisonFilter{name: n, op: t.text, value: v}
		f.unit, _ = p.optionalUnit()
		return f, nil
	case t.kind == tokIdent && (t.text == "in" || t.text == "not"):
		f := membershipFilter{name: n}
		if t.text == "not" {
			f.not = true
			if err := p.expect(tokIdent, "in"); err != nil {
				return nil, err
			}
		}
		if err := p.expect(tokPunct, "("); err != nil {
			return nil, err
		}
		for {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			f.values = append(f.values, v)
			if p.accept(tokPunct, ")") {
				break
			}
			if err := p.expect(tokPunct, ","); err != nil {
				return nil, err
			}
		}
		f.unit, _ = p.optionalUnit()
		return f, nil
	}
	return nil, errorf(ErrOperationSyntax, "expected an operator instead of %s (at position %d)", t, t.pos)
}
