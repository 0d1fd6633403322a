// Package buildexpr parses and evaluates build-variant expressions such as
// "PROTO & ~(LITE | NOUSB)". An identifier is true when it is one of the
// selected flags.
package buildexpr

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrSyntax is returned for expressions that do not match the grammar.
var ErrSyntax = errors.New("invalid build expression")

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*`)

// Expr is a parsed expression tree.
type Expr interface {
	Eval(flags map[string]bool) bool
	String() string
}

type ident string

type not struct{ x Expr }

type and []Expr

type or []Expr

func (e ident) Eval(flags map[string]bool) bool { return flags[string(e)] }
func (e ident) String() string                  { return string(e) }

func (e not) Eval(flags map[string]bool) bool { return !e.x.Eval(flags) }
func (e not) String() string                  { return "~" + e.x.String() }

func (e and) Eval(flags map[string]bool) bool {
	for _, x := range e {
		if !x.Eval(flags) {
			return false
		}
	}
	return true
}

func (e and) String() string { return join(e, " & ") }

func (e or) Eval(flags map[string]bool) bool {
	for _, x := range e {
		if x.Eval(flags) {
			return true
		}
	}
	return false
}

func (e or) String() string { return join(e, " | ") }

func join(xs []Expr, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Parse parses an expression. The grammar is
//
//	Or      = And ('|' And)*
//	And     = Not ('&' Not)*
//	Not     = '~' Not | Primary
//	Primary = '(' Or ')' | Ident
func Parse(text string) (Expr, error) {
	p := &parser{src: text}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos:], p.pos)
	}
	return e, nil
}

// Eval parses text and evaluates it against the selected flags.
func Eval(text string, flags []string) (bool, error) {
	e, err := Parse(text)
	if err != nil {
		return false, err
	}
	set := make(map[string]bool, len(flags))
	for _, f := range flags {
		set[f] = true
	}
	return e.Eval(set), nil
}

// Validate reports whether text is a well-formed expression.
func Validate(text string) error {
	_, err := Parse(text)
	return err
}

// Identifiers returns the sorted, unique flag names used by the expression.
func Identifiers(e Expr) []string {
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case ident:
			seen[string(v)] = true
		case not:
			walk(v.x)
		case and:
			for _, x := range v {
				walk(x)
			}
		case or:
			for _, x := range v {
				walk(x)
			}
		}
	}
	walk(e)
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type parser struct {
	src string
	pos int
}

func (p *parser) skip() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) accept(c byte) bool {
	p.skip()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (Expr, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	terms := or{first}
	for p.accept('|') {
		next, err := p.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) and() (Expr, error) {
	first, err := p.not()
	if err != nil {
		return nil, err
	}
	terms := and{first}
	for p.accept('&') {
		next, err := p.not()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) not() (Expr, error) {
	if p.accept('~') {
		x, err := p.not()
		if err != nil {
			return nil, err
		}
		return not{x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	if p.accept('(') {
		e, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, fmt.Errorf("%w: missing ')' at %d", ErrSyntax, p.pos)
		}
		return e, nil
	}
	p.skip()
	m := identRe.FindString(p.src[p.pos:])
	if m == "" {
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
		}
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos:p.pos+1], p.pos)
	}
	p.pos += len(m)
	return ident(m), nil
}
