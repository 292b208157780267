package manifest

import (
	"fmt"
	"strings"

	z "github.com/reoring/zodgen"
	"github.com/reoring/zodgen/primitive"
)

// Scope classifies bare names while parsing a type expression.
type Scope struct {
	// Params are the generic parameters of the enclosing type.
	Params []string
	// Declared reports whether a name refers to a descriptor.
	Declared func(name string) bool
}

// ParseType parses a source-level type expression into a TypeRef. Accepted
// forms: Name, Name<A, B>, Name[A, B], (A, B), (), []T, [T], [T; N], *T, &T,
// map[K]V and interface{}. A bare name resolves to a type parameter first,
// then to a declared descriptor, then to the primitive mapping.
func ParseType(expr string, sc Scope) (z.TypeRef, error) {
	p := &typeParser{src: expr, sc: sc}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos:], p.pos, expr)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
	sc  Scope
}

func (p *typeParser) skip() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) eat(tok string) bool {
	p.skip()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.eat(tok) {
		return fmt.Errorf("expected %q at offset %d in %q", tok, p.pos, p.src)
	}
	return nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *typeParser) parse() (z.TypeRef, error) {
	p.skip()
	switch {
	case p.eat("[]"):
		inner, err := p.parse()
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "[]", Args: []z.TypeRef{inner}}, nil
	case p.eat("*"):
		inner, err := p.parse()
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "*", Args: []z.TypeRef{inner}}, nil
	case p.eat("&"):
		// References serialize as their pointee; drop an optional lifetime.
		if p.eat("'") {
			p.ident()
		}
		p.eat("mut ")
		return p.parse()
	case p.eat("("):
		items, trailing, err := p.list(")")
		if err != nil {
			return nil, err
		}
		switch {
		case len(items) == 0:
			return z.Prim{Name: "()"}, nil
		case len(items) == 1 && !trailing:
			return items[0], nil
		}
		return z.Prim{Name: "tuple", Args: items}, nil
	case p.eat("["):
		inner, err := p.parse()
		if err != nil {
			return nil, err
		}
		if p.eat(";") {
			p.skip()
			for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
				p.pos++
			}
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return z.Prim{Name: "Vec", Args: []z.TypeRef{inner}}, nil
	case p.eat("map["):
		k, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		v, err := p.parse()
		if err != nil {
			return nil, err
		}
		return z.Prim{Name: "map", Args: []z.TypeRef{k, v}}, nil
	}

	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unexpected end of %q", p.src)
		}
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos], p.pos, p.src)
	}
	if name == "interface" && p.eat("{}") {
		name = "interface{}"
	}
	var args []z.TypeRef
	switch {
	case p.eat("<"):
		xs, _, err := p.list(">")
		if err != nil {
			return nil, err
		}
		args = xs
	case p.eat("["):
		xs, _, err := p.list("]")
		if err != nil {
			return nil, err
		}
		args = xs
	}
	return p.classify(name, args)
}

func (p *typeParser) ident() string {
	p.skip()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// list parses comma separated types up to closing. trailing reports a comma
// right before closing, which makes (T,) a one-element tuple.
func (p *typeParser) list(closing string) ([]z.TypeRef, bool, error) {
	var out []z.TypeRef
	if p.eat(closing) {
		return out, false, nil
	}
	for {
		t, err := p.parse()
		if err != nil {
			return nil, false, err
		}
		out = append(out, t)
		if p.eat(closing) {
			return out, false, nil
		}
		if err := p.expect(","); err != nil {
			return nil, false, err
		}
		if p.eat(closing) {
			return out, true, nil
		}
	}
}

func (p *typeParser) classify(name string, args []z.TypeRef) (z.TypeRef, error) {
	if len(args) == 0 {
		for _, tp := range p.sc.Params {
			if tp == name {
				return z.Param{Name: name}, nil
			}
		}
	}
	if p.sc.Declared != nil && p.sc.Declared(name) {
		return z.Named{Name: name, Args: args}, nil
	}
	if primitive.IsKnown(name) {
		return z.Prim{Name: name, Args: args}, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
