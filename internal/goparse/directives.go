package goparse

import (
	"go/ast"
	"go/token"
	"strings"

	z "github.com/reoring/zodgen"
)

const prefix = "//zodgen:"

// directiveLine is one //zodgen:<kind> comment: an optional positional
// argument followed by key=value options and bare flags, in written order.
type directiveLine struct {
	arg    string
	tokens []z.Directive
}

// directives indexes comment directives by kind (enum, variant, record, skip).
type directives map[string]directiveLine

func parseDirectives(groups ...*ast.CommentGroup) directives {
	ds := directives{}
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			if !strings.HasPrefix(c.Text, prefix) {
				continue
			}
			fields := strings.Fields(strings.TrimPrefix(c.Text, prefix))
			if len(fields) == 0 {
				continue
			}
			kind, rest := fields[0], fields[1:]
			var line directiveLine
			for i, f := range rest {
				k, v, hasValue := strings.Cut(f, "=")
				if i == 0 && !hasValue && kind == "variant" {
					line.arg = f
					continue
				}
				line.tokens = append(line.tokens, z.Directive{Key: k, Value: strings.Trim(v, `"`)})
			}
			ds[kind] = line
		}
	}
	return ds
}

func (ds directives) has(kind string) bool {
	_, ok := ds[kind]
	return ok
}

func (ds directives) arg(kind string) string { return ds[kind].arg }

func (ds directives) opt(kind, key string) string {
	for _, t := range ds[kind].tokens {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

func (ds directives) flag(kind, name string) bool {
	for _, t := range ds[kind].tokens {
		if t.Key == name && t.Value == "" {
			return true
		}
	}
	return false
}

// engineDirectives returns the options of kind the engine interprets, in
// written order. Anything else is reported as a warning.
func (ds directives) engineDirectives(c *collector, pos token.Pos, kind string) []z.Directive {
	var out []z.Directive
	for _, t := range ds[kind].tokens {
		switch {
		case !z.IsKnownDirective(t.Key):
			c.warnf(pos, "zodgen:%s option %q is not interpreted", kind, t.Key)
		case kind == "record" && z.IsTypeLevelDirective(t.Key):
			c.warnf(pos, "zodgen:record option %q only applies to enums", t.Key)
		default:
			out = append(out, t)
		}
	}
	return out
}
