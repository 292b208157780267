package zodgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/zodgen/i18n"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, hint string, kv ...any) Issue
}

// Root returns the empty JSON Pointer.
func Root() PathRef { return &pathRef{} }

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue creates an Issue at this path. kv pairs become Params; string values
// also feed message placeholders.
func (p *pathRef) Issue(code, hint string, kv ...any) Issue {
	params := map[string]any{}
	data := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		params[k] = kv[i+1]
		if s, ok := kv[i+1].(string); ok {
			data[k] = s
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, data), Hint: hint, Params: params}
}
