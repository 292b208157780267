package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a mapping key set twice in a YAML manifest.
type DuplicateKeyError struct {
	Key       string
	Line      int
	Col       int
	FirstLine int
	FirstCol  int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%d:%d: key %q already set at %d:%d", e.Line, e.Col, e.Key, e.FirstLine, e.FirstCol)
}

// yamlDocuments decodes every non-empty document of a YAML stream into
// map[string]any, []any and scalar values. Aliases are expanded; duplicate
// keys, non-scalar keys and merge keys are errors.
func yamlDocuments(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := plain(&doc)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
}

func plain(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return plain(n.Content[0])
	case yaml.AliasNode:
		return plain(n.Alias)
	case yaml.MappingNode:
		return mapping(n)
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := plain(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("%d:%d: unexpected YAML node", n.Line, n.Column)
}

func mapping(n *yaml.Node) (map[string]any, error) {
	m := make(map[string]any, len(n.Content)/2)
	seen := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch {
		case k.Kind != yaml.ScalarNode:
			return nil, fmt.Errorf("%d:%d: mapping keys must be scalars", k.Line, k.Column)
		case k.ShortTag() == "!!merge":
			return nil, fmt.Errorf("%d:%d: merge keys are not supported", k.Line, k.Column)
		}
		if first, dup := seen[k.Value]; dup {
			return nil, &DuplicateKeyError{Key: k.Value, Line: k.Line, Col: k.Column, FirstLine: first.Line, FirstCol: first.Column}
		}
		seen[k.Value] = k
		val, err := plain(v)
		if err != nil {
			return nil, err
		}
		m[k.Value] = val
	}
	return m, nil
}

// scalar keeps strings raw so type expressions such as Option<u32> are not
// reinterpreted.
func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!str":
		return n.Value, nil
	case "!!null":
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("%d:%d: %w", n.Line, n.Column, err)
	}
	return v, nil
}
