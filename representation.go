package zodgen

import "fmt"

// EnumRepresentation is the wire encoding of a sum type: ExternallyTagged,
// InternallyTagged, AdjacentlyTagged, or Untagged.
type EnumRepresentation interface {
	representation()
	String() string
}

// ExternallyTagged wraps each payload under the variant name (default).
type ExternallyTagged struct{}

// InternallyTagged merges a Tag field into the payload object.
type InternallyTagged struct {
	Tag string
}

// AdjacentlyTagged places the tag and the payload side by side.
type AdjacentlyTagged struct {
	Tag     string
	Content string
}

// Untagged emits bare payloads with no discriminant.
type Untagged struct{}

func (ExternallyTagged) representation() {}
func (InternallyTagged) representation() {}
func (AdjacentlyTagged) representation() {}
func (Untagged) representation()         {}

func (ExternallyTagged) String() string   { return "externally tagged" }
func (r InternallyTagged) String() string { return fmt.Sprintf("internally tagged (tag=%q)", r.Tag) }
func (r AdjacentlyTagged) String() string {
	return fmt.Sprintf("adjacently tagged (tag=%q, content=%q)", r.Tag, r.Content)
}
func (Untagged) String() string { return "untagged" }

// SelectRepresentation decides the encoding from type-level directives.
// The order of checks below is the only legal tie-break.
func SelectRepresentation(ds []Directive) (EnumRepresentation, error) {
	s := ParseDirectives(ds)
	switch {
	case s.Untagged && (s.HasTag || s.HasContent):
		return nil, &ConfigError{Code: CodeUntaggedConflict}
	case s.Untagged:
		return Untagged{}, nil
	case s.HasTag && s.HasContent:
		return AdjacentlyTagged{Tag: s.Tag, Content: s.Content}, nil
	case s.HasTag:
		return InternallyTagged{Tag: s.Tag}, nil
	case s.HasContent:
		return nil, &ConfigError{Code: CodeContentWithoutTag, Detail: fmt.Sprintf("content=%q", s.Content)}
	default:
		return ExternallyTagged{}, nil
	}
}

// SelectFor selects the representation of sum and applies the
// variant-level legality rules that need no payload synthesis: an
// internally tagged type cannot have tuple variants.
func SelectFor(sum *SumType) (EnumRepresentation, error) {
	rep, err := SelectRepresentation(sum.Directives)
	if err != nil {
		ce := err.(*ConfigError)
		ce.Type = sum.Name
		return nil, ce
	}
	if _, ok := rep.(InternallyTagged); ok {
		for _, v := range sum.Variants {
			if m, ok := v.Shape.(MultiShape); ok {
				return nil, &ConfigError{
					Code:    CodeInternalTagTupleVariant,
					Type:    sum.Name,
					Variant: v.Name,
					Detail:  fmt.Sprintf("tuple variant with %d elements", len(m.Types)),
				}
			}
		}
	}
	return rep, nil
}
