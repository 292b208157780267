package zodgen

// Directive keys understood by the engine. Other keys are carried through
// descriptors untouched and ignored here.
const (
	DirectiveRename   = "rename"
	DirectiveTag      = "tag"
	DirectiveContent  = "content"
	DirectiveUntagged = "untagged"
)

// Directive is one key/value entry attached to a type, variant, or field.
// Presence-only directives (untagged) leave Value empty.
type Directive struct {
	Key   string
	Value string
}

// Rename builds a rename directive.
func Rename(name string) Directive { return Directive{Key: DirectiveRename, Value: name} }

// Tag builds a tag directive.
func Tag(key string) Directive { return Directive{Key: DirectiveTag, Value: key} }

// Content builds a content directive.
func Content(key string) Directive { return Directive{Key: DirectiveContent, Value: key} }

// UntaggedDirective builds an untagged directive.
func UntaggedDirective() Directive { return Directive{Key: DirectiveUntagged} }

// IsKnownDirective reports whether key is interpreted by the engine.
func IsKnownDirective(key string) bool {
	switch key {
	case DirectiveRename, DirectiveTag, DirectiveContent, DirectiveUntagged:
		return true
	}
	return false
}

// IsTypeLevelDirective reports whether key only has meaning on a type.
func IsTypeLevelDirective(key string) bool {
	switch key {
	case DirectiveTag, DirectiveContent, DirectiveUntagged:
		return true
	}
	return false
}

func lookup(ds []Directive, key string) (string, bool) {
	for _, d := range ds {
		if d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// ResolveRename returns the first rename value.
func ResolveRename(ds []Directive) (string, bool) { return lookup(ds, DirectiveRename) }

// ResolveTag returns the first tag value.
func ResolveTag(ds []Directive) (string, bool) { return lookup(ds, DirectiveTag) }

// ResolveContent returns the first content value.
func ResolveContent(ds []Directive) (string, bool) { return lookup(ds, DirectiveContent) }

// HasUntagged reports whether an untagged directive is present.
func HasUntagged(ds []Directive) bool {
	_, ok := lookup(ds, DirectiveUntagged)
	return ok
}

// DirectiveSet is the typed table built once from a raw directive list.
type DirectiveSet struct {
	Rename     string
	HasRename  bool
	Tag        string
	HasTag     bool
	Content    string
	HasContent bool
	Untagged   bool
}

// ParseDirectives resolves every known key of ds. The first occurrence of a
// key wins.
func ParseDirectives(ds []Directive) DirectiveSet {
	var s DirectiveSet
	s.Rename, s.HasRename = ResolveRename(ds)
	s.Tag, s.HasTag = ResolveTag(ds)
	s.Content, s.HasContent = ResolveContent(ds)
	s.Untagged = HasUntagged(ds)
	return s
}

// NameOr returns the rename value when present, else logical.
func (s DirectiveSet) NameOr(logical string) string {
	if s.HasRename {
		return s.Rename
	}
	return logical
}
