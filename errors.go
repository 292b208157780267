package zodgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/zodgen/i18n"
)

// Config error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUntaggedConflict        = "untagged_conflict"
	CodeContentWithoutTag       = "content_without_tag"
	CodeInternalTagTupleVariant = "internal_tag_tuple_variant"
	CodeUnsupportedShape        = "unsupported_shape"
	CodeRecursiveType           = "recursive_type"
)

// Issue codes reported while decoding or building descriptors.
const (
	CodeInvalidType  = "invalid_type"
	CodeRequired     = "required"
	CodeUnknownKey   = "unknown_key"
	CodeDuplicateKey = "duplicate_key"
	CodeInvalidEnum  = "invalid_enum"
	CodeParseError   = "parse_error"
)

// Sentinel errors matched by errors.Is against a *ConfigError.
var (
	ErrUntaggedConflict        = errors.New("untagged conflict")
	ErrContentWithoutTag       = errors.New("content without tag")
	ErrInternalTagTupleVariant = errors.New("internal tag tuple variant")
	ErrUnsupportedShape        = errors.New("unsupported shape")
	ErrRecursiveType           = errors.New("recursive type")
)

var sentinels = map[string]error{
	CodeUntaggedConflict:        ErrUntaggedConflict,
	CodeContentWithoutTag:       ErrContentWithoutTag,
	CodeInternalTagTupleVariant: ErrInternalTagTupleVariant,
	CodeUnsupportedShape:        ErrUnsupportedShape,
	CodeRecursiveType:           ErrRecursiveType,
}

// ConfigError is a static failure of schema derivation for one type. It is
// fatal for that type; no partial schema is produced.
type ConfigError struct {
	Code    string // One of the Code* config constants.
	Type    string // Offending type name.
	Variant string // Optional: offending variant.
	Field   string // Optional: offending field.
	Detail  string // Optional: extra context (e.g. the unresolved name).
	// Via lists enclosing members, outermost first, when the failure surfaced
	// while synthesizing a nested type (e.g. ["Outer.inner"]).
	Via []string
}

// Error renders "code in Type::Variant.field: message (detail)".
func (e *ConfigError) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if loc := e.Location(); loc != "" {
		fmt.Fprintf(b, " in %s", loc)
	}
	fmt.Fprintf(b, ": %s", i18n.T(e.Code, nil))
	if e.Detail != "" {
		fmt.Fprintf(b, " (%s)", e.Detail)
	}
	if len(e.Via) > 0 {
		fmt.Fprintf(b, " via %s", strings.Join(e.Via, " > "))
	}
	return b.String()
}

// Location formats the offending member path.
func (e *ConfigError) Location() string {
	loc := e.Type
	if e.Variant != "" {
		loc += "::" + e.Variant
	}
	if e.Field != "" {
		loc += "." + e.Field
	}
	return loc
}

// Unwrap exposes the sentinel for the code so errors.Is works.
func (e *ConfigError) Unwrap() error { return sentinels[e.Code] }

// AsConfigError extracts a *ConfigError from an error using errors.As internally.
func AsConfigError(err error) (*ConfigError, bool) {
	if err == nil {
		return nil, false
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// within records the enclosing member through which a nested failure
// surfaced. The original error is not modified.
func within(err error, member string) error {
	ce, ok := err.(*ConfigError)
	if !ok {
		return err
	}
	cp := *ce
	cp.Via = append([]string{member}, ce.Via...)
	return &cp
}

// Issue represents a single descriptor decoding or building problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /types/2/variants/0).
	Code    string // One of the issue codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters for i18n and tooling.
	Params map[string]any
}

// Issues is a collection of problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /types/0/name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
