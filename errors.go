package fluentschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeDuplicateKey    = "duplicate_key"
	CodeTooSmall        = "too_small"
	CodeTooBig          = "too_big"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodeTooFew          = "too_few"
	CodeTooMany         = "too_many"
	CodePattern         = "pattern"
	CodeInvalidEnum     = "invalid_enum"
	CodeInvalidConst    = "invalid_const"
	CodeInvalidFormat   = "invalid_format"
	CodeNotMultiple     = "not_multiple"
	CodeNotUnique       = "not_unique"
	CodeNoMatch         = "no_match"
	CodeDependency      = "dependency"
	CodePredicate       = "predicate"
	CodeInvalid         = "invalid"
	CodeParseError      = "parse_error"
	CodeSchemaCompile   = "schema_compile"
	CodeInvalidArgument = "invalid_argument"
)

// Issue represents a single validation entry.
type Issue struct {
	Path       string // JSON Pointer of the instance (for example: /items/2/price).
	Keyword    string // Schema keyword that failed (minLength, required, ...).
	SchemaPath string // JSON Pointer of the keyword inside the schema.
	Code       string // One of the codes listed above.
	Message    string // Localized through the i18n package.
	Cause      error  // Optional: underlying error, or the validator's own message.
}

// Issues is a collection of validation errors that implements error.
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
		// e.g. too_short at /name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is lets errors.Is(issues, ErrValidationFailed) hold for a non-empty list.
func (iss Issues) Is(target error) bool {
	return target == ErrValidationFailed && len(iss) > 0
}

// Keywords returns the distinct failing keywords in order of first
// appearance.
func (iss Issues) Keywords() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, it := range iss {
		if _, ok := seen[it.Keyword]; ok {
			continue
		}
		seen[it.Keyword] = struct{}{}
		out = append(out, it.Keyword)
	}
	return out
}

// HasKeyword reports whether any issue failed on keyword kw.
func (iss Issues) HasKeyword(kw string) bool {
	for _, it := range iss {
		if it.Keyword == kw {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) && len(e.Issues) > 0 {
		return e.Issues, true
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// sortIssues orders issues by instance path, then keyword location, so output
// does not depend on the validator's traversal order.
func sortIssues(iss Issues) {
	sort.SliceStable(iss, func(i, j int) bool {
		if iss[i].Path != iss[j].Path {
			return iss[i].Path < iss[j].Path
		}
		return iss[i].SchemaPath < iss[j].SchemaPath
	})
}

// ErrorKind classifies failures surfaced by Ensure-style calls.
type ErrorKind int

const (
	// KindValidationFailed: the data does not satisfy the schema.
	KindValidationFailed ErrorKind = iota + 1
	// KindSchemaCompile: the document is not a valid schema for the engine.
	KindSchemaCompile
	// KindInvalidArgument: a builder method received a malformed argument.
	KindInvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidationFailed:
		return "validation_failed"
	case KindSchemaCompile:
		return "schema_compile"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by errors.Is against *Error.
var (
	ErrValidationFailed = errors.New("fluentschema: validation failed")
	ErrSchemaCompile    = errors.New("fluentschema: schema compile error")
	ErrInvalidArgument  = errors.New("fluentschema: invalid builder argument")
)

// Error is the structured error returned by Ensure and Compile.
type Error struct {
	Kind   ErrorKind
	Op     string // e.g. "Ensure", "Compile"
	Issues Issues // set for KindValidationFailed
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("fluentschema: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	switch {
	case len(e.Issues) > 0:
		b.WriteString(": ")
		b.WriteString(e.Issues.Error())
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidationFailed:
		return e.Kind == KindValidationFailed
	case ErrSchemaCompile:
		return e.Kind == KindSchemaCompile
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	}
	return false
}

// KindOf returns the ErrorKind of err, if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// ArgumentError describes one malformed builder argument.
type ArgumentError struct {
	Method string
	Reason string
}

func (e *ArgumentError) Error() string { return e.Method + ": " + e.Reason }

// Is makes every ArgumentError match ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
