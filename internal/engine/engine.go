package engine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	js "github.com/reoring/fluentschema/jsonschema"
)

// Options configures an Engine.
type Options struct {
	// Draft used when a document carries no $schema: "draft-04", "draft-06",
	// "draft-07" (default), "2019-09" or "2020-12".
	Draft string
	// AssertFormat makes "format" a validation keyword instead of an annotation.
	AssertFormat bool
	// AssertContent makes contentEncoding/contentMediaType validation keywords.
	AssertContent bool
	// Predicates resolves instanceOf keys. A nil registry rejects every key.
	Predicates *Registry
	// Builtins is consulted when Predicates has no entry for a key. It holds
	// predicates whose key is derived from their content, so they mean the
	// same thing under any registry.
	Builtins *Registry
}

// Engine compiles documents into validators and caches them by structural
// hash. It is safe for concurrent use.
type Engine struct {
	opt      Options
	draft    *jsonschema.Draft
	cache    sync.Map // hash -> *Compiled
	group    singleflight.Group
	compiles atomic.Int64
}

// Compiled is an executable validator for one document.
type Compiled struct {
	Key    string
	doc    js.Document
	schema *jsonschema.Schema
}

// Violation is one leaf failure reported by the underlying validator.
type Violation struct {
	InstanceLocation        string
	KeywordLocation         string
	AbsoluteKeywordLocation string
	Message                 string
}

// Error returns the validator's own message, so a Violation can serve as an
// issue cause.
func (v Violation) Error() string { return v.Message }

// Keyword returns the schema keyword that failed (last keyword path segment).
func (v Violation) Keyword() string {
	loc := v.KeywordLocation
	if i := strings.LastIndexByte(loc, '/'); i >= 0 {
		loc = loc[i+1:]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(loc)
}

// CompileError wraps a failure to turn a document into a validator.
type CompileError struct {
	Key string
	Err error
}

func (e *CompileError) Error() string { return "compile schema " + shortKey(e.Key) + ": " + e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

// New returns an Engine configured by opt.
func New(opt Options) *Engine {
	if opt.Predicates == nil {
		opt.Predicates = NewRegistry()
	}
	return &Engine{opt: opt, draft: draftFor(opt.Draft)}
}

// Predicates returns the registry the engine resolves instanceOf keys with.
func (e *Engine) Predicates() *Registry { return e.opt.Predicates }

// Compilations reports how many documents were actually compiled (cache
// misses that succeeded or failed).
func (e *Engine) Compilations() int64 { return e.compiles.Load() }

// Compile returns the cached validator for doc, compiling it on first use.
// hit reports whether the validator came from the cache. Failures are not
// cached: a later call may succeed once a missing predicate is registered.
func (e *Engine) Compile(doc js.Document) (c *Compiled, hit bool, err error) {
	key, err := doc.Hash()
	if err != nil {
		return nil, false, &CompileError{Err: err}
	}
	if v, ok := e.cache.Load(key); ok {
		return v.(*Compiled), true, nil
	}
	v, err, _ := e.group.Do(key, func() (any, error) {
		if v, ok := e.cache.Load(key); ok {
			return v, nil
		}
		c, err := e.compile(key, doc)
		if err != nil {
			return nil, err
		}
		e.cache.Store(key, c)
		return c, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Compiled), false, nil
}

func (e *Engine) compile(key string, doc js.Document) (*Compiled, error) {
	e.compiles.Add(1)
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	if err := checkFormats(doc); err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	url := "mem://fluentschema/" + key + ".json"
	c := jsonschema.NewCompiler()
	c.Draft = e.draft
	c.AssertFormat = e.opt.AssertFormat
	c.AssertContent = e.opt.AssertContent
	c.RegisterExtension(js.KeyInstanceOf, instanceOfMeta, instanceOfCompiler{reg: e.opt.Predicates, builtins: e.opt.Builtins, doc: doc})
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	return &Compiled{Key: key, doc: doc, schema: s}, nil
}

// Document returns the document the validator was compiled from.
func (c *Compiled) Document() js.Document { return c.doc }

// Validate runs the validator against a JSON value (see JSONValue). It
// returns the leaf violations, or an error when v is not a JSON value.
func (c *Compiled) Validate(v any) ([]Violation, error) {
	err := c.schema.Validate(v)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return flatten(ve, nil), nil
	}
	return nil, err
}

func flatten(ve *jsonschema.ValidationError, out []Violation) []Violation {
	if len(ve.Causes) == 0 {
		return append(out, Violation{
			InstanceLocation:        ve.InstanceLocation,
			KeywordLocation:         ve.KeywordLocation,
			AbsoluteKeywordLocation: ve.AbsoluteKeywordLocation,
			Message:                 ve.Message,
		})
	}
	for _, c := range ve.Causes {
		out = flatten(c, out)
	}
	return out
}

func draftFor(name string) *jsonschema.Draft {
	switch name {
	case "draft-04", "draft4":
		return jsonschema.Draft4
	case "draft-06", "draft6":
		return jsonschema.Draft6
	case "2019-09", "draft2019":
		return jsonschema.Draft2019
	case "2020-12", "draft2020":
		return jsonschema.Draft2020
	default:
		return jsonschema.Draft7
	}
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}

// ErrUnknownPredicate is returned at compile time for an instanceOf key that
// has no registered predicate.
var ErrUnknownPredicate = errors.New("unknown predicate")

func unknownPredicate(key string) error { return fmt.Errorf("%w %q", ErrUnknownPredicate, key) }

// ErrUnknownFormat is returned at compile time for a format name the
// validator has no checker for. Register custom names in jsonschema.Formats.
var ErrUnknownFormat = errors.New("unknown format")

// instanceKeywords hold instance data, not subschemas.
var instanceKeywords = map[string]bool{
	js.KeyEnum: true, js.KeyConst: true, js.KeyDefault: true, js.KeyExamples: true,
}

// checkFormats walks every subschema of d and rejects format names missing
// from jsonschema.Formats. Unknown names would otherwise pass silently.
func checkFormats(d js.Document) error {
	var err error
	d.Range(func(k string, v any) bool {
		if instanceKeywords[k] {
			return true
		}
		if name, ok := v.(string); ok && k == js.KeyFormat {
			if _, known := jsonschema.Formats[name]; !known {
				err = fmt.Errorf("%w %q", ErrUnknownFormat, name)
				return false
			}
			return true
		}
		err = checkFormatsIn(v)
		return err == nil
	})
	return err
}

func checkFormatsIn(v any) error {
	switch t := v.(type) {
	case js.Document:
		return checkFormats(t)
	case []js.Document:
		for _, d := range t {
			if err := checkFormats(d); err != nil {
				return err
			}
		}
	case []any:
		for _, e := range t {
			if err := checkFormatsIn(e); err != nil {
				return err
			}
		}
	}
	return nil
}
