package dsl

import (
	"context"
	"errors"
	"fmt"

	"github.com/reoring/fluentschema"
	js "github.com/reoring/fluentschema/jsonschema"
)

// Builder is implemented by every schema kind in this package. The set of
// kinds is closed: the unexported method keeps other packages from adding
// their own.
type Builder interface {
	fluentschema.Documenter
	// Document returns the node's own document, as embedded in a parent.
	Document() js.Document
	// Definitions returns the definitions carried to the root.
	Definitions() js.Document
	// IsRequired reports whether an object registering this node as a
	// property lists it under required.
	IsRequired() bool
	// Err returns the builder argument errors collected along the chain.
	Err() error

	base() node
}

// Of is a Builder that declares the Go type T of the data it describes.
type Of[T any] interface {
	Builder
	typeMarker() *T
}

// node is the state shared by all kinds. It is a value: every method returns
// a modified copy.
type node struct {
	doc       js.Document
	defs      js.Document
	schemaURI string
	optional  bool
	errs      []error
}

func newNode(t js.Type) node {
	n := node{schemaURI: js.Draft07}
	if t != "" {
		n.doc = n.doc.With(js.KeyType, string(t))
	}
	return n
}

// copyWith overlays patch onto the document, last write wins per key.
func (n node) copyWith(patch js.Document) node {
	n.doc = n.doc.Merge(patch)
	return n
}

func (n node) set(key string, v any) node {
	n.doc = n.doc.With(key, v)
	return n
}

func (n node) unset(keys ...string) node {
	n.doc = n.doc.Without(keys...)
	return n
}

func (n node) fail(method, format string, args ...any) node {
	err := &fluentschema.ArgumentError{Method: method, Reason: fmt.Sprintf(format, args...)}
	n.errs = append(n.errs[:len(n.errs):len(n.errs)], err)
	return n
}

// embed returns b's document for use inside n. b's definitions are hoisted
// into n (n keeps its own on name conflicts) and so are its argument errors.
func (n node) embed(method string, b Builder) (node, js.Document, bool) {
	if b == nil {
		return n.fail(method, "nil schema"), js.Document{}, false
	}
	c := b.base()
	if len(c.errs) > 0 {
		n.errs = append(n.errs[:len(n.errs):len(n.errs)], c.errs...)
	}
	c.defs.Range(func(k string, v any) bool {
		if !n.defs.Has(k) {
			n.defs = n.defs.With(k, v)
		}
		return true
	})
	return n, c.doc, true
}

func (n node) embedAll(method string, bs []Builder) (node, []js.Document, bool) {
	if len(bs) == 0 {
		return n.fail(method, "at least one schema is required"), nil, false
	}
	docs := make([]js.Document, 0, len(bs))
	for _, b := range bs {
		var (
			d  js.Document
			ok bool
		)
		n, d, ok = n.embed(method, b)
		if !ok {
			return n, nil, false
		}
		docs = append(docs, d)
	}
	return n, docs, true
}

func (n node) valueOf() js.Document {
	out := n.doc
	if n.schemaURI != "" {
		out = out.With(js.KeySchema, n.schemaURI)
	}
	if !n.defs.IsEmpty() {
		out = out.With(js.KeyDefinitions, n.defs)
	}
	return out
}

// kind is implemented by every S: it rebuilds the kind around a node.
type kind[S any] interface {
	from(node) S
}

// core implements the operations every kind shares. T is the declared data
// type; S is the kind itself. The zero value of a kind is an empty schema
// without type or $schema; the factory functions set both.
type core[T any, S any] struct {
	n node
}

func (c core[T, S]) wrap(n node) S {
	var s S
	return any(s).(kind[S]).from(n)
}

// ID sets $id.
func (c core[T, S]) ID(uri string) S { return c.wrap(c.n.set(js.KeyID, uri)) }

// Ref sets $ref.
func (c core[T, S]) Ref(uri string) S { return c.wrap(c.n.set(js.KeyRef, uri)) }

// Schema sets the $schema URI emitted by ValueOf. An empty uri omits it.
func (c core[T, S]) Schema(uri string) S {
	n := c.n
	n.schemaURI = uri
	return c.wrap(n)
}

// Title sets title.
func (c core[T, S]) Title(s string) S { return c.wrap(c.n.set(js.KeyTitle, s)) }

// Description sets description.
func (c core[T, S]) Description(s string) S { return c.wrap(c.n.set(js.KeyDescription, s)) }

// Examples replaces the examples list.
func (c core[T, S]) Examples(values ...T) S { return c.wrap(c.n.set(js.KeyExamples, anySlice(values))) }

// Default sets default.
func (c core[T, S]) Default(v T) S { return c.wrap(c.n.set(js.KeyDefault, v)) }

// Definition stores b's document under definitions/name, replacing an
// existing entry of the same name.
func (c core[T, S]) Definition(name string, b Builder) S {
	if name == "" {
		return c.wrap(c.n.fail("Definition", "empty name"))
	}
	n, doc, ok := c.n.embed("Definition", b)
	if !ok {
		return c.wrap(n)
	}
	n.defs = n.defs.With(name, doc)
	return c.wrap(n)
}

// Raw merges fragment into the document, last write wins per key. It is the
// escape hatch for keywords this package does not model.
func (c core[T, S]) Raw(fragment js.Document) S { return c.wrap(c.n.copyWith(fragment)) }

// Enum restricts values to the given list; at least one is required.
func (c core[T, S]) Enum(values ...T) S {
	if len(values) == 0 {
		return c.wrap(c.n.fail("Enum", "at least one value is required"))
	}
	return c.wrap(c.n.set(js.KeyEnum, anySlice(values)))
}

// Const restricts the value to v.
func (c core[T, S]) Const(v T) S { return c.wrap(c.n.set(js.KeyConst, v)) }

// AnyOf requires at least one of bs to match.
func (c core[T, S]) AnyOf(bs ...Builder) S { return c.combine("AnyOf", js.KeyAnyOf, bs) }

// AllOf requires every one of bs to match.
func (c core[T, S]) AllOf(bs ...Builder) S { return c.combine("AllOf", js.KeyAllOf, bs) }

// OneOf requires exactly one of bs to match.
func (c core[T, S]) OneOf(bs ...Builder) S { return c.combine("OneOf", js.KeyOneOf, bs) }

func (c core[T, S]) combine(method, key string, bs []Builder) S {
	n, docs, ok := c.n.embedAll(method, bs)
	if !ok {
		return c.wrap(n)
	}
	return c.wrap(n.set(key, docs))
}

// Not requires b not to match.
func (c core[T, S]) Not(b Builder) S {
	n, doc, ok := c.n.embed("Not", b)
	if !ok {
		return c.wrap(n)
	}
	return c.wrap(n.set(js.KeyNot, doc))
}

// IfThen sets if and then.
func (c core[T, S]) IfThen(ifB, thenB Builder) S {
	n, docs, ok := c.n.embedAll("IfThen", []Builder{ifB, thenB})
	if !ok {
		return c.wrap(n)
	}
	return c.wrap(n.set(js.KeyIf, docs[0]).set(js.KeyThen, docs[1]))
}

// IfThenElse sets if, then and else.
func (c core[T, S]) IfThenElse(ifB, thenB, elseB Builder) S {
	n, docs, ok := c.n.embedAll("IfThenElse", []Builder{ifB, thenB, elseB})
	if !ok {
		return c.wrap(n)
	}
	return c.wrap(n.set(js.KeyIf, docs[0]).set(js.KeyThen, docs[1]).set(js.KeyElse, docs[2]))
}

// InstanceOf sets the instanceOf keyword to a predicate registry key. The
// key must be registered (see fluentschema.RegisterPredicate) by the time the
// schema is compiled.
func (c core[T, S]) InstanceOf(key string) S {
	if key == "" {
		return c.wrap(c.n.fail("InstanceOf", "empty predicate key"))
	}
	return c.wrap(c.n.set(js.KeyInstanceOf, key))
}

// Expr registers a CEL expression over self as a predicate and references it
// through instanceOf.
func (c core[T, S]) Expr(src string) S {
	key, err := fluentschema.Expr(src)
	if err != nil {
		return c.wrap(c.n.fail("Expr", "%v", err))
	}
	return c.wrap(c.n.set(js.KeyInstanceOf, key))
}

// Optional marks the node as not required when registered as a property.
func (c core[T, S]) Optional() S {
	n := c.n
	n.optional = true
	return c.wrap(n)
}

// Required undoes Optional.
func (c core[T, S]) Required() S {
	n := c.n
	n.optional = false
	return c.wrap(n)
}

// Document returns the node's own document without $schema or definitions.
func (c core[T, S]) Document() js.Document { return c.n.doc }

// Definitions returns the definitions hoisted to this node.
func (c core[T, S]) Definitions() js.Document { return c.n.defs }

// IsRequired reports whether Prop lists this node under required.
func (c core[T, S]) IsRequired() bool { return !c.n.optional }

// Err joins the argument errors collected along the chain.
func (c core[T, S]) Err() error { return errors.Join(c.n.errs...) }

// ValueOf returns the root document: the node's document plus $schema and
// definitions when set.
func (c core[T, S]) ValueOf() js.Document { return c.n.valueOf() }

// MarshalJSON encodes ValueOf.
func (c core[T, S]) MarshalJSON() ([]byte, error) { return c.n.valueOf().MarshalJSON() }

// MarshalYAML encodes ValueOf as an ordered mapping.
func (c core[T, S]) MarshalYAML() (any, error) { return c.n.valueOf().MarshalYAML() }

// String renders ValueOf as JSON.
func (c core[T, S]) String() string { return c.n.valueOf().String() }

// Validate checks v with the default validator. It never fails: schema
// problems are reported as issues.
func (c core[T, S]) Validate(v any) (bool, fluentschema.Issues) {
	return fluentschema.Default().Validate(context.Background(), c, v)
}

// Ensure returns v unchanged when it satisfies the schema. Otherwise it
// returns a *fluentschema.Error (see fluentschema.ErrValidationFailed).
func (c core[T, S]) Ensure(v T) (T, error) {
	if err := fluentschema.Default().Ensure(context.Background(), c, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (c core[T, S]) base() node { return c.n }

func (c core[T, S]) typeMarker() *T { return nil }

func anySlice[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
