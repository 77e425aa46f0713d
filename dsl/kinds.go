package dsl

import (
	"regexp"
	"sort"

	js "github.com/reoring/fluentschema/jsonschema"
)

// Node is a kind without keywords of its own: boolean, null, enum, const,
// the combinators and the unconstrained schema.
type Node[T any] struct{ core[T, Node[T]] }

func wrapNode[T any](n node) Node[T] { return Node[T]{core[T, Node[T]]{n: n}} }

func (Node[T]) from(n node) Node[T] { return wrapNode[T](n) }

// As sets the type keyword.
func (s Node[T]) As(t js.Type) Node[T] { return s.wrap(s.n.set(js.KeyType, string(t))) }

// StringSchema describes strings.
type StringSchema struct{ core[string, StringSchema] }

func wrapString(n node) StringSchema { return StringSchema{core[string, StringSchema]{n: n}} }

func (StringSchema) from(n node) StringSchema { return wrapString(n) }

// MinLength sets minLength; n must not be negative.
func (s StringSchema) MinLength(n int) StringSchema {
	if n < 0 {
		return s.wrap(s.n.fail("MinLength", "negative length %d", n))
	}
	return s.wrap(s.n.set(js.KeyMinLength, n))
}

// MaxLength sets maxLength; n must not be negative.
func (s StringSchema) MaxLength(n int) StringSchema {
	if n < 0 {
		return s.wrap(s.n.fail("MaxLength", "negative length %d", n))
	}
	return s.wrap(s.n.set(js.KeyMaxLength, n))
}

// Pattern sets the pattern keyword verbatim. A malformed expression surfaces
// as a schema compile error at validation time.
func (s StringSchema) Pattern(expr string) StringSchema { return s.wrap(s.n.set(js.KeyPattern, expr)) }

var leadingFlags = regexp.MustCompile(`^\(\?[imsU]+\)`)

// PatternRegexp sets pattern to re's source text with a leading inline flag
// group such as (?i) removed; JSON Schema patterns carry no flags.
func (s StringSchema) PatternRegexp(re *regexp.Regexp) StringSchema {
	if re == nil {
		return s.wrap(s.n.fail("PatternRegexp", "nil regexp"))
	}
	return s.Pattern(leadingFlags.ReplaceAllString(re.String(), ""))
}

// Format sets format. Unknown names fail at compile time.
func (s StringSchema) Format(name string) StringSchema { return s.wrap(s.n.set(js.KeyFormat, name)) }

// ContentMediaType sets contentMediaType.
func (s StringSchema) ContentMediaType(mt string) StringSchema {
	return s.wrap(s.n.set(js.KeyContentMediaType, mt))
}

// ContentEncoding sets contentEncoding.
func (s StringSchema) ContentEncoding(enc string) StringSchema {
	return s.wrap(s.n.set(js.KeyContentEncoding, enc))
}

// NumberSchema describes numbers (N=float64) or integers (N=int64).
//
// The inclusive and exclusive form of a bound are mutually exclusive: setting
// one removes the other.
type NumberSchema[N int64 | float64] struct{ core[N, NumberSchema[N]] }

func wrapNumber[N int64 | float64](n node) NumberSchema[N] {
	return NumberSchema[N]{core[N, NumberSchema[N]]{n: n}}
}

func (NumberSchema[N]) from(n node) NumberSchema[N] { return wrapNumber[N](n) }

// Minimum sets an inclusive lower bound.
func (s NumberSchema[N]) Minimum(v N) NumberSchema[N] {
	return s.wrap(s.n.unset(js.KeyExclusiveMinimum).set(js.KeyMinimum, v))
}

// ExclusiveMinimum sets an exclusive lower bound.
func (s NumberSchema[N]) ExclusiveMinimum(v N) NumberSchema[N] {
	return s.wrap(s.n.unset(js.KeyMinimum).set(js.KeyExclusiveMinimum, v))
}

// Maximum sets an inclusive upper bound.
func (s NumberSchema[N]) Maximum(v N) NumberSchema[N] {
	return s.wrap(s.n.unset(js.KeyExclusiveMaximum).set(js.KeyMaximum, v))
}

// ExclusiveMaximum sets an exclusive upper bound.
func (s NumberSchema[N]) ExclusiveMaximum(v N) NumberSchema[N] {
	return s.wrap(s.n.unset(js.KeyMaximum).set(js.KeyExclusiveMaximum, v))
}

// MultipleOf sets multipleOf; v must be greater than 0.
func (s NumberSchema[N]) MultipleOf(v N) NumberSchema[N] {
	if v <= 0 {
		return s.wrap(s.n.fail("MultipleOf", "must be greater than 0, got %v", v))
	}
	return s.wrap(s.n.set(js.KeyMultipleOf, v))
}

// ArraySchema describes arrays of E. The element type is declarative only:
// Items accepts any Builder.
type ArraySchema[E any] struct{ core[[]E, ArraySchema[E]] }

func wrapArray[E any](n node) ArraySchema[E] {
	return ArraySchema[E]{core[[]E, ArraySchema[E]]{n: n}}
}

func (ArraySchema[E]) from(n node) ArraySchema[E] { return wrapArray[E](n) }

// Items validates every element against b.
func (s ArraySchema[E]) Items(b Builder) ArraySchema[E] {
	n, doc, ok := s.n.embed("Items", b)
	if !ok {
		return s.wrap(n)
	}
	return s.wrap(n.set(js.KeyItems, doc))
}

// TupleItems validates elements positionally.
func (s ArraySchema[E]) TupleItems(bs ...Builder) ArraySchema[E] {
	n, docs, ok := s.n.embedAll("TupleItems", bs)
	if !ok {
		return s.wrap(n)
	}
	return s.wrap(n.set(js.KeyItems, docs))
}

// AdditionalItems allows or forbids elements beyond a tuple.
func (s ArraySchema[E]) AdditionalItems(allowed bool) ArraySchema[E] {
	return s.wrap(s.n.set(js.KeyAdditionalItems, allowed))
}

// AdditionalItemsSchema validates elements beyond a tuple against b.
func (s ArraySchema[E]) AdditionalItemsSchema(b Builder) ArraySchema[E] {
	n, doc, ok := s.n.embed("AdditionalItemsSchema", b)
	if !ok {
		return s.wrap(n)
	}
	return s.wrap(n.set(js.KeyAdditionalItems, doc))
}

// Contains requires at least one element to match b.
func (s ArraySchema[E]) Contains(b Builder) ArraySchema[E] {
	n, doc, ok := s.n.embed("Contains", b)
	if !ok {
		return s.wrap(n)
	}
	return s.wrap(n.set(js.KeyContains, doc))
}

func (s ArraySchema[E]) MinItems(n int) ArraySchema[E] {
	if n < 0 {
		return s.wrap(s.n.fail("MinItems", "negative count %d", n))
	}
	return s.wrap(s.n.set(js.KeyMinItems, n))
}

func (s ArraySchema[E]) MaxItems(n int) ArraySchema[E] {
	if n < 0 {
		return s.wrap(s.n.fail("MaxItems", "negative count %d", n))
	}
	return s.wrap(s.n.set(js.KeyMaxItems, n))
}

// UniqueItems sets uniqueItems.
func (s ArraySchema[E]) UniqueItems(unique bool) ArraySchema[E] {
	return s.wrap(s.n.set(js.KeyUniqueItems, unique))
}

// Props maps property names (or patterns) to schemas. Entries are applied in
// sorted key order.
type Props map[string]Builder

func (p Props) keys() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ObjectSchema describes objects decoded as T.
type ObjectSchema[T any] struct{ core[T, ObjectSchema[T]] }

func wrapObject[T any](n node) ObjectSchema[T] {
	return ObjectSchema[T]{core[T, ObjectSchema[T]]{n: n}}
}

func (ObjectSchema[T]) from(n node) ObjectSchema[T] { return wrapObject[T](n) }

// Prop adds or replaces property name. A required b appends name to
// required unless it is already listed; an optional b never removes it.
func (s ObjectSchema[T]) Prop(name string, b Builder) ObjectSchema[T] {
	n, doc, ok := s.n.embed("Prop", b)
	if !ok {
		return s.wrap(n)
	}
	props, _ := n.doc.Doc(js.KeyProperties)
	n = n.set(js.KeyProperties, props.With(name, doc))
	if b.IsRequired() {
		req := requiredOf(n.doc)
		if !containsString(req, name) {
			n = n.set(js.KeyRequired, append(req[:len(req):len(req)], name))
		}
	}
	return s.wrap(n)
}

// AdditionalProperties allows or forbids properties not named by Prop or
// PatternProperties.
func (s ObjectSchema[T]) AdditionalProperties(allowed bool) ObjectSchema[T] {
	return s.wrap(s.n.set(js.KeyAdditionalProperties, allowed))
}

// AdditionalPropertiesSchema validates unlisted properties against b.
func (s ObjectSchema[T]) AdditionalPropertiesSchema(b Builder) ObjectSchema[T] {
	n, doc, ok := s.n.embed("AdditionalPropertiesSchema", b)
	if !ok {
		return s.wrap(n)
	}
	return s.wrap(n.set(js.KeyAdditionalProperties, doc))
}

// PropertyNames validates every property name against names.
func (s ObjectSchema[T]) PropertyNames(names StringSchema) ObjectSchema[T] {
	n, doc, _ := s.n.embed("PropertyNames", names)
	return s.wrap(n.set(js.KeyPropertyNames, doc))
}

func (s ObjectSchema[T]) MinProperties(n int) ObjectSchema[T] {
	if n < 0 {
		return s.wrap(s.n.fail("MinProperties", "negative count %d", n))
	}
	return s.wrap(s.n.set(js.KeyMinProperties, n))
}

func (s ObjectSchema[T]) MaxProperties(n int) ObjectSchema[T] {
	if n < 0 {
		return s.wrap(s.n.fail("MaxProperties", "negative count %d", n))
	}
	return s.wrap(s.n.set(js.KeyMaxProperties, n))
}

// PatternProperties replaces patternProperties.
func (s ObjectSchema[T]) PatternProperties(props Props) ObjectSchema[T] {
	n := s.n
	var out js.Document
	for _, k := range props.keys() {
		var (
			doc js.Document
			ok  bool
		)
		n, doc, ok = n.embed("PatternProperties", props[k])
		if !ok {
			return s.wrap(n)
		}
		out = out.With(k, doc)
	}
	return s.wrap(n.set(js.KeyPatternProperties, out))
}

// Dependencies replaces dependencies. Each value is either a []string of
// sibling names that become required, or a Builder the whole object must
// satisfy when the key is present.
func (s ObjectSchema[T]) Dependencies(deps map[string]any) ObjectSchema[T] {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n := s.n
	var out js.Document
	for _, k := range keys {
		switch v := deps[k].(type) {
		case []string:
			out = out.With(k, append([]string(nil), v...))
		case Builder:
			var (
				doc js.Document
				ok  bool
			)
			n, doc, ok = n.embed("Dependencies", v)
			if !ok {
				return s.wrap(n)
			}
			out = out.With(k, doc)
		default:
			return s.wrap(n.fail("Dependencies", "%q: want []string or Builder, got %T", k, v))
		}
	}
	return s.wrap(n.set(js.KeyDependencies, out))
}

// Require replaces the required list. With no names the keyword is removed.
func (s ObjectSchema[T]) Require(names ...string) ObjectSchema[T] {
	if len(names) == 0 {
		return s.wrap(s.n.unset(js.KeyRequired))
	}
	var req []string
	for _, name := range names {
		if !containsString(req, name) {
			req = append(req, name)
		}
	}
	return s.wrap(s.n.set(js.KeyRequired, req))
}

// Partial removes required from this object and from every object-typed
// property below it, at any depth. The properties themselves are kept.
func (s ObjectSchema[T]) Partial() ObjectSchema[T] {
	n := s.n
	n.doc = stripRequired(n.doc)
	return s.wrap(n)
}

func stripRequired(d js.Document) js.Document {
	d = d.Without(js.KeyRequired)
	props, ok := d.Doc(js.KeyProperties)
	if !ok {
		return d
	}
	out := props
	props.Range(func(k string, v any) bool {
		if pd, ok := v.(js.Document); ok && isObjectType(pd) {
			out = out.With(k, stripRequired(pd))
		}
		return true
	})
	return d.With(js.KeyProperties, out)
}

func isObjectType(d js.Document) bool {
	t, _ := d.Get(js.KeyType)
	switch v := t.(type) {
	case string:
		return v == string(js.TypeObject)
	case js.Type:
		return v == js.TypeObject
	}
	return false
}

func requiredOf(d js.Document) []string {
	v, _ := d.Get(js.KeyRequired)
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
