package jsonschema

import (
	"sort"
)

// Document is an immutable, key-ordered JSON Schema fragment.
//
// Every modifier returns a new Document; the receiver is never changed. Nested
// values are shared between documents, so callers must not mutate slices or
// maps they put into or read out of a Document.
//
// The zero value is an empty document.
type Document struct {
	keys []string
	vals map[string]any
}

// FromMap builds a Document from a plain map. Keys are sorted so the result is
// deterministic; nested maps become nested Documents.
func FromMap(m map[string]any) Document {
	if len(m) == 0 {
		return Document{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := Document{keys: keys, vals: make(map[string]any, len(m))}
	for _, k := range keys {
		d.vals[k] = normalize(m[k])
	}
	return d
}

// Len returns the number of keys.
func (d Document) Len() int { return len(d.keys) }

// IsEmpty reports whether the document has no keys.
func (d Document) IsEmpty() bool { return len(d.keys) == 0 }

// Keys returns the keys in insertion order.
func (d Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d.vals[key]
	return ok
}

// Doc returns the nested Document stored under key, if any.
func (d Document) Doc(key string) (Document, bool) {
	v, ok := d.vals[key].(Document)
	return v, ok
}

// Range calls fn for every entry in order until fn returns false.
func (d Document) Range(fn func(key string, v any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.vals[k]) {
			return
		}
	}
}

// With returns a copy of d with key set to v. An existing key keeps its
// position.
func (d Document) With(key string, v any) Document {
	out := d.clone(1)
	if _, ok := out.vals[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.vals[key] = normalize(v)
	return out
}

// Without returns a copy of d with the given keys removed.
func (d Document) Without(keys ...string) Document {
	drop := false
	for _, k := range keys {
		if d.Has(k) {
			drop = true
			break
		}
	}
	if !drop {
		return d
	}
	out := Document{keys: make([]string, 0, len(d.keys)), vals: make(map[string]any, len(d.vals))}
	for _, k := range d.keys {
		if contains(keys, k) {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = d.vals[k]
	}
	return out
}

// Merge returns d overlaid with o, last write wins per key. Keys already in d
// keep their position; keys new to d are appended in o's order.
func (d Document) Merge(o Document) Document {
	if o.IsEmpty() {
		return d
	}
	if d.IsEmpty() {
		return o
	}
	out := d.clone(o.Len())
	for _, k := range o.keys {
		if _, ok := out.vals[k]; !ok {
			out.keys = append(out.keys, k)
		}
		out.vals[k] = o.vals[k]
	}
	return out
}

// Map renders the document as plain Go values: nested documents become
// map[string]any and every slice becomes []any.
func (d Document) Map() map[string]any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = plain(d.vals[k])
	}
	return out
}

func (d Document) clone(extra int) Document {
	out := Document{
		keys: make([]string, len(d.keys), len(d.keys)+extra),
		vals: make(map[string]any, len(d.vals)+extra),
	}
	copy(out.keys, d.keys)
	for k, v := range d.vals {
		out.vals[k] = v
	}
	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case *Document:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}

func plain(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Map()
	case []Document:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = d.Map()
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
