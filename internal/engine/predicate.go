package engine

import (
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	js "github.com/reoring/fluentschema/jsonschema"
)

// Call is the input handed to a Predicate.
type Call struct {
	// Key is the registry key the instanceOf keyword named.
	Key string
	// Value is the instance at the keyword's location, as a JSON value.
	Value any
	// Document is the full root document being validated against.
	Document js.Document
	// Path is the JSON Pointer of Value inside the validated instance.
	Path string
}

// Predicate reports whether a value satisfies a check JSON Schema cannot
// express.
type Predicate func(Call) bool

// Registry maps stable keys to predicates. Entries are never replaced or
// removed, so a key resolves to the same predicate for the life of the
// process.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Predicate
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{m: map[string]Predicate{}} }

// Register stores p under key unless the key is taken. It reports whether p
// was stored.
func (r *Registry) Register(key string, p Predicate) bool {
	if key == "" || p == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[key]; ok {
		return false
	}
	r.m[key] = p
	return true
}

// Lookup returns the predicate registered under key.
func (r *Registry) Lookup(key string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[key]
	return p, ok
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var instanceOfMeta = jsonschema.MustCompileString("fluentschema-instanceOf.json", `{
  "properties": {
    "instanceOf": {"type": "string", "minLength": 1}
  }
}`)

type instanceOfCompiler struct {
	reg      *Registry
	builtins *Registry
	doc      js.Document
}

func (c instanceOfCompiler) lookup(key string) (Predicate, bool) {
	if p, ok := c.reg.Lookup(key); ok {
		return p, true
	}
	if c.builtins != nil {
		return c.builtins.Lookup(key)
	}
	return nil, false
}

func (c instanceOfCompiler) Compile(ctx jsonschema.CompilerContext, m map[string]interface{}) (jsonschema.ExtSchema, error) {
	raw, ok := m[js.KeyInstanceOf]
	if !ok {
		return nil, nil
	}
	key, _ := raw.(string)
	p, ok := c.lookup(key)
	if !ok {
		return nil, unknownPredicate(key)
	}
	return instanceOfSchema{key: key, pred: p, doc: c.doc}, nil
}

type instanceOfSchema struct {
	key  string
	pred Predicate
	doc  js.Document
}

func (s instanceOfSchema) Validate(ctx jsonschema.ValidationContext, v interface{}) error {
	// ctx.Error is the only accessor for the instance location.
	verr := ctx.Error(js.KeyInstanceOf, "value does not satisfy %s", s.key)
	if s.pred(Call{Key: s.key, Value: v, Document: s.doc, Path: verr.InstanceLocation}) {
		return nil
	}
	return verr
}
