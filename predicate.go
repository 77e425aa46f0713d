package fluentschema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"

	j "github.com/goccy/go-json"
	"github.com/google/cel-go/cel"

	js "github.com/reoring/fluentschema/jsonschema"
	"github.com/reoring/fluentschema/internal/engine"
)

// PredicateCall is the input handed to a Predicate when the instanceOf
// keyword is evaluated.
type PredicateCall struct {
	// Key is the registry key named by the keyword.
	Key string
	// Value is the instance at Path as a JSON value (numbers are json.Number).
	Value any
	// Document is the root document being validated against.
	Document js.Document
	// Path is the JSON Pointer of Value.
	Path string
}

// Predicate is a runtime check JSON Schema cannot express.
type Predicate func(PredicateCall) bool

// PredicateRegistry maps stable keys to predicates. Keys are insert-if-absent:
// once registered, a key keeps its predicate for the life of the registry.
type PredicateRegistry struct {
	r *engine.Registry
}

// NewPredicateRegistry returns an empty registry.
func NewPredicateRegistry() *PredicateRegistry {
	return &PredicateRegistry{r: engine.NewRegistry()}
}

// Register stores fn under key unless the key is taken and reports whether fn
// was stored.
func (p *PredicateRegistry) Register(key string, fn Predicate) bool {
	if fn == nil {
		return false
	}
	return p.r.Register(key, func(c engine.Call) bool {
		return fn(PredicateCall{Key: c.Key, Value: c.Value, Document: c.Document, Path: c.Path})
	})
}

// Has reports whether key is registered.
func (p *PredicateRegistry) Has(key string) bool {
	_, ok := p.r.Lookup(key)
	return ok
}

// Keys returns the registered keys, sorted.
func (p *PredicateRegistry) Keys() []string { return p.r.Keys() }

var (
	defaultPredicates = NewPredicateRegistry()
	// builtinPredicates holds the InstanceOf and Expr predicates. Their keys
	// are derived from a Go type or an expression source, so every Validator
	// resolves them whatever registry WithPredicates installs.
	builtinPredicates = NewPredicateRegistry()
)

// registerBuiltin stores fn in the built-in and process-wide registries.
func registerBuiltin(key string, fn Predicate) {
	builtinPredicates.Register(key, fn)
	defaultPredicates.Register(key, fn)
}

// DefaultPredicates returns the process-wide registry used by validators
// built without WithPredicates.
func DefaultPredicates() *PredicateRegistry { return defaultPredicates }

// RegisterPredicate registers fn in the process-wide registry.
func RegisterPredicate(key string, fn Predicate) bool {
	return defaultPredicates.Register(key, fn)
}

// TypeKey returns the registry key used for Go type T: "go:" followed by the
// type's package-qualified name.
func TypeKey[T any]() string {
	return "go:" + reflect.TypeFor[T]().String()
}

// InstanceOf registers, if absent, a predicate accepting values that decode
// into T without unknown fields, and returns its key.
func InstanceOf[T any]() string {
	key := TypeKey[T]()
	if builtinPredicates.Has(key) {
		return key
	}
	registerBuiltin(key, func(c PredicateCall) bool {
		b, err := j.Marshal(c.Value)
		if err != nil {
			return false
		}
		dec := j.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		var out T
		return dec.Decode(&out) == nil
	})
	return key
}

// ExprKey returns the registry key for a CEL expression.
func ExprKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return "cel:" + hex.EncodeToString(sum[:])
}

var celEnv, celEnvErr = cel.NewEnv(cel.Variable("self", cel.DynType))

// Expr compiles a boolean CEL expression over the variable self and
// registers it under ExprKey(src). Identical sources share one entry.
func Expr(src string) (string, error) {
	key := ExprKey(src)
	if builtinPredicates.Has(key) {
		return key, nil
	}
	if celEnvErr != nil {
		return "", celEnvErr
	}
	ast, iss := celEnv.Compile(src)
	if iss != nil && iss.Err() != nil {
		return "", &ArgumentError{Method: "Expr", Reason: iss.Err().Error()}
	}
	prg, err := celEnv.Program(ast)
	if err != nil {
		return "", &ArgumentError{Method: "Expr", Reason: err.Error()}
	}
	registerBuiltin(key, func(c PredicateCall) bool {
		out, _, err := prg.Eval(map[string]any{"self": celValue(c.Value)})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	})
	return key, nil
}

// MustExpr is Expr that panics on error.
func MustExpr(src string) string {
	key, err := Expr(src)
	if err != nil {
		panic(err)
	}
	return key
}

// celValue converts json.Number into int64 or float64 so CEL arithmetic and
// comparisons work on decoded instances.
func celValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = celValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = celValue(e)
		}
		return out
	default:
		return v
	}
}
