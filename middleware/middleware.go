// Package middleware validates HTTP request bodies against a schema before
// they reach a handler.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	j "github.com/goccy/go-json"

	"github.com/reoring/fluentschema"
)

// DefaultMaxBodyBytes caps the request body read by ValidateJSON.
const DefaultMaxBodyBytes = 1 << 20

// ctxKeyDecoded is a typed context key for storing a decoded body.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a decoded body to the context.
func ContextWithDecoded[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves a body stored by ValidateJSON.
func DecodedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(T)
	return v, ok
}

// Config controls ValidateJSON.
type Config struct {
	// Validator defaults to fluentschema.Default().
	Validator *fluentschema.Validator
	// MaxBodyBytes defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// ValidateJSON validates the request body as JSON against s. On success the
// body is decoded into T, stored in the request context, and restored on
// the request so the next handler can read it again. On failure it responds
// 400 with ErrorPayload, 413 when the body exceeds the limit, and 400 for
// any other read failure.
func ValidateJSON[T any](s fluentschema.Documenter, cfg Config) func(http.Handler) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := cfg.Validator
			if v == nil {
				v = fluentschema.Default()
			}
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes))
			if err != nil {
				status := http.StatusBadRequest
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			ctx := r.Context()
			if ok, iss := v.ValidateJSON(ctx, s, body); !ok {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			var decoded T
			if err := j.Unmarshal(body, &decoded); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			r = r.WithContext(ContextWithDecoded(ctx, decoded))
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues fluentschema.Issues) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, is := range issues {
		m := map[string]any{"path": is.Path, "code": is.Code, "message": is.Message}
		if is.Keyword != "" {
			m["keyword"] = is.Keyword
			m["schemaPath"] = is.SchemaPath
		}
		out = append(out, m)
	}
	return map[string]any{"issues": out}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}
