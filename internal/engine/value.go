package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONValue converts v into the value model the validator understands:
// nil, bool, string, json.Number, float64, int, int64, []any and
// map[string]any.
// Values already in that model are returned as is; anything else (structs,
// typed maps and slices, Marshalers) goes through a JSON round trip.
func JSONValue(v any) (any, error) {
	if isJSONValue(v) {
		return v, nil
	}
	b, err := j.Marshal(v)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(b)
}

// DecodeJSON decodes a single JSON value keeping numbers as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return numbers(out), nil
}

// DecodeYAML decodes a single YAML document into a JSON value. Mappings with
// non-string keys drop those keys.
func DecodeYAML(data []byte) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return JSONValue(yamlNormalize(out))
}

func isJSONValue(v any) bool {
	switch t := v.(type) {
	case nil, bool, string, json.Number, float64, int, int64:
		return true
	case []any:
		for _, e := range t {
			if !isJSONValue(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !isJSONValue(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numbers rewrites go-json numbers into encoding/json numbers.
func numbers(v any) any {
	switch t := v.(type) {
	case j.Number:
		return json.Number(string(t))
	case []any:
		for i := range t {
			t[i] = numbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = numbers(t[k])
		}
		return t
	default:
		return v
	}
}

func yamlNormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalize(t[i])
		}
		return arr
	default:
		return v
	}
}

// DuplicateKey is an object key seen twice in the same JSON object.
type DuplicateKey struct {
	// Path is the JSON Pointer of the duplicated member.
	Path string
	Key  string
	// Line and Column locate the repeated key in YAML input; zero for JSON.
	Line, Column int
}

// DuplicateKeys scans a JSON text for repeated object keys. Decoding into a
// map silently keeps the last occurrence, so validation alone cannot see
// them. max <= 0 means unlimited.
func DuplicateKeys(data []byte, max int) ([]DuplicateKey, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	type frame struct {
		object    bool
		keys      map[string]struct{}
		expectKey bool
		path      string
		index     int
	}
	var (
		out   []DuplicateKey
		stack []frame
	)
	// childPath returns the pointer of the value about to start in top.
	childPath := func(key string) string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.object {
			return top.path + "/" + escapePointer(key)
		}
		p := top.path + "/" + strconv.Itoa(top.index)
		top.index++
		return p
	}
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectKey = true
		}
	}

	var pendingKey string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{', '[':
				p := childPath(pendingKey)
				stack = append(stack, frame{object: v == '{', keys: map[string]struct{}{}, expectKey: v == '{', path: p})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					out = append(out, DuplicateKey{Path: top.path + "/" + escapePointer(v), Key: v})
					if max > 0 && len(out) >= max {
						return out, nil
					}
				}
				top.keys[v] = struct{}{}
				top.expectKey = false
				pendingKey = v
				continue
			}
			childPath(pendingKey)
			valueDone()
		default:
			childPath(pendingKey)
			valueDone()
		}
	}
}

func escapePointer(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '~':
			b.WriteString("~0")
		case '/':
			b.WriteString("~1")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
