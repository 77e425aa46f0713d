package jsonschema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrNotObject is returned when a fragment to parse is not a JSON/YAML object.
var ErrNotObject = errors.New("jsonschema: document must be an object")

// MarshalJSON encodes the document with keys in insertion order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := j.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := j.Marshal(d.vals[k])
		if err != nil {
			return nil, fmt.Errorf("jsonschema: encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (d *Document) UnmarshalJSON(b []byte) error {
	doc, err := ParseJSON(b)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Canonical returns a deterministic encoding: object keys sorted, no
// insignificant whitespace. Two structurally equal documents yield the same
// bytes regardless of key insertion order.
func (d Document) Canonical() ([]byte, error) {
	return j.Marshal(d.Map())
}

// Hash returns the hex SHA-256 of Canonical.
func (d Document) Hash() (string, error) {
	b, err := d.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Equal reports whether d and o are structurally equal.
func (d Document) Equal(o Document) bool {
	a, err := d.Canonical()
	if err != nil {
		return false
	}
	b, err := o.Canonical()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// String renders the document as JSON.
func (d Document) String() string {
	b, err := d.MarshalJSON()
	if err != nil {
		return "<invalid document: " + err.Error() + ">"
	}
	return string(b)
}

// ParseJSON decodes a JSON object into a Document, keeping key order. Numbers
// are kept as json.Number.
func ParseJSON(b []byte) (Document, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return Document{}, err
	}
	if dl, ok := tok.(j.Delim); !ok || dl != '{' {
		return Document{}, ErrNotObject
	}
	doc, err := decodeObject(dec)
	if err != nil {
		return Document{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Document{}, errors.New("jsonschema: trailing data after document")
	}
	return doc, nil
}

func decodeObject(dec *j.Decoder) (Document, error) {
	var b builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return Document{}, err
		}
		if dl, ok := tok.(j.Delim); ok && dl == '}' {
			return b.doc, nil
		}
		key, ok := tok.(string)
		if !ok {
			return Document{}, fmt.Errorf("jsonschema: unexpected token %v", tok)
		}
		vt, err := dec.Token()
		if err != nil {
			return Document{}, err
		}
		v, err := decodeValue(dec, vt)
		if err != nil {
			return Document{}, err
		}
		b.set(key, v)
	}
}

func decodeArray(dec *j.Decoder) ([]any, error) {
	out := []any{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if dl, ok := tok.(j.Delim); ok && dl == ']' {
			return out, nil
		}
		v, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func decodeValue(dec *j.Decoder, tok any) (any, error) {
	switch t := tok.(type) {
	case j.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("jsonschema: unexpected delimiter %v", t)
	case j.Number:
		return json.Number(string(t)), nil
	default:
		return t, nil
	}
}

// MarshalYAML emits an ordered YAML mapping.
func (d Document) MarshalYAML() (any, error) {
	return d.yamlNode()
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (d *Document) UnmarshalYAML(n *yaml.Node) error {
	doc, err := yamlDocument(n)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// ParseYAML decodes a YAML mapping into a Document, keeping key order.
func ParseYAML(b []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return Document{}, err
	}
	n := &root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return Document{}, ErrNotObject
		}
		n = n.Content[0]
	}
	return yamlDocument(n)
}

// YAML renders the document as YAML text.
func (d Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

func (d Document) yamlNode() (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range d.keys {
		vn, err := yamlValue(d.vals[k])
		if err != nil {
			return nil, fmt.Errorf("jsonschema: encode %q: %w", k, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
	}
	return n, nil
}

func yamlValue(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case Document:
		return t.yamlNode()
	case []Document:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, d := range t {
			n, err := d.yamlNode()
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n, err := yamlValue(e)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case json.Number:
		tag := "!!int"
		if _, err := t.Int64(); err != nil {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func yamlDocument(n *yaml.Node) (Document, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return Document{}, ErrNotObject
	}
	var b builder
	for i := 0; i+1 < len(n.Content); i += 2 {
		v, err := yamlAny(n.Content[i+1])
		if err != nil {
			return Document{}, err
		}
		b.set(n.Content[i].Value, v)
	}
	return b.doc, nil
}

func yamlAny(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return yamlDocument(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlAny(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return yamlAny(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool", "!!int", "!!float":
			var v any
			if err := n.Decode(&v); err != nil {
				return nil, err
			}
			return v, nil
		default:
			return n.Value, nil
		}
	}
	return nil, fmt.Errorf("jsonschema: unsupported yaml node kind %d", n.Kind)
}

// builder assembles a Document in place; only used while decoding.
type builder struct{ doc Document }

func (b *builder) set(k string, v any) {
	if b.doc.vals == nil {
		b.doc.vals = map[string]any{}
	}
	if _, ok := b.doc.vals[k]; !ok {
		b.doc.keys = append(b.doc.keys, k)
	}
	b.doc.vals[k] = v
}
