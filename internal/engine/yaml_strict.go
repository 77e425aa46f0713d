package engine

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLDuplicateKeys reports repeated mapping keys in the first YAML document
// of data. yaml.Unmarshal into a map keeps the last occurrence, so the node
// tree is walked instead. max <= 0 means unlimited.
func YAMLDuplicateKeys(data []byte, max int) ([]DuplicateKey, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	var out []DuplicateKey
	walkYAML(&root, "", func(d DuplicateKey) bool {
		out = append(out, d)
		return max <= 0 || len(out) < max
	})
	return out, nil
}

func walkYAML(n *yaml.Node, path string, report func(DuplicateKey) bool) bool {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if !walkYAML(c, path, report) {
				return false
			}
		}
	case yaml.MappingNode:
		seen := make(map[string]struct{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			p := path + "/" + escapePointer(k.Value)
			if _, dup := seen[k.Value]; dup {
				if !report(DuplicateKey{Path: p, Key: k.Value, Line: k.Line, Column: k.Column}) {
					return false
				}
			}
			seen[k.Value] = struct{}{}
			if !walkYAML(v, p, report) {
				return false
			}
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			if !walkYAML(c, path+"/"+strconv.Itoa(i), report) {
				return false
			}
		}
	}
	return true
}
