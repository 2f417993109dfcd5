package ir

import (
	"github.com/goccy/go-yaml"
)

// FromYAML parses YAML bytes into a payload tree. YAML maps with
// non-string keys are rejected.
func FromYAML(data []byte) (*Node, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return FromGo(v)
}

// ToYAML renders the node as YAML via its natural Go form.
func ToYAML(node *Node) ([]byte, error) {
	return yaml.Marshal(node.Interface())
}
