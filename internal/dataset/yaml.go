package dataset

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/momingse/fzsearch/internal/record"
)

// maxAliasDepth guards against alias cycles.
const maxAliasDepth = 64

func decodeYAML(r io.Reader) ([]any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}
		return nil, invalidDataset("malformed YAML dataset", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return []any{}, nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if root.Kind != yaml.SequenceNode {
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			return []any{}, nil
		}
		return nil, notAList(yamlKind(root))
	}

	records := make([]any, 0, len(root.Content))
	for i, n := range root.Content {
		v, err := yamlValue(n, 0)
		if err != nil {
			return nil, invalidDataset(fmt.Sprintf("malformed YAML dataset at record %d", i), err)
		}
		records = append(records, v)
	}
	return records, nil
}

func yamlValue(n *yaml.Node, depth int) (any, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("line %d: nesting too deep", n.Line)
	}

	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias, depth+1)
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		obj := make(record.Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := yamlValue(v, depth+1)
			if err != nil {
				return nil, err
			}
			if k.Tag == "!!merge" {
				if merged, ok := val.(record.Object); ok {
					obj = append(obj, merged...)
					continue
				}
			}
			obj = append(obj, record.Field{Key: k.Value, Value: val})
		}
		return obj, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node", n.Line)
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for i := 0; n.Kind == yaml.AliasNode && n.Alias != nil && i < maxAliasDepth; i++ {
		n = n.Alias
	}
	return n
}

func yamlKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "document"
	}
}
