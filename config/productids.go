package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// FileSource is an iap.ProductIDSource backed by a YAML or JSON file.
type FileSource string

func (f FileSource) ProductIDs() ([]iap.ProductID, error) {
	return LoadProductIDs(string(f))
}

// productIDsDocument is the keyed form of the file. A bare list is accepted
// as well.
type productIDsDocument struct {
	ProductIDs []string `json:"product_ids"`
}

// LoadProductIDs reads the product id list at path. Files ending in .json are
// parsed as JSON, anything else as YAML. Duplicates are dropped, keeping the
// first occurrence.
func LoadProductIDs(path string) ([]iap.ProductID, error) {
	if path == "" {
		return nil, iap.ErrConfigMissing
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", iap.ErrConfigMissing, path)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", iap.ErrConfigMalformed, err)
	}

	var raw []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = parseJSON(data)
	} else {
		raw, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", iap.ErrConfigMalformed, path, err)
	}

	return normalize(raw)
}

func parseJSON(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc productIDsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.ProductIDs, nil
}

func parseYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, errors.New("empty document")
	}

	list := node.Content[0]
	if list.Kind == yaml.MappingNode {
		list = mappingValue(list, "product_ids")
		if list == nil {
			return nil, nil
		}
	}
	if list.Kind != yaml.SequenceNode {
		return nil, errors.New("expected a list or a product_ids mapping")
	}

	// Decoding into []string would quietly accept numbers and booleans.
	ids := make([]string, 0, len(list.Content))
	for _, item := range list.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("line %d: product id must be a string", item.Line)
		}
		ids = append(ids, item.Value)
	}
	return ids, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func normalize(raw []string) ([]iap.ProductID, error) {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]iap.ProductID, 0, len(raw))
	for i, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty product id at index %d", iap.ErrConfigMalformed, i)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, iap.ProductID(id))
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no product ids", iap.ErrConfigMalformed)
	}
	return ids, nil
}
