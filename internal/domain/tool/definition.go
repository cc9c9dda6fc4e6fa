package tool

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	AddToCart          = "add_to_cart"
	SearchProducts     = "search_products"
	GetSimilarProducts = "get_similar_products"
)

//go:embed tools.yaml
var catalogYAML []byte

// Definition describes one callable tool: its name, the description shown to
// the model and a JSON-schema object for its parameters.
type Definition struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`
}

type catalogFile struct {
	Tools []Definition `yaml:"tools"`
}

// LoadCatalog parses the embedded tool catalog.
func LoadCatalog() ([]Definition, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) ([]Definition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("tool catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Tools))
	for i, def := range file.Tools {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("tool catalog: entry %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("tool catalog: duplicate tool %q", name)
		}
		seen[name] = struct{}{}
		if def.Parameters == nil {
			def.Parameters = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		def.Name = name
		def.Description = strings.TrimSpace(def.Description)
		file.Tools[i] = def
	}
	return file.Tools, nil
}
