package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// catalogFile is the top-level structure of catalog.yaml / catalog.json.
type catalogFile struct {
	Categories []map[string]any `yaml:"categories" json:"categories"`
}

// Load picks the source by path: empty means the built-in catalog,
// a directory is read with LoadDir, anything else with LoadFile.
func Load(ctx context.Context, path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog source: %w", err)
	}
	if info.IsDir() {
		return LoadDir(ctx, path)
	}
	return LoadFile(path)
}

// LoadFile reads a catalog from a YAML or JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw catalogFile
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	categories, err := FromMaps(raw.Categories)
	if err != nil {
		return nil, err
	}
	return New(categories)
}

// FromMaps decodes loosely typed category definitions.
// Unknown keys are rejected so typos in hand-written files surface early.
func FromMaps(items []map[string]any) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(items))
	for i, item := range items {
		var cat domain.Category
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cat,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("invalid category #%d: %w", i+1, err)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}
