package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/orca/pkg/domain"
)

// Metadata is the frontmatter of a category document.
//
//	---
//	name: Palet
//	icon: 🪵
//	order: 1
//	subcategories: [Ahşap Palet, Kontrplak Palet]
//	standard_sizes: [80×120 cm]
//	requires_export: true
//	---
//	Optional description shown on the product screen.
type Metadata struct {
	Key            string      `json:"key" mapstructure:"key"`
	Name           string      `json:"name" mapstructure:"name"`
	Icon           string      `json:"icon" mapstructure:"icon"`
	Order          json.Number `json:"order" mapstructure:"order"`
	Subcategories  []string    `json:"subcategories" mapstructure:"subcategories"`
	StandardSizes  []string    `json:"standard_sizes" mapstructure:"standard_sizes"`
	RequiresExport bool        `json:"requires_export" mapstructure:"requires_export"`
}

// LoadDir reads one category per document from a Loam repository.
// The key defaults to the file name without extension.
func LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number; the catalog is never written.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	typed := loam.NewTypedRepository[Metadata](repo)
	docs, err := typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type ordered struct {
		order int64
		cat   domain.Category
	}
	entries := make([]ordered, 0, len(docs))
	for _, doc := range docs {
		key := doc.Data.Key
		if key == "" {
			key = trimExtension(filepath.Base(doc.ID))
		}
		order, err := doc.Data.Order.Int64()
		if err != nil {
			order = 1 << 30
		}
		entries = append(entries, ordered{
			order: order,
			cat: domain.Category{
				Key:            key,
				Name:           doc.Data.Name,
				Icon:           doc.Data.Icon,
				Description:    strings.TrimSpace(doc.Content),
				Subcategories:  doc.Data.Subcategories,
				StandardSizes:  doc.Data.StandardSizes,
				RequiresExport: doc.Data.RequiresExport,
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].cat.Key < entries[j].cat.Key
	})

	categories := make([]domain.Category, len(entries))
	for i, e := range entries {
		categories[i] = e.cat
	}
	return New(categories)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	return strings.TrimSuffix(id, ext)
}
