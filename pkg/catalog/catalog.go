// Package catalog holds the product categories offered by the order flow.
//
// A Catalog is immutable after construction. It can be built from the
// compiled-in ORCA table (Default), from a YAML/JSON file (LoadFile) or from
// a directory of markdown documents with frontmatter (LoadDir).
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aretw0/orca/pkg/domain"
)

// Catalog is an ordered, read-only set of categories.
type Catalog struct {
	categories []domain.Category
	index      map[string]int
}

// New validates the categories and builds a catalog preserving their order.
func New(categories []domain.Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		categories: make([]domain.Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, cat := range categories {
		if cat.Key == "" {
			return nil, fmt.Errorf("category #%d has no key", i+1)
		}
		if cat.Name == "" {
			return nil, fmt.Errorf("category %q has no name", cat.Key)
		}
		if _, dup := c.index[cat.Key]; dup {
			return nil, fmt.Errorf("duplicate category key %q", cat.Key)
		}
		c.index[cat.Key] = len(c.categories)
		c.categories = append(c.categories, copyCategory(cat))
	}
	return c, nil
}

// Get returns the category with the given key.
func (c *Catalog) Get(key string) (domain.Category, bool) {
	i, ok := c.index[key]
	if !ok {
		return domain.Category{}, false
	}
	return copyCategory(c.categories[i]), true
}

// MustGet is Get for keys known to exist.
func (c *Catalog) MustGet(key string) domain.Category {
	cat, ok := c.Get(key)
	if !ok {
		panic(fmt.Sprintf("catalog: unknown category %q", key))
	}
	return cat
}

// All returns the categories in display order.
func (c *Catalog) All() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = copyCategory(cat)
	}
	return out
}

// Keys returns the category keys in display order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.categories))
	for i, cat := range c.categories {
		keys[i] = cat.Key
	}
	return keys
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Lookup resolves free user input to a category: a 1-based position,
// a key or a display name (case-insensitive).
func (c *Catalog) Lookup(input string) (domain.Category, bool) {
	needle := Fold(input)
	if needle == "" {
		return domain.Category{}, false
	}
	if n, err := strconv.Atoi(needle); err == nil {
		if n >= 1 && n <= len(c.categories) {
			return copyCategory(c.categories[n-1]), true
		}
		return domain.Category{}, false
	}
	for _, cat := range c.categories {
		if Fold(cat.Key) == needle || Fold(cat.Name) == needle || Fold(cat.Label()) == needle {
			return copyCategory(cat), true
		}
	}
	return domain.Category{}, false
}

// Fold normalizes text for comparisons using Turkish casing rules, so
// "İHRACAT" and "ihracat" compare equal. Dotless ı is folded onto i so that
// spellings typed on keyboards without Turkish letters still match.
func Fold(s string) string {
	// A Caser keeps state and cannot be shared between goroutines.
	lower := cases.Lower(language.Turkish).String(strings.TrimSpace(s))
	return strings.ReplaceAll(lower, "ı", "i")
}

func copyCategory(c domain.Category) domain.Category {
	c.Subcategories = append([]string(nil), c.Subcategories...)
	if c.StandardSizes != nil {
		c.StandardSizes = append([]string(nil), c.StandardSizes...)
	}
	return c
}
