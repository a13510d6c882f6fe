package domain

import "slices"

// ProductFilter narrows catalog reads. Empty slices and zero prices do not
// filter.
type ProductFilter struct {
	Collection    Collection
	Categories    []string
	Subcategories []string
	Sizes         []string
	MinPrice      int64
	MaxPrice      int64
}

func (f ProductFilter) Match(p Product) bool {
	if f.Collection != "" && p.Collection != f.Collection {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Subcategories) > 0 && !slices.Contains(f.Subcategories, p.Subcategory) {
		return false
	}
	if len(f.Sizes) > 0 && !slices.Contains(f.Sizes, p.Size) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

type CatalogFacets struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
	Sizes         []string `json:"sizes"`
	MinPrice      int64    `json:"min_price"`
	MaxPrice      int64    `json:"max_price"`
}
