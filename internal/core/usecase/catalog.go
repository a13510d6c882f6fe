package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/ports"
)

var sizeOrder = map[string]int{
	"XXS": 0, "XS": 1, "S": 2, "M": 3, "L": 4, "XL": 5,
	"XXL": 6, "2XL": 6, "XXXL": 7, "3XL": 7, "4XL": 8, "5XL": 9, "6XL": 10,
}

type CatalogUseCase struct {
	products ports.ProductRepository
}

func NewCatalogUseCase(products ports.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products}
}

// ListProducts returns the catalog products matching filter, ordered by id.
// The collection is resolved by the repository; the remaining criteria are
// applied here.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.FinalizedProduct, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	all, err := uc.products.List(ctx, filter.Collection)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]domain.FinalizedProduct, 0, len(all))
	for _, fp := range all {
		if filter.Match(fp.Product()) {
			out = append(out, fp)
		}
	}
	slices.SortFunc(out, func(a, b domain.FinalizedProduct) int {
		return cmp.Compare(a.Product().ID, b.Product().ID)
	})
	return out, nil
}

// Facets summarizes the whole catalog for filter widgets.
func (uc *CatalogUseCase) Facets(ctx context.Context) (domain.CatalogFacets, error) {
	all, err := uc.products.List(ctx, "")
	if err != nil {
		return domain.CatalogFacets{}, fmt.Errorf("list products: %w", err)
	}

	facets := domain.CatalogFacets{
		Categories:    []string{},
		Subcategories: []string{},
		Sizes:         []string{},
	}
	seenCategory := map[string]bool{}
	seenSubcategory := map[string]bool{}
	seenSize := map[string]bool{}
	for i, fp := range all {
		p := fp.Product()
		if !seenCategory[p.Category] {
			seenCategory[p.Category] = true
			facets.Categories = append(facets.Categories, p.Category)
		}
		if !seenSubcategory[p.Subcategory] {
			seenSubcategory[p.Subcategory] = true
			facets.Subcategories = append(facets.Subcategories, p.Subcategory)
		}
		if !seenSize[p.Size] {
			seenSize[p.Size] = true
			facets.Sizes = append(facets.Sizes, p.Size)
		}
		if i == 0 || p.Price < facets.MinPrice {
			facets.MinPrice = p.Price
		}
		if i == 0 || p.Price > facets.MaxPrice {
			facets.MaxPrice = p.Price
		}
	}
	slices.Sort(facets.Categories)
	slices.Sort(facets.Subcategories)
	slices.SortFunc(facets.Sizes, compareSizes)
	return facets, nil
}

// compareSizes orders letter sizes from XXS upward, then everything else
// alphabetically.
func compareSizes(a, b string) int {
	ra, okA := sizeOrder[strings.ToUpper(a)]
	rb, okB := sizeOrder[strings.ToUpper(b)]
	switch {
	case okA && okB:
		if c := cmp.Compare(ra, rb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

func validateFilter(f domain.ProductFilter) error {
	if f.Collection != "" && !f.Collection.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "validate product filter", fmt.Errorf("unknown collection %q", f.Collection))
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate product filter", errors.New("prices must not be negative"))
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return domain.WrapError(domain.ErrInvalidInput, "validate product filter", errors.New("min_price is greater than max_price"))
	}
	return nil
}
