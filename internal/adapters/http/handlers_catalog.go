package httpadapter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vasii/catalog/internal/core/collection"
	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/core/inventory"
)

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, err := rt.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]productView, len(products))
	for i, fp := range products {
		p := fp.Product()
		views[i] = productView{Product: p, PriceDisplay: inventory.FormatPrice(p.Price)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(views),
		"products": views,
	})
}

// productView is a catalog product with its price as the storefront shows it.
type productView struct {
	domain.Product
	PriceDisplay string `json:"price_display"`
}

// parseProductFilter reads repeatable or comma separated filter values.
func parseProductFilter(q url.Values) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Collection:    domain.Collection(strings.TrimSpace(q.Get("collection"))),
		Categories:    multiValue(q, "category"),
		Subcategories: multiValue(q, "subcategory"),
		Sizes:         multiValue(q, "size"),
	}

	var err error
	if filter.MinPrice, err = priceParam(q, "min_price"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.MaxPrice, err = priceParam(q, "max_price"); err != nil {
		return domain.ProductFilter{}, err
	}
	return filter, nil
}

func multiValue(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func priceParam(q url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse "+key, fmt.Errorf("%q is not an integer", raw))
	}
	return n, nil
}

func (rt *Router) facets(w http.ResponseWriter, r *http.Request) {
	facets, err := rt.catalog.Facets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (rt *Router) listCollections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]collection.Info{"collections": rt.collections.All()})
}

func (rt *Router) getCollection(w http.ResponseWriter, r *http.Request) {
	info, err := rt.collections.Get(domain.Collection(r.PathValue("id")))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (rt *Router) subcategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"subcategories": collection.SubcategoryOptions()})
}
