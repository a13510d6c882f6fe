package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"testing"

	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/core/collection"
	"github.com/vasii/catalog/internal/core/domain"
)

func TestParseProductFilter(t *testing.T) {
	q := url.Values{
		"collection":  {"winter"},
		"category":    {"WOMEN"},
		"size":        {"S,M", "L"},
		"subcategory": {" "},
		"min_price":   {"1000"},
		"max_price":   {"90000"},
	}

	filter, err := parseProductFilter(q)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filter.Collection != domain.CollectionWinter {
		t.Fatalf("collection = %q", filter.Collection)
	}
	if !slices.Equal(filter.Sizes, []string{"S", "M", "L"}) || !slices.Equal(filter.Categories, []string{"WOMEN"}) {
		t.Fatalf("unexpected multi values: %+v", filter)
	}
	if filter.Subcategories != nil {
		t.Fatalf("blank values should be dropped: %+v", filter.Subcategories)
	}
	if filter.MinPrice != 1000 || filter.MaxPrice != 90000 {
		t.Fatalf("unexpected prices: %+v", filter)
	}

	if _, err := parseProductFilter(url.Values{"min_price": {"cheap"}}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	f := newRouterFixture(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/products?collection=curvy-edition&size=XL", nil)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if f.catalog.gotFilter.Collection != domain.CollectionCurvyEdition || !slices.Equal(f.catalog.gotFilter.Sizes, []string{"XL"}) {
		t.Fatalf("filter not forwarded: %+v", f.catalog.gotFilter)
	}
}

func TestListProductsRendersPriceDisplay(t *testing.T) {
	f := newRouterFixture(t, config.Config{})
	fp, err := domain.Finalize(domain.Product{
		ID:          301,
		Code:        "301",
		Category:    "WOMEN",
		Subcategory: "Vestidos",
		Size:        "M",
		Fabric:      "Seda",
		Price:       109000,
		ImageURL:    domain.PlaceholderImage,
		Stock:       1,
		Collection:  domain.CollectionGlamourFiesta,
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	f.catalog.products = []domain.FinalizedProduct{fp}

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	var body struct {
		Count    int `json:"count"`
		Products []struct {
			ID           int64  `json:"id"`
			Price        int64  `json:"price"`
			PriceDisplay string `json:"price_display"`
		} `json:"products"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Products) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	got := body.Products[0]
	if got.ID != 301 || got.Price != 109000 || got.PriceDisplay != "$ 109.000" {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestFacets(t *testing.T) {
	f := newRouterFixture(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/catalog/facets", nil)
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	var facets domain.CatalogFacets
	if err := json.NewDecoder(res.Body).Decode(&facets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if facets.MaxPrice != 5000 || !slices.Equal(facets.Sizes, []string{"S", "M"}) {
		t.Fatalf("unexpected facets: %+v", facets)
	}
}

func TestCollectionsEndpoints(t *testing.T) {
	f := newRouterFixture(t, config.Config{})

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/collections", nil))
	var list struct {
		Collections []collection.Info `json:"collections"`
	}
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Collections) != 5 {
		t.Fatalf("expected 5 collections, got %d", len(list.Collections))
	}

	res = httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/collections/winter", nil))
	var info collection.Info
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Code != http.StatusOK || info.ID != domain.CollectionWinter {
		t.Fatalf("unexpected collection response %d %+v", res.Code, info)
	}

	res = httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/collections/inbox", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for inbox, got %d", res.Code)
	}
}

func TestSubcategories(t *testing.T) {
	f := newRouterFixture(t, config.Config{})

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/subcategories", nil))
	var resp map[string][]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp["subcategories"]) != len(collection.SubcategoryOptions()) {
		t.Fatalf("unexpected subcategories: %v", resp)
	}
}
