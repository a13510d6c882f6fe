package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/core/collection"
	"github.com/vasii/catalog/internal/core/ports"
	"github.com/vasii/catalog/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg         config.Config
	ingest      ports.InventoryIngestor
	uploads     ports.UploadReader
	review      ports.InventoryReviewer
	catalog     ports.CatalogQueryService
	collections *collection.Catalog
	metrics     *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.InventoryIngestor,
	uploads ports.UploadReader,
	review ports.InventoryReviewer,
	catalog ports.CatalogQueryService,
	collections *collection.Catalog,
) *Router {
	return &Router{
		cfg:         cfg,
		ingest:      ingest,
		uploads:     uploads,
		review:      review,
		catalog:     catalog,
		collections: collections,
	}
}

// WithMetrics exposes /metrics and records request and domain counters.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/uploads", rt.uploadInventory)
	mux.HandleFunc("POST /v1/uploads/paste", rt.pasteInventory)
	mux.HandleFunc("GET /v1/uploads/{id}", rt.getUpload)
	mux.HandleFunc("DELETE /v1/uploads/{id}", rt.discardUpload)
	mux.HandleFunc("GET /v1/uploads/{id}/products", rt.listStaged)
	mux.HandleFunc("PATCH /v1/uploads/{id}/products/{productID}", rt.overrideProduct)
	mux.HandleFunc("POST /v1/uploads/{id}/classify", rt.autoClassify)
	mux.HandleFunc("POST /v1/uploads/{id}/commit", rt.commitUpload)
	mux.HandleFunc("POST /v1/inventory/preview", rt.previewInventory)

	mux.HandleFunc("GET /v1/products", rt.listProducts)
	mux.HandleFunc("GET /v1/catalog/facets", rt.facets)
	mux.HandleFunc("GET /v1/collections", rt.listCollections)
	mux.HandleFunc("GET /v1/collections/{id}", rt.getCollection)
	mux.HandleFunc("GET /v1/subcategories", rt.subcategories)

	var handler http.Handler = mux
	handler = bodyLimitMiddleware(handler, rt.cfg.APIMaxUploadBytes)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait, rt.onReject("overloaded"))
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onReject("rate_limited"))
	handler = accessLogMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) onReject(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() { rt.metrics.RecordRejected(serviceName, reason) }
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a JSON body into dst. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeBadJSON(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
}
