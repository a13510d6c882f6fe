package httpadapter

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
)

func (rt *Router) uploadInventory(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	upload, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, upload)
}

func (rt *Router) pasteInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	upload, err := rt.ingest.Paste(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, upload)
}

func (rt *Router) previewInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text         string `json:"text"`
		AutoClassify bool   `json:"auto_classify"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	report, err := rt.ingest.Preview(r.Context(), req.Text, req.AutoClassify)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordPreview(serviceName, report)
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) getUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := rt.uploads.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (rt *Router) listStaged(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	inboxOnly, _ := strconv.ParseBool(r.URL.Query().Get("inbox"))

	records, err := rt.review.ListStaged(r.Context(), uploadID, inboxOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upload_id": uploadID,
		"count":     len(records),
		"products":  records,
	})
}

func (rt *Router) overrideProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("productID")), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product id must be an integer"})
		return
	}

	line := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("line")); raw != "" {
		line, err = strconv.Atoi(raw)
		if err != nil || line <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "line must be a positive integer"})
			return
		}
	}

	var override domain.Override
	if err := decodeJSON(r, &override, false); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	record, err := rt.review.Override(r.Context(), r.PathValue("id"), productID, line, override)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) autoClassify(w http.ResponseWriter, r *http.Request) {
	n, err := rt.review.AutoClassify(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"classified": n})
}

func (rt *Router) commitUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AutoClassify *bool `json:"auto_classify"`
	}
	if err := decodeJSON(r, &req, true); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	autoClassify := rt.cfg.AutoClassify
	if req.AutoClassify != nil {
		autoClassify = *req.AutoClassify
	}

	upload, err := rt.review.Commit(r.Context(), r.PathValue("id"), autoClassify)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (rt *Router) discardUpload(w http.ResponseWriter, r *http.Request) {
	if err := rt.review.Discard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
