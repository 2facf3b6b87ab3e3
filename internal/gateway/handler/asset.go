package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"contentflow/internal/export"
)

// AssetHandler serves exported files for download.
type AssetHandler struct {
	exporter *export.Exporter
}

func NewAssetHandler(exporter *export.Exporter) *AssetHandler {
	return &AssetHandler{exporter: exporter}
}

// HandleAsset serves GET /assets/{key...}.
func (h *AssetHandler) HandleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	obj, err := h.exporter.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, export.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(obj.Key)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(obj.Data)
}

// HandleHealth serves GET /healthz.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
