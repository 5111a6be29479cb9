package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adrianliechti/ingester/pkg/auth"
	"github.com/adrianliechti/ingester/pkg/export/xlsx"
	"github.com/adrianliechti/ingester/pkg/ingester"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if h.Ingester == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("ingester not configured"))
		return
	}

	maxPages, err := valueMaxPages(r)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, err := h.readFile(r)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(file.Content) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty document"))
		return
	}

	name := filepath.Base(file.Name)

	if name == "." || name == string(filepath.Separator) {
		name = "document"
	}

	if filepath.Ext(name) == "" {
		name += extension(file.ContentType)
	}

	dir, err := os.MkdirTemp("", "ingester-")

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, file.Content, 0o600); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	slog.InfoContext(r.Context(), "extract document", "name", name, "size", len(file.Content), "user", auth.User(r.Context()))

	pages, err := h.Ingester.Process(r.Context(), path, &ingester.ProcessOptions{
		MaxPages: maxPages,
	})

	if errors.Is(err, ingester.ErrUnsupported) {
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if valueFormat(r) == "xlsx" {
		w.Header().Set("Content-Type", contentTypeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="elements.xlsx"`)

		if err := xlsx.Write(w, pages); err != nil {
			slog.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		}

		return
	}

	writeJson(w, ExtractResult{
		Name:  file.Name,
		Pages: pages,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	var result StatsResult

	if h.Ingester != nil {
		result.Stats = h.Ingester.Stats()
	}

	if h.Pool != nil {
		stats := h.Pool.Stats()
		result.Pool = &stats
	}

	writeJson(w, result)
}
