package mcp

import (
	"net/http"

	"github.com/adrianliechti/ingester/config"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	*config.Config
}

func New(cfg *config.Config) (*Handler, error) {
	h := &Handler{
		Config: cfg,
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Handle("/mcp", http.HandlerFunc(h.handleMCP))
}

func (h *Handler) handleMCP(w http.ResponseWriter, r *http.Request) {
	if h.MCP == nil {
		http.Error(w, "MCP not enabled", http.StatusNotFound)
		return
	}

	h.MCP.ServeHTTP(w, r)
}
