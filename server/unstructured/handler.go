package unstructured

import (
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/ingester/config"

	"github.com/go-chi/chi/v5"
)

// Handler serves the partition endpoint of the Unstructured API so existing clients can ingest
// documents without changes.
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
	r.Post("/general/v0/general", h.handlePartition)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)

	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	w.Write([]byte(text))
}
