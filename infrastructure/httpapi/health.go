package httpapi

import (
	"net/http"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Teams   int    `json:"teams"`
	Stats   int    `json:"stats"`
	Catalog string `json:"catalog"`
}

// HandleHealth handles GET requests to the health check endpoint. It
// reports 503 until a dataset has been loaded.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w)
	if !ok {
		return
	}

	writeJSON(w, HealthResponse{
		Status:  "healthy",
		Records: e.RecordCount(),
		Teams:   len(e.Teams()),
		Stats:   e.FormulaSet().Len(),
		Catalog: e.Catalog().Name(),
	})
}
