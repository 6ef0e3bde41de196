// Package httpapi exposes the analytics engine as a read-only JSON API.
// Every request reads the engine snapshot current at the time it arrives,
// so a reload never changes the answer to a request in flight.
package httpapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/ports"
)

// Handler provides HTTP handlers for the analytics API.
type Handler struct {
	engines *application.EngineRef
	metrics ports.MetricsCollector
}

// NewHandler creates a new API handler. metrics may be nil.
func NewHandler(engines *application.EngineRef, metrics ports.MetricsCollector) *Handler {
	if engines == nil {
		panic("httpapi: engine reference is required")
	}
	return &Handler{engines: engines, metrics: metrics}
}

// engine returns the current snapshot, writing a 503 when none is loaded.
func (h *Handler) engine(w http.ResponseWriter) (*application.Engine, bool) {
	e := h.engines.Load()
	if e == nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "no dataset loaded")
		return nil, false
	}
	return e, true
}

// requestLoggerMiddleware logs the method, URL path, and duration for each
// request and reports the latency to the metrics collector.
func (h *Handler) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		log.Printf("INFO: Request %s %s took %s", r.Method, r.URL.Path, elapsed)
		if h.metrics != nil {
			h.metrics.RecordLatency("http_request", elapsed, map[string]string{"formula": r.Method})
		}
	})
}

// writeJSON encodes v before writing any header, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("ERROR: Encoding response failed: %v", err)
		WriteJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("ERROR: Writing response failed: %v", err)
	}
}

func parseTeam(w http.ResponseWriter, raw string) (int, bool) {
	team, err := strconv.Atoi(raw)
	if err != nil || team <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "invalid team number: "+raw)
		return 0, false
	}
	return team, true
}

// parseBoolQuery reads an optional boolean query parameter; empty is false.
func parseBoolQuery(w http.ResponseWriter, raw, name string) (bool, bool) {
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid "+name+" value: "+raw)
		return false, false
	}
	return b, true
}
