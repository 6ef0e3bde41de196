package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API routes with the given router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", h.HandleHealth).Methods("GET")

	// Team queries
	router.HandleFunc("/teams", h.HandleTeams).Methods("GET")
	router.HandleFunc("/teams/{team}/fields/{field}/average", h.HandleFieldAverage).Methods("GET")
	router.HandleFunc("/teams/{team}/fields/{field}/series", h.HandleFieldSeries).Methods("GET")
	router.HandleFunc("/teams/{team}/fields/{field}/cumulative", h.HandleFieldCumulative).Methods("GET")
	router.HandleFunc("/teams/{team}/fields/{field}/heatmap", h.HandleFieldHeatmap).Methods("GET")
	router.HandleFunc("/teams/{team}/points", h.HandlePoints).Methods("GET")

	// Population queries
	router.HandleFunc("/fields/{field}/quantile", h.HandleQuantile).Methods("GET")

	// Alliance queries
	router.HandleFunc("/matches/{match}/alliances/{color}/fields/{field}", h.HandleAllianceField).Methods("GET")
	router.HandleFunc("/alliances/compare", h.HandleCompare).Methods("GET")

	// Formula-set stats
	router.HandleFunc("/stats", h.HandleStats).Methods("GET")
	router.HandleFunc("/stats/{id}/entities/{entity}", h.HandleStatScore).Methods("GET")
	router.HandleFunc("/stats/{id}/ranking", h.HandleStatRanking).Methods("GET")
}

// NewRouter builds a router serving the API and, when gatherer is non-nil,
// Prometheus metrics on /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	router.Use(h.requestLoggerMiddleware)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("WARN: No route found for %s %s", r.Method, r.URL.Path)
		WriteJSONError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})

	return router
}
