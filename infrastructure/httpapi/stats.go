package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ahrav/go-scout/internal/application"
	"github.com/ahrav/go-scout/internal/domain"
)

// StatsResponse lists the loaded formula set.
type StatsResponse struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

// StatScoreResponse carries one stat's score for one entity.
type StatScoreResponse struct {
	Stat   string `json:"stat"`
	Entity string `json:"entity"`
	domain.Score
}

// HandleStats handles GET requests listing the formula-set ids.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w)
	if !ok {
		return
	}
	ids := e.FormulaSet().IDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, StatsResponse{Name: e.FormulaSet().Name(), IDs: ids})
}

// HandleStatScore handles GET requests evaluating a formula-set stat for
// one entity. The entity is a team number, a "qm12:red" alliance in a
// match, a "4099,118,180" alliance or a "4099,118,180 vs 254,1678,971"
// matchup, whichever the stat expects.
func (h *Handler) HandleStatScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, ok := h.engine(w)
	if !ok {
		return
	}

	entity := domain.EntityID(vars["entity"])
	score, err := e.Score(vars["id"], entity)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, StatScoreResponse{Stat: vars["id"], Entity: entity.String(), Score: score})
}

// HandleStatRanking handles GET requests ranking every team by a
// formula-set stat. The optional limit parameter truncates the list.
func (h *Handler) HandleStatRanking(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "invalid limit: "+raw)
			return
		}
		limit = n
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	formula, err := e.Stat(mux.Vars(r)["id"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	ranking, err := e.Rank(r.Context(), formula)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, truncate(ranking, limit))
}

func truncate(r application.Ranking, limit int) application.Ranking {
	if limit > 0 && len(r.Teams) > limit {
		r.Teams = r.Teams[:limit]
	}
	return r
}
