package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/domain"
)

// AllianceFieldResponse carries one alliance's combined field value in a match.
type AllianceFieldResponse struct {
	Match    string  `json:"match"`
	Alliance string  `json:"alliance"`
	Field    string  `json:"field"`
	Reduce   string  `json:"reduce"`
	Value    float64 `json:"value"`
}

// CompareResponse compares two hypothetical alliances. WinProbability and
// WinOdds are both percentages of A winning.
type CompareResponse struct {
	A              []int   `json:"a"`
	B              []int   `json:"b"`
	Scope          string  `json:"scope"`
	WinProbability float64 `json:"win_probability"`
	WinOdds        float64 `json:"win_odds"`
	PredictedA     float64 `json:"predicted_a"`
	PredictedB     float64 `json:"predicted_b"`
}

// HandleAllianceField handles GET requests combining one field across an
// alliance in a match. The reduce parameter defaults to sum.
func (h *Handler) HandleAllianceField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	color, err := domain.ParseAlliance(vars["color"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	reduce, err := domain.ParseReduction(r.URL.Query().Get("reduce"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	v, err := e.AllianceMatchValue(vars["match"], vars["field"], color, reduce)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, AllianceFieldResponse{
		Match:    vars["match"],
		Alliance: string(color),
		Field:    vars["field"],
		Reduce:   string(reduce),
		Value:    v,
	})
}

// HandleCompare handles GET requests comparing alliances a and b, each a
// comma-separated list of three team numbers. Win probability is the
// historical head-to-head over points in the optional phase scope; win
// odds is the chance a outscores b under the normal model.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	a, err := domain.ParseAllianceGroup(query.Get("a"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	b, err := domain.ParseAllianceGroup(query.Get("b"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	scope, err := domain.ParseScope(query.Get("phase"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	resp := CompareResponse{A: a.Teams(), B: b.Teams(), Scope: scope.String()}
	if resp.WinProbability, err = e.WinProbability(a, b, scoring.PointsSeries{Points: e, Scope: scope}); err != nil {
		WriteDomainError(w, err)
		return
	}
	odds, err := e.WinOdds(a, b)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	resp.WinOdds = odds * 100
	if resp.PredictedA, err = e.PredictedScore(a, scope); err != nil {
		WriteDomainError(w, err)
		return
	}
	if resp.PredictedB, err = e.PredictedScore(b, scope); err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, resp)
}
