package httpapi

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/domain"
)

// TeamSummary is one row of the team listing.
type TeamSummary struct {
	Team    int `json:"team"`
	Matches int `json:"matches"`
}

// TeamsResponse lists every team and known field key.
type TeamsResponse struct {
	Teams  []TeamSummary `json:"teams"`
	Fields []string      `json:"fields"`
}

// FieldValueResponse carries one scalar answer about a team's field.
type FieldValueResponse struct {
	Team  int     `json:"team"`
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// FieldSeriesResponse carries a team's raw readings of a field.
type FieldSeriesResponse struct {
	Team   int            `json:"team"`
	Field  string         `json:"field"`
	Values []domain.Value `json:"values"`
}

// PointsResponse carries a team's derived points.
type PointsResponse struct {
	Team        int       `json:"team"`
	Scope       string    `json:"scope"`
	Average     float64   `json:"average"`
	Matches     []float64 `json:"matches"`
	Consistency float64   `json:"consistency"`
}

// MatchPointsResponse carries a team's points in one match.
type MatchPointsResponse struct {
	Team       int     `json:"team"`
	Match      string  `json:"match"`
	Scope      string  `json:"scope"`
	Cumulative bool    `json:"cumulative"`
	Points     float64 `json:"points"`
}

// QuantileResponse carries the population quantile of a field average.
type QuantileResponse struct {
	Field    string  `json:"field"`
	Quantile float64 `json:"quantile"`
	Value    float64 `json:"value"`
}

// HandleTeams handles GET requests listing every team in the dataset.
func (h *Handler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w)
	if !ok {
		return
	}

	teams := e.Teams()
	resp := TeamsResponse{Teams: make([]TeamSummary, 0, len(teams)), Fields: e.Fields()}
	for _, team := range teams {
		matches, err := e.TeamMatches(team)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		resp.Teams = append(resp.Teams, TeamSummary{Team: team, Matches: len(matches)})
	}
	writeJSON(w, resp)
}

// HandleFieldAverage handles GET requests for a team's mean of one field.
func (h *Handler) HandleFieldAverage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team, ok := parseTeam(w, vars["team"])
	if !ok {
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	v, err := e.Average(team, vars["field"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, FieldValueResponse{Team: team, Field: vars["field"], Value: v})
}

// HandleFieldSeries handles GET requests for a team's raw readings of one
// field in match order.
func (h *Handler) HandleFieldSeries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team, ok := parseTeam(w, vars["team"])
	if !ok {
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	seq, err := e.Series(team, vars["field"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	values := slices.Collect(seq)
	if values == nil {
		values = []domain.Value{}
	}
	writeJSON(w, FieldSeriesResponse{Team: team, Field: vars["field"], Values: values})
}

// HandleFieldCumulative handles GET requests for a team's running total of
// one field.
func (h *Handler) HandleFieldCumulative(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team, ok := parseTeam(w, vars["team"])
	if !ok {
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	ts, err := e.CumulativeOverTime(team, vars["field"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, ts)
}

// HandleFieldHeatmap handles GET requests for a team's grid placement
// counts of one field.
func (h *Handler) HandleFieldHeatmap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team, ok := parseTeam(w, vars["team"])
	if !ok {
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	hm, err := e.Heatmap(team, vars["field"])
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, hm)
}

// HandlePoints handles GET requests for a team's derived points. The
// optional phase parameter restricts the scope; with match set the answer
// is the points of that one match, or the running total through it when
// cumulative=true.
func (h *Handler) HandlePoints(w http.ResponseWriter, r *http.Request) {
	team, ok := parseTeam(w, mux.Vars(r)["team"])
	if !ok {
		return
	}
	query := r.URL.Query()
	scope, err := domain.ParseScope(query.Get("phase"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	if match := query.Get("match"); match != "" {
		cumulative, ok := parseBoolQuery(w, query.Get("cumulative"), "cumulative")
		if !ok {
			return
		}
		v, err := e.PointsForMatch(team, match, scope, cumulative)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		writeJSON(w, MatchPointsResponse{
			Team:       team,
			Match:      match,
			Scope:      scope.String(),
			Cumulative: cumulative,
			Points:     v,
		})
		return
	}

	pts, err := e.PointsByMatch(team, scope)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	avg, err := e.AveragePoints(team, scope)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	iqr, err := e.Consistency(team, scope)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, PointsResponse{
		Team:        team,
		Scope:       scope.String(),
		Average:     avg,
		Matches:     pts,
		Consistency: iqr,
	})
}

// HandleQuantile handles GET requests for the q-th quantile of a field's
// per-team average across the whole event.
func (h *Handler) HandleQuantile(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	q, err := strconv.ParseFloat(r.URL.Query().Get("q"), 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid quantile: "+r.URL.Query().Get("q"))
		return
	}
	e, ok := h.engine(w)
	if !ok {
		return
	}

	formula, err := scoring.NewAverageFormula(field, scoring.AverageConfig{Field: field}, e)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := e.QuantileStat(r.Context(), q, formula)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSON(w, QuantileResponse{Field: field, Quantile: q, Value: v})
}
