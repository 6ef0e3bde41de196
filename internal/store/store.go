// Package store holds the immutable, indexed in-memory table of scouted
// match records that every analytic query reads from.
package store

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ahrav/go-scout/internal/domain"
)

// Raw record keys that carry identity rather than scouted data.
const (
	KeyMatchKey   = "MatchKey"
	KeyTeamNumber = "TeamNumber"
	KeyAlliance   = "Alliance"
)

// fieldSeparator joins nested object keys into one flat field key.
const fieldSeparator = "."

type teamMatch struct {
	team  int
	match string
}

// Store is an immutable table of match records with a team index and a
// match index built eagerly at load time. A Store is safe for concurrent
// use by any number of readers.
type Store struct {
	records []domain.MatchRecord

	// byTeam and byMatch hold positions into records in source order.
	byTeam  map[int][]int
	byMatch map[string][]int
	pairs   map[teamMatch]int

	teams   []int
	matches []string
	fields  map[string]struct{}
}

// Load parses raw records into a Store in a single pass over the input.
// Every structural problem is collected into one *domain.ValidationError
// that unwraps to domain.ErrMalformedInput, and no Store is returned.
// Fields absent from a record are tolerated; they are simply not indexed
// for that record.
func Load(raw []map[string]any) (*Store, error) {
	s := &Store{
		records: make([]domain.MatchRecord, 0, len(raw)),
		byTeam:  make(map[int][]int),
		byMatch: make(map[string][]int),
		pairs:   make(map[teamMatch]int, len(raw)),
		fields:  make(map[string]struct{}),
	}
	verr := domain.NewValidationError("records", domain.ErrMalformedInput)

	for pos, entry := range raw {
		if entry == nil {
			verr.AddErrorf("record %d: is null", pos)
			continue
		}
		matchKey, err := parseMatchKey(entry[KeyMatchKey])
		if err != nil {
			verr.AddErrorf("record %d: %v", pos, err)
		}
		team, terr := parseTeamNumber(entry[KeyTeamNumber])
		if terr != nil {
			verr.AddErrorf("record %d: %v", pos, terr)
		}
		alliance, aerr := parseAlliance(entry[KeyAlliance])
		if aerr != nil {
			verr.AddErrorf("record %d: %v", pos, aerr)
		}
		if err != nil || terr != nil || aerr != nil {
			continue
		}

		key := teamMatch{team: team, match: matchKey}
		if first, dup := s.pairs[key]; dup {
			verr.AddErrorf("record %d: duplicate of record %d for team %d in match %s",
				pos, s.records[first].Position, team, matchKey)
			continue
		}

		fields := make(map[string]domain.Value, len(entry))
		var ferrs []error
		for _, k := range slices.Sorted(maps.Keys(entry)) {
			switch k {
			case KeyMatchKey, KeyTeamNumber, KeyAlliance:
				continue
			}
			ferrs = flatten(k, entry[k], fields, ferrs)
		}
		if len(ferrs) > 0 {
			for _, ferr := range ferrs {
				verr.AddErrorf("record %d: %v", pos, ferr)
			}
			continue
		}
		for k := range fields {
			s.fields[k] = struct{}{}
		}

		idx := len(s.records)
		s.records = append(s.records, domain.NewMatchRecord(matchKey, team, alliance, pos, fields))
		s.pairs[key] = idx
		if _, seen := s.byTeam[team]; !seen {
			s.teams = append(s.teams, team)
		}
		s.byTeam[team] = append(s.byTeam[team], idx)
		if _, seen := s.byMatch[matchKey]; !seen {
			s.matches = append(s.matches, matchKey)
		}
		s.byMatch[matchKey] = append(s.byMatch[matchKey], idx)
	}

	if verr.HasErrors() {
		return nil, verr
	}
	slices.Sort(s.teams)
	return s, nil
}

// flatten normalizes v into out, joining nested object keys with ".".
// A key reached twice, such as a literal "Auto.Cones" next to a nested
// {"Auto": {"Cones": ...}}, and a non-finite number are appended to errs.
func flatten(prefix string, v any, out map[string]domain.Value, errs []error) []error {
	switch nested := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(nested)) {
			errs = flatten(prefix+fieldSeparator+k, nested[k], out, errs)
		}
	case map[any]any:
		keys := make(map[string]any, len(nested))
		for k, inner := range nested {
			name := fmt.Sprint(k)
			if _, dup := keys[name]; dup {
				errs = append(errs, fmt.Errorf("field %s is defined more than once", prefix+fieldSeparator+name))
				continue
			}
			keys[name] = inner
		}
		for _, k := range slices.Sorted(maps.Keys(keys)) {
			errs = flatten(prefix+fieldSeparator+k, keys[k], out, errs)
		}
	default:
		val, ok := domain.NormalizeValue(v)
		if !ok {
			return errs
		}
		if _, dup := out[prefix]; dup {
			return append(errs, fmt.Errorf("field %s is defined more than once", prefix))
		}
		if val.Kind() == domain.KindNumeric {
			if f, _ := val.Number(); math.IsNaN(f) || math.IsInf(f, 0) {
				return append(errs, fmt.Errorf("field %s is not a finite number", prefix))
			}
		}
		out[prefix] = val
	}
	return errs
}

func parseMatchKey(v any) (string, error) {
	switch k := v.(type) {
	case nil:
		return "", fmt.Errorf("missing %s", KeyMatchKey)
	case string:
		k = strings.TrimSpace(k)
		if k == "" {
			return "", fmt.Errorf("empty %s", KeyMatchKey)
		}
		return k, nil
	default:
		return "", fmt.Errorf("%s must be a string, got %T", KeyMatchKey, v)
	}
}

func parseTeamNumber(v any) (int, error) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing %s", KeyTeamNumber)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", KeyTeamNumber, t)
		}
		n = float64(i)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", KeyTeamNumber, t.String())
		}
		n = f
	case bool:
		return 0, fmt.Errorf("%s must be a number, got bool", KeyTeamNumber)
	default:
		val, ok := domain.NormalizeValue(v)
		f, isNum := val.Number()
		if !ok || val.Kind() != domain.KindNumeric || !isNum {
			return 0, fmt.Errorf("%s must be a number, got %T", KeyTeamNumber, v)
		}
		n = f
	}
	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%s %v is not a positive integer", KeyTeamNumber, n)
	}
	return int(n), nil
}

func parseAlliance(v any) (domain.Alliance, error) {
	switch a := v.(type) {
	case nil:
		return domain.AllianceUnknown, nil
	case string:
		if strings.TrimSpace(a) == "" {
			return domain.AllianceUnknown, nil
		}
		return domain.ParseAlliance(a)
	default:
		return domain.AllianceUnknown, fmt.Errorf("%s must be a string, got %T", KeyAlliance, v)
	}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Teams returns every team number in ascending order.
func (s *Store) Teams() []int { return slices.Clone(s.teams) }

// Matches returns every match key in first-seen order.
func (s *Store) Matches() []string { return slices.Clone(s.matches) }

// HasTeam reports whether any record belongs to team.
func (s *Store) HasTeam(team int) bool {
	_, ok := s.byTeam[team]
	return ok
}

// HasMatch reports whether any record belongs to matchKey.
func (s *Store) HasMatch(matchKey string) bool {
	_, ok := s.byMatch[matchKey]
	return ok
}

// HasField reports whether any record defines key.
func (s *Store) HasField(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// Fields returns every field key defined by at least one record, sorted.
func (s *Store) Fields() []string { return slices.Sorted(maps.Keys(s.fields)) }

// TeamRecords yields the team's records in source order. The sequence is
// lazy and can be ranged over any number of times.
func (s *Store) TeamRecords(team int) iter.Seq[domain.MatchRecord] {
	idx := s.byTeam[team]
	return func(yield func(domain.MatchRecord) bool) {
		for _, i := range idx {
			if !yield(s.records[i]) {
				return
			}
		}
	}
}

// TeamRecordCount returns how many records the team has.
func (s *Store) TeamRecordCount(team int) int { return len(s.byTeam[team]) }

// MatchRecords returns every record of the match in source order.
func (s *Store) MatchRecords(matchKey string) []domain.MatchRecord {
	idx := s.byMatch[matchKey]
	out := make([]domain.MatchRecord, len(idx))
	for i, j := range idx {
		out[i] = s.records[j]
	}
	return out
}

// Record returns the team's record for one match.
func (s *Store) Record(team int, matchKey string) (domain.MatchRecord, bool) {
	i, ok := s.pairs[teamMatch{team: team, match: matchKey}]
	if !ok {
		return domain.MatchRecord{}, false
	}
	return s.records[i], true
}

// Records yields every record in source order.
func (s *Store) Records() iter.Seq[domain.MatchRecord] {
	return slices.Values(s.records)
}
