package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityID is the opaque identifier a formula is evaluated against.
// The same formula set can score teams, matches, alliances in a match,
// alliance groups, or matchups between two groups.
//
// Encodings:
//
//	team               "4099"
//	match              "qm12"
//	alliance-in-match  "qm12:red"
//	alliance group     "4099,118,180"
//	matchup            "4099,118,180 vs 254,1678,971"
type EntityID string

const matchupSeparator = " vs "

// TeamEntity returns the entity id for a team.
func TeamEntity(team int) EntityID { return EntityID(strconv.Itoa(team)) }

// MatchEntity returns the entity id for a match.
func MatchEntity(matchKey string) EntityID { return EntityID(matchKey) }

// AllianceInMatchEntity returns the entity id for one alliance in one match.
func AllianceInMatchEntity(matchKey string, color Alliance) EntityID {
	return EntityID(matchKey + ":" + string(color))
}

// AllianceGroupEntity returns the entity id for an alliance group.
func AllianceGroupEntity(g AllianceGroup) EntityID { return EntityID(g.String()) }

// MatchupEntity returns the entity id for group a playing group b.
func MatchupEntity(a, b AllianceGroup) EntityID {
	return EntityID(a.String() + matchupSeparator + b.String())
}

// String implements fmt.Stringer.
func (e EntityID) String() string { return string(e) }

// Team parses the entity as a team number.
func (e EntityID) Team() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(e)))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a team", ErrInvalidEntity, string(e))
	}
	return n, nil
}

// AllianceInMatch parses the entity as "<match>:<color>".
func (e EntityID) AllianceInMatch() (string, Alliance, error) {
	matchKey, color, ok := strings.Cut(string(e), ":")
	if !ok || matchKey == "" {
		return "", AllianceUnknown, fmt.Errorf("%w: %q is not an alliance in a match", ErrInvalidEntity, string(e))
	}
	a, err := ParseAlliance(color)
	if err != nil {
		return "", AllianceUnknown, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	return matchKey, a, nil
}

// AllianceGroup parses the entity as a comma separated alliance group.
func (e EntityID) AllianceGroup() (AllianceGroup, error) {
	g, err := ParseAllianceGroup(string(e))
	if err != nil {
		return AllianceGroup{}, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	return g, nil
}

// Matchup parses the entity as "<group> vs <group>".
func (e EntityID) Matchup() (AllianceGroup, AllianceGroup, error) {
	left, right, ok := strings.Cut(string(e), matchupSeparator)
	if !ok {
		return AllianceGroup{}, AllianceGroup{}, fmt.Errorf("%w: %q is not a matchup", ErrInvalidEntity, string(e))
	}
	a, err := EntityID(left).AllianceGroup()
	if err != nil {
		return AllianceGroup{}, AllianceGroup{}, err
	}
	b, err := EntityID(right).AllianceGroup()
	if err != nil {
		return AllianceGroup{}, AllianceGroup{}, err
	}
	return a, b, nil
}
