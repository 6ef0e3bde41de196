package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AllianceSize is the number of teams competing together in one match.
const AllianceSize = 3

// Alliance identifies the color a team played on in one match.
type Alliance string

// Alliance colors. AllianceUnknown is used for records that do not state
// their alliance; such records are never counted by alliance queries.
const (
	AllianceRed     Alliance = "red"
	AllianceBlue    Alliance = "blue"
	AllianceUnknown Alliance = ""
)

// ParseAlliance parses a color label case-insensitively.
func ParseAlliance(s string) (Alliance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return AllianceRed, nil
	case "blue":
		return AllianceBlue, nil
	default:
		return AllianceUnknown, fmt.Errorf("%w: color %q", ErrInvalidAlliance, s)
	}
}

// Opponent returns the other color, or AllianceUnknown for AllianceUnknown.
func (a Alliance) Opponent() Alliance {
	switch a {
	case AllianceRed:
		return AllianceBlue
	case AllianceBlue:
		return AllianceRed
	default:
		return AllianceUnknown
	}
}

// AllianceGroup is an ordered triple of team numbers supplied at query time.
// It is a value type; changing the teams means building a new group.
type AllianceGroup [AllianceSize]int

// NewAllianceGroup builds a group from exactly AllianceSize team numbers.
func NewAllianceGroup(teams ...int) (AllianceGroup, error) {
	var g AllianceGroup
	if len(teams) != AllianceSize {
		return g, fmt.Errorf("%w: need %d teams, got %d", ErrInvalidAlliance, AllianceSize, len(teams))
	}
	for i, team := range teams {
		if team <= 0 {
			return g, fmt.Errorf("%w: team number %d at position %d", ErrInvalidAlliance, team, i)
		}
		g[i] = team
	}
	return g, nil
}

// ParseAllianceGroup parses a comma separated list such as "4099,118,180".
func ParseAllianceGroup(s string) (AllianceGroup, error) {
	parts := strings.Split(s, ",")
	teams := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return AllianceGroup{}, fmt.Errorf("%w: team %q", ErrInvalidAlliance, p)
		}
		teams = append(teams, n)
	}
	return NewAllianceGroup(teams...)
}

// Teams returns the team numbers as a slice.
func (g AllianceGroup) Teams() []int { return []int{g[0], g[1], g[2]} }

// String renders the group in the form accepted by ParseAllianceGroup.
func (g AllianceGroup) String() string {
	return fmt.Sprintf("%d,%d,%d", g[0], g[1], g[2])
}
