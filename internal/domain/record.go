package domain

import (
	"maps"
	"slices"
	"strconv"
)

// MatchRecord is one team's scouted performance in one match.
// Records are immutable once built; the field map is never exposed.
type MatchRecord struct {
	// MatchKey identifies the match, for example "qm12".
	MatchKey string

	// TeamNumber identifies the team.
	TeamNumber int

	// Alliance is the color the team played on, or AllianceUnknown.
	Alliance Alliance

	// Position is the record's index in the source collection. It is the
	// only notion of chronology the dataset carries.
	Position int

	fields map[string]Value
}

// NewMatchRecord creates a record holding a copy of fields.
func NewMatchRecord(matchKey string, team int, alliance Alliance, position int, fields map[string]Value) MatchRecord {
	return MatchRecord{
		MatchKey:   matchKey,
		TeamNumber: team,
		Alliance:   alliance,
		Position:   position,
		fields:     maps.Clone(fields),
	}
}

// Field returns the value of key and whether the record defines it.
func (r MatchRecord) Field(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// FieldKeys returns the keys the record defines, sorted.
func (r MatchRecord) FieldKeys() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// Entity returns the team entity id for this record.
func (r MatchRecord) Entity() EntityID { return EntityID(strconv.Itoa(r.TeamNumber)) }
