package domain

import (
	"fmt"
	"strings"
)

// Phase is a scoring period of a match.
type Phase string

// Match phases. The endgame happens inside the teleop period.
const (
	PhaseAuto    Phase = "auto"
	PhaseTeleop  Phase = "teleop"
	PhaseEndgame Phase = "endgame"
)

// Phases lists every phase in match order.
var Phases = []Phase{PhaseAuto, PhaseTeleop, PhaseEndgame}

// ParsePhase parses a phase name case-insensitively.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(strings.ToLower(strings.TrimSpace(s))); p {
	case PhaseAuto, PhaseTeleop, PhaseEndgame:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown phase %q", ErrInvalidScope, s)
	}
}

// Scope restricts a points query to part of a match.
// The zero value covers the whole match.
type Scope struct {
	AutoOnly   bool
	TeleopOnly bool
}

// Full, auto-only and teleop-only scopes.
var (
	ScopeAll    = Scope{}
	ScopeAuto   = Scope{AutoOnly: true}
	ScopeTeleop = Scope{TeleopOnly: true}
)

// ParseScope maps "", "all", "auto" and "teleop" to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "total":
		return ScopeAll, nil
	case "auto":
		return ScopeAuto, nil
	case "teleop":
		return ScopeTeleop, nil
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}

// Validate rejects a scope with both restrictions set.
func (s Scope) Validate() error {
	if s.AutoOnly && s.TeleopOnly {
		return fmt.Errorf("%w: autoOnly and teleopOnly are mutually exclusive", ErrInvalidScope)
	}
	return nil
}

// Includes reports whether phase p is counted under the scope.
func (s Scope) Includes(p Phase) bool {
	switch {
	case s.AutoOnly:
		return p == PhaseAuto
	case s.TeleopOnly:
		return p == PhaseTeleop || p == PhaseEndgame
	default:
		return true
	}
}

// String returns the name accepted by ParseScope.
func (s Scope) String() string {
	switch {
	case s.AutoOnly && s.TeleopOnly:
		return "invalid"
	case s.AutoOnly:
		return "auto"
	case s.TeleopOnly:
		return "teleop"
	default:
		return "all"
	}
}
