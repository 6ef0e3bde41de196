package application

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ahrav/go-scout/infrastructure/scoring"
	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// FormulaDecorator wraps every compiled formula and stat, typically to add
// metrics or tracing.
type FormulaDecorator func(ports.Formula) ports.Formula

// FormulaSet is a compiled, immutable formula-set document. Formulas and
// stats share one id namespace.
type FormulaSet struct {
	name     string
	order    []string
	formulas map[string]ports.Formula
}

// CompileFormulaSet instantiates every formula of cfg through registry,
// then builds stats in document order. A stat's factors may reference any
// formula or any stat declared before it. decorate may be nil.
func CompileFormulaSet(
	cfg *FormulaSetConfig,
	registry ports.FormulaRegistry,
	decorate FormulaDecorator,
) (*FormulaSet, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: formula set cannot be nil", domain.ErrInvalidConfiguration)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: formula registry cannot be nil", domain.ErrInvalidConfiguration)
	}
	if decorate == nil {
		decorate = func(f ports.Formula) ports.Formula { return f }
	}

	set := &FormulaSet{
		name:     cfg.Metadata.Name,
		formulas: make(map[string]ports.Formula, len(cfg.Formulas)+len(cfg.Stats)),
	}
	add := func(id string, f ports.Formula) error {
		if _, dup := set.formulas[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidConfiguration, id)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("formula %s failed validation: %w", id, err)
		}
		set.formulas[id] = decorate(f)
		set.order = append(set.order, id)
		return nil
	}

	for _, fc := range cfg.Formulas {
		params := map[string]any{}
		if !fc.Parameters.IsZero() {
			if err := fc.Parameters.Decode(&params); err != nil {
				return nil, fmt.Errorf("formula %s: failed to decode parameters: %w", fc.ID, err)
			}
		}
		if ref, ok := referencedFormula(params); ok {
			target, ok := set.formulas[ref]
			if !ok {
				return nil, fmt.Errorf("%w: formula %s references undeclared formula %q",
					domain.ErrUnknownFormula, fc.ID, ref)
			}
			params[scoring.ParamFormulaRef] = target
		}

		f, err := registry.CreateFormula(fc.Type, fc.ID, params)
		if err != nil {
			return nil, err
		}
		if err := add(fc.ID, f); err != nil {
			return nil, err
		}
	}

	for _, sc := range cfg.Stats {
		stat, err := set.buildStat(sc)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", sc.ID, err)
		}
		if err := add(sc.ID, stat); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func (s *FormulaSet) buildStat(sc StatConfig) (ports.Formula, error) {
	terms := make([]scoring.Term, 0, len(sc.Factors))
	for _, fc := range sc.Factors {
		ref, ok := s.formulas[fc.Ref]
		if !ok {
			return nil, fmt.Errorf("%w: factor references %q", domain.ErrUnknownFormula, fc.Ref)
		}
		factor, err := scoring.NewFactor(ref, fc.Divisor)
		if err != nil {
			return nil, err
		}
		terms = append(terms, scoring.Term{Factor: factor, Weight: fc.Weight})
	}

	switch sc.Mode {
	case "weighted":
		return scoring.NewWeightedStat(sc.ID, terms, sc.MaxValue)
	case string(scoring.ModeDivisor):
		return scoring.NewDivisorCompositeStat(sc.ID, terms, sc.MaxValue)
	case string(scoring.ModeReference):
		return scoring.NewReferenceCompositeStat(sc.ID, terms, sc.MaxValue)
	default:
		return nil, fmt.Errorf("%w: unknown stat mode %q", domain.ErrInvalidConfiguration, sc.Mode)
	}
}

// Name returns the set's metadata name. A nil set has no name, no ids and
// no formulas, so callers need not check whether one was configured.
func (s *FormulaSet) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// IDs returns every formula and stat id in declaration order.
func (s *FormulaSet) IDs() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Get returns the compiled formula or stat with id.
func (s *FormulaSet) Get(id string) (ports.Formula, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.formulas[id]
	return f, ok
}

// Len returns the number of compiled formulas and stats.
func (s *FormulaSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.formulas)
}

// lookup returns the formula with id, or domain.ErrUnknownFormula with a
// suggestion drawn from the set's ids.
func (s *FormulaSet) lookup(id string) (ports.Formula, error) {
	if s != nil {
		if f, ok := s.formulas[id]; ok {
			return f, nil
		}
	}
	qerr := domain.NewQueryError("stat", "", id, domain.ErrUnknownFormula)
	if s != nil {
		qerr.Suggestion = suggest(id, slices.Sorted(maps.Keys(s.formulas)))
	}
	return nil, qerr
}
