package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scout/internal/domain"
)

// Loader provides YAML parsing, validation, and caching for formula-set
// and catalogue documents.
// Use Loader to read documents from files or readers while benefiting
// from SHA256-based caching and comprehensive validation.
type Loader struct {
	// validator performs struct field validation and custom validation
	// rules for documents and their nested components.
	validator *validator.Validate
	// types are the formula types formula sets may use.
	types []string
	// formulaSets stores validated formula sets indexed by SHA256 hash of
	// the normalized document.
	// WARNING: Cached configs MUST NOT be mutated.
	formulaSets map[string]*FormulaSetConfig
	// catalogs stores immutable catalogues indexed the same way.
	catalogs map[string]*domain.Catalog
	// cacheMu provides thread-safe access to both caches.
	cacheMu sync.RWMutex
	// sf prevents duplicate work when multiple goroutines load the same
	// document simultaneously.
	sf singleflight.Group
}

// NewLoader creates a loader that accepts the built-in formula types plus
// extraTypes registered at runtime with WithFormulaFactory.
func NewLoader(extraTypes ...string) (*Loader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	types := append(BuiltinFormulaTypes(), extraTypes...)
	slices.Sort(types)

	return &Loader{
		validator:   v,
		types:       slices.Compact(types),
		formulaSets: make(map[string]*FormulaSetConfig),
		catalogs:    make(map[string]*domain.Catalog),
	}, nil
}

// LoadFormulaSetFromFile loads and validates a formula-set document.
// WARNING: The returned config is shared with the cache and MUST NOT be
// mutated.
func (l *Loader) LoadFormulaSetFromFile(ctx context.Context, path string) (*FormulaSetConfig, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.loadFormulaSet(ctx, data)
}

// LoadFormulaSetFromReader loads and validates a formula-set document
// from r.
func (l *Loader) LoadFormulaSetFromReader(ctx context.Context, r io.Reader) (*FormulaSetConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.loadFormulaSet(ctx, data)
}

// LoadCatalogFromFile loads a catalogue document and builds the
// immutable domain.Catalog.
func (l *Loader) LoadCatalogFromFile(ctx context.Context, path string) (*domain.Catalog, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.loadCatalog(ctx, data)
}

// LoadCatalogFromReader loads a catalogue document from r.
func (l *Loader) LoadCatalogFromReader(ctx context.Context, r io.Reader) (*domain.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.loadCatalog(ctx, data)
}

func readFile(path string) ([]byte, error) {
	// Clean the path to prevent directory traversal attacks.
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (l *Loader) loadFormulaSet(ctx context.Context, data []byte) (*FormulaSetConfig, error) {
	var config FormulaSetConfig
	if err := decodeStrict(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := configHash(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := l.sf.Do("formulas:"+hash, func() (any, error) {
		l.cacheMu.RLock()
		cached, ok := l.formulaSets[hash]
		l.cacheMu.RUnlock()
		if ok {
			return cached, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.validateFormulaSet(&config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		l.cacheMu.Lock()
		l.formulaSets[hash] = &config
		l.cacheMu.Unlock()
		return &config, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*FormulaSetConfig), nil
}

func (l *Loader) loadCatalog(ctx context.Context, data []byte) (*domain.Catalog, error) {
	var config CatalogConfig
	if err := decodeStrict(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	hash, err := configHash(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := l.sf.Do("catalog:"+hash, func() (any, error) {
		l.cacheMu.RLock()
		cached, ok := l.catalogs[hash]
		l.cacheMu.RUnlock()
		if ok {
			return cached, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.validator.Struct(&config); err != nil {
			return nil, fmt.Errorf("validation failed: struct validation failed: %w", err)
		}
		catalog, err := domain.NewCatalog(config.ToSpec())
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		l.cacheMu.Lock()
		l.catalogs[hash] = catalog
		l.cacheMu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Catalog), nil
}

// decodeStrict uses strict decoding to detect unknown fields, preventing
// configuration typos from being silently ignored.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("YAML decode failed: %w", err)
	}
	return nil
}

// configHash computes the SHA256 hash of a normalized document so that
// semantically identical documents share a cache entry regardless of
// whitespace or comments.
func configHash(config any) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

// validateFormulaSet performs struct validation followed by semantic
// validation of ids and references.
func (l *Loader) validateFormulaSet(config *FormulaSetConfig) error {
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := l.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

// validateSemantics checks rules that struct tags cannot express: ids are
// unique across formulas and stats, types are registered, parameters
// suit their type, and every reference points at something declared
// earlier in the document.
func (l *Loader) validateSemantics(config *FormulaSetConfig) error {
	declared := make(map[string]string) // ID -> kind for better error messages.

	for _, f := range config.Formulas {
		if kind, exists := declared[f.ID]; exists {
			return fmt.Errorf("duplicate ID %q: already used by %s", f.ID, kind)
		}
		if _, ok := slices.BinarySearch(l.types, f.Type); !ok {
			return fmt.Errorf("formula %s has unsupported type %q", f.ID, f.Type)
		}
		if err := ValidateFormulaParameters(f.Type, f.Parameters); err != nil {
			return fmt.Errorf("formula %s parameter validation failed: %w", f.ID, err)
		}

		var params map[string]any
		if !f.Parameters.IsZero() {
			if err := f.Parameters.Decode(&params); err != nil {
				return fmt.Errorf("formula %s: failed to decode parameters: %w", f.ID, err)
			}
		}
		for _, key := range injectedParams {
			if _, ok := params[key]; ok {
				return fmt.Errorf("formula %s sets reserved parameter %q", f.ID, key)
			}
		}
		if ref, ok := referencedFormula(params); ok {
			if kind, exists := declared[ref]; !exists || kind != "formula" {
				return fmt.Errorf("formula %s references undeclared formula: %s", f.ID, ref)
			}
		}
		declared[f.ID] = "formula"
	}

	for _, s := range config.Stats {
		if kind, exists := declared[s.ID]; exists {
			return fmt.Errorf("duplicate ID %q: already used by %s", s.ID, kind)
		}
		if s.Mode != "reference" && s.MaxValue <= 0 {
			return fmt.Errorf("stat %s: %s mode requires a positive max_value", s.ID, s.Mode)
		}
		for _, factor := range s.Factors {
			if _, exists := declared[factor.Ref]; !exists {
				return fmt.Errorf("stat %s references undeclared formula or stat: %s", s.ID, factor.Ref)
			}
		}
		declared[s.ID] = "stat"
	}

	return nil
}

// ClearCache removes all cached documents, forcing subsequent loads to
// re-validate from source.
func (l *Loader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.formulaSets = make(map[string]*FormulaSetConfig)
	l.catalogs = make(map[string]*domain.Catalog)
}
