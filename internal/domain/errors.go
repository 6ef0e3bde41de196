package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while loading records or answering
// analytic queries. Callers should match them with errors.Is because most
// are returned wrapped inside a QueryError or ValidationError.
var (
	// ErrMalformedInput indicates that the raw record collection is
	// structurally invalid (missing MatchKey or TeamNumber, duplicates).
	ErrMalformedInput = errors.New("malformed input")

	// ErrNoData indicates that a query covered zero qualifying records.
	// It is distinct from a legitimate zero value.
	ErrNoData = errors.New("no data")

	// ErrUnknownField indicates that a field key is absent from both the
	// dataset and the catalogue.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownCategory indicates that a categorical label is absent from
	// the criteria map or the grid vocabulary.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownCriteria indicates that a named criteria map is not
	// defined in the catalogue.
	ErrUnknownCriteria = errors.New("unknown criteria map")

	// ErrMatchNotFound indicates that no records exist for a match key.
	ErrMatchNotFound = errors.New("match not found")

	// ErrInsufficientData indicates that an alliance comparison had no
	// comparable matches.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptyInput indicates that a statistic was requested over an
	// empty sequence.
	ErrEmptyInput = errors.New("empty input")

	// ErrNotNumeric indicates that a numeric reduction met a value that
	// cannot be read as a number.
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrInvalidQuantile indicates a quantile outside [0, 1].
	ErrInvalidQuantile = errors.New("quantile must be within [0, 1]")

	// ErrInvalidAlliance indicates an alliance group without exactly
	// AllianceSize teams or an unrecognized alliance color.
	ErrInvalidAlliance = errors.New("invalid alliance")

	// ErrInvalidEntity indicates an entity id that cannot be parsed into
	// the kind of entity a formula expects.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidScope indicates mutually exclusive phase restrictions.
	ErrInvalidScope = errors.New("invalid phase scope")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownFormula indicates a formula or stat id that no loaded
	// formula set defines.
	ErrUnknownFormula = errors.New("unknown formula")
)

// QueryError represents an error that occurred while answering a query.
// It records which operation, entity and field key were involved so that
// UI callers can report the failure precisely.
type QueryError struct {
	// Op is the query operation, for example "average" or "heatmap".
	Op string

	// Entity identifies the team, match or alliance that was queried.
	Entity string

	// Key is the field key or label involved, if any.
	Key string

	// Err is the underlying error that caused the query to fail.
	Err error

	// Suggestion is the closest known key or label when Err is
	// ErrUnknownField or ErrUnknownCategory.
	Suggestion string
}

// Error implements the error interface for QueryError.
func (e *QueryError) Error() string {
	msg := fmt.Sprintf("query error: op=%s, entity=%s, key=%s, err=%v", e.Op, e.Entity, e.Key, e.Err)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError creates a new QueryError with the given details.
func NewQueryError(op, entity, key string, err error) *QueryError {
	return &QueryError{
		Op:     op,
		Entity: entity,
		Key:    key,
		Err:    err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures and unwraps to its Kind,
// so a load failure matches ErrMalformedInput and a bad catalogue matches
// ErrInvalidConfiguration.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Kind is the sentinel error this validation failure represents.
	Kind error

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap returns the sentinel kind of the validation failure.
func (e *ValidationError) Unwrap() error { return e.Kind }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string, kind error) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Kind:   kind,
		Errors: make([]string, 0),
	}
}
