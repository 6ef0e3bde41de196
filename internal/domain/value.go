// Package domain contains pure, dependency-free domain models and types
// for the scouting analytics engine.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKind identifies how a scouted field value was recorded.
type ValueKind uint8

// Supported value kinds.
const (
	// KindNumeric is a count, rating or time.
	KindNumeric ValueKind = iota + 1
	// KindCategorical is a label drawn from a small closed set.
	KindCategorical
	// KindList is an ordered list of labels, such as grid placements.
	KindList
)

// String returns the kind name used in error messages.
func (k ValueKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a normalized field value from a MatchRecord.
// Values are immutable; accessors return copies of any slices.
type Value struct {
	kind  ValueKind
	num   float64
	label string
	items []string
}

// NumericValue creates a numeric Value.
func NumericValue(v float64) Value { return Value{kind: KindNumeric, num: v} }

// CategoricalValue creates a categorical Value.
func CategoricalValue(label string) Value { return Value{kind: KindCategorical, label: label} }

// ListValue creates a list Value holding a copy of items.
func ListValue(items []string) Value {
	return Value{kind: KindList, items: slices.Clone(items)}
}

// Kind reports how the value was recorded.
func (v Value) Kind() ValueKind { return v.kind }

// Number returns the numeric reading of the value. Categorical labels that
// parse as finite numbers (for example "3") are accepted; "NaN", "Inf" and
// lists never are.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumeric:
		return v.num, true
	case KindCategorical:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.label), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Label returns the categorical reading of the value. Numbers are formatted
// in their shortest form so that 1.0 looks up criteria key "1".
func (v Value) Label() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindCategorical:
		return v.label
	case KindList:
		return strings.Join(v.items, ",")
	default:
		return ""
	}
}

// Items returns the list elements, or nil for non-list values.
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.items)
}

// Len returns the number of list elements, or 0 for non-list values.
func (v Value) Len() int { return len(v.items) }

// String implements fmt.Stringer.
func (v Value) String() string { return v.Label() }

// MarshalJSON renders the value in its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindList:
		return json.Marshal(v.items)
	default:
		return json.Marshal(v.label)
	}
}

// NormalizeValue converts a decoded JSON or msgpack scalar into a Value.
// It returns false for nil, which callers treat as an absent field.
// Booleans become 1 or 0 so they can be averaged and translated through
// criteria keyed "1"/"0".
func NormalizeValue(raw any) (Value, bool) {
	switch v := raw.(type) {
	case nil:
		return Value{}, false
	case float64:
		return NumericValue(v), true
	case float32:
		return NumericValue(float64(v)), true
	case int:
		return NumericValue(float64(v)), true
	case int8:
		return NumericValue(float64(v)), true
	case int16:
		return NumericValue(float64(v)), true
	case int32:
		return NumericValue(float64(v)), true
	case int64:
		return NumericValue(float64(v)), true
	case uint8:
		return NumericValue(float64(v)), true
	case uint16:
		return NumericValue(float64(v)), true
	case uint32:
		return NumericValue(float64(v)), true
	case uint64:
		return NumericValue(float64(v)), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return CategoricalValue(v.String()), true
		}
		return NumericValue(f), true
	case bool:
		if v {
			return NumericValue(1), true
		}
		return NumericValue(0), true
	case string:
		return CategoricalValue(v), true
	case []string:
		return ListValue(v), true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				items = append(items, s)
				continue
			}
			if n, ok := NormalizeValue(item); ok {
				items = append(items, n.Label())
			}
		}
		return Value{kind: KindList, items: items}, true
	default:
		return CategoricalValue(fmt.Sprint(v)), true
	}
}
