package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		wantOK    bool
		wantKind  ValueKind
		wantLabel string
	}{
		{name: "nil is absent", raw: nil, wantOK: false},
		{name: "float", raw: 2.5, wantOK: true, wantKind: KindNumeric, wantLabel: "2.5"},
		{name: "int", raw: 3, wantOK: true, wantKind: KindNumeric, wantLabel: "3"},
		{name: "uint8 from msgpack", raw: uint8(4), wantOK: true, wantKind: KindNumeric, wantLabel: "4"},
		{name: "json number", raw: json.Number("12"), wantOK: true, wantKind: KindNumeric, wantLabel: "12"},
		{name: "true", raw: true, wantOK: true, wantKind: KindNumeric, wantLabel: "1"},
		{name: "false", raw: false, wantOK: true, wantKind: KindNumeric, wantLabel: "0"},
		{name: "label", raw: "Docked", wantOK: true, wantKind: KindCategorical, wantLabel: "Docked"},
		{name: "list", raw: []any{"1H", "2M", nil, 3}, wantOK: true, wantKind: KindList, wantLabel: "1H,2M,3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := NormalizeValue(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantLabel, v.Label())
		})
	}
}

func TestValueNumber(t *testing.T) {
	n, ok := NumericValue(4).Number()
	require.True(t, ok)
	assert.Equal(t, 4.0, n)

	n, ok = CategoricalValue(" 3 ").Number()
	require.True(t, ok, "numeric labels read as numbers")
	assert.Equal(t, 3.0, n)

	_, ok = CategoricalValue("Engage").Number()
	assert.False(t, ok)

	for _, label := range []string{"NaN", "Inf", "-inf"} {
		_, ok = CategoricalValue(label).Number()
		assert.False(t, ok, "label %q", label)
	}

	_, ok = ListValue([]string{"1H"}).Number()
	assert.False(t, ok)
}

func TestListValueIsImmutable(t *testing.T) {
	src := []string{"1H", "2M"}
	v := ListValue(src)
	src[0] = "9L"

	items := v.Items()
	assert.Equal(t, []string{"1H", "2M"}, items)

	items[1] = "changed"
	assert.Equal(t, []string{"1H", "2M"}, v.Items())
	assert.Equal(t, 2, v.Len())
}

func TestValueMarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Value{
		"n": NumericValue(1.5),
		"c": CategoricalValue("Docked"),
		"l": ListValue([]string{"1H"}),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1.5,"c":"Docked","l":["1H"]}`, string(out))
}

func TestCriteriaMapTranslate(t *testing.T) {
	endgame := CriteriaMap{"None": 0, "Docked": 2, "Engage": 10}
	boolean := CriteriaMap{"0": 0, "1": 1}

	score, err := endgame.Translate(CategoricalValue("Engage"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, score)

	score, err = boolean.Translate(NumericValue(1))
	require.NoError(t, err, "normalized booleans look up by their numeric label")
	assert.Equal(t, 1.0, score)

	_, err = endgame.Translate(CategoricalValue("Parked"))
	assert.ErrorIs(t, err, ErrUnknownCategory, "absent labels are never coerced to zero")

	_, err = endgame.Translate(ListValue([]string{"Engage"}))
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.Equal(t, []string{"Docked", "Engage", "None"}, endgame.Labels())
}

func TestMatchRecordCopiesFields(t *testing.T) {
	fields := map[string]Value{"DriverRating": NumericValue(4)}
	r := NewMatchRecord("qm1", 4099, AllianceRed, 0, fields)
	fields["DriverRating"] = NumericValue(1)

	v, ok := r.Field("DriverRating")
	require.True(t, ok)
	assert.Equal(t, "4", v.Label())

	_, ok = r.Field("Mobile")
	assert.False(t, ok)
	assert.Equal(t, []string{"DriverRating"}, r.FieldKeys())
	assert.Equal(t, EntityID("4099"), r.Entity())
}
