package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTotal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no rounding needed", "10.00", "10"},
		{"half rounds away from zero", "10.125", "10.13"},
		{"negative half rounds away from zero", "-10.125", "-10.13"},
		{"truncation below half", "10.124", "10.12"},
		{"long tail from percentage math", "99.999999", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundTotal(MustMoney(tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "2.5000", NewQuantityFromFloat64(2.5).String())
	assert.Equal(t, "-0.0001", Quantity(-1).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
	assert.Equal(t, "3.0000", NewQuantityFromInt(3).String())
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(1.2345)
	assert.Equal(t, "1.2345", q.Decimal().String())
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "12.3456", string(data)) // number, not string

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantityUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quantity
	}{
		{"number", `2.5`, Quantity(25_000)},
		{"string", `"2.5"`, Quantity(25_000)},
		{"whole number", `7`, Quantity(70_000)},
		{"negative", `-0.25`, Quantity(-2_500)},
		{"extra digits truncated", `1.23456`, Quantity(12_345)},
		{"null means zero", `null`, Quantity(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantityUnmarshalRejectsExponent(t *testing.T) {
	for _, input := range []string{`1e3`, `2.5E-1`, `"1e3"`} {
		var q Quantity
		err := json.Unmarshal([]byte(input), &q)
		assert.Error(t, err, "input %s", input)
	}
}
