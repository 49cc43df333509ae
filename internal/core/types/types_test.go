package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want Quantity
	}{
		{"1", 10_000},
		{"2.5", 25_000},
		{"0.0001", 1},
		{"-3.25", -32_500},
		{"10.12345", 101_234}, // extra digits truncated
		{"+7", 70_000},
	}
	for _, c := range cases {
		got, err := ParseQuantity(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseQuantity_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3"} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, in)
	}
}

func TestQuantityString(t *testing.T) {
	q, _ := ParseQuantity("2.5")
	assert.Equal(t, "2.5000", q.String())

	neg, _ := ParseQuantity("-0.25")
	assert.Equal(t, "-0.2500", neg.String())
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q, _ := ParseQuantity("3.1415")
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "3.1415", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)

	// String form also accepted.
	require.NoError(t, json.Unmarshal([]byte(`"2.5"`), &back))
	assert.Equal(t, Quantity(25_000), back)

	require.NoError(t, json.Unmarshal([]byte(`null`), &back))
	assert.Equal(t, Quantity(0), back)
}

func TestQuantityDecimalBridge(t *testing.T) {
	q, _ := ParseQuantity("2.5")
	total := q.Decimal().Mul(MustMoney("4.10"))
	assert.True(t, total.Equal(MustMoney("10.25")), "got %s", total)
}

func TestRound2(t *testing.T) {
	assert.True(t, Round2(MustMoney("1.005")).Equal(MustMoney("1.01")))
	assert.True(t, Round2(MustMoney("1.004")).Equal(MustMoney("1.00")))
}
