package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat_RoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want Cents
	}{
		{0, 0},
		{0.01, 1},
		{10.00, 1000},
		{15.50, 1550},
		{25.99, 2599},
		{35.50, 3550},
		{0.005, 1},
		{-0.005, -1},
		{-15.50, -1550},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FromFloat(c.in), "FromFloat(%v)", c.in)
	}
}

func TestString_TwoDecimals(t *testing.T) {
	assert.Equal(t, "35.50", Cents(3550).String())
	assert.Equal(t, "0.01", Cents(1).String())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "-15.50", Cents(-1550).String())
}

func TestMul(t *testing.T) {
	assert.Equal(t, Cents(2000), Cents(1000).Mul(2))
	assert.Equal(t, Cents(1550), Cents(1550).Mul(1))
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Cents(3550))
	require.NoError(t, err)
	assert.Equal(t, "35.50", string(data))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte("35.5"), &c))
	assert.Equal(t, Cents(3550), c)

	require.NoError(t, json.Unmarshal([]byte(`"25.99"`), &c))
	assert.Equal(t, Cents(2599), c)

	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, Cents(3550), c)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("not-a-number")
	assert.Error(t, err)
}
