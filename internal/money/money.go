// Package money represents amounts as integer minor units (cents).
// Arithmetic over cents is exact; decimal formatting happens only at
// serialization boundaries.
package money

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Cents is a money amount in minor units. 3550 == 35.50.
type Cents int64

// FromFloat converts a decimal amount to cents, rounding half away
// from zero at the cent boundary.
func FromFloat(amount float64) Cents {
	if amount < 0 {
		return Cents(-math.Floor(-amount*100 + 0.5))
	}
	return Cents(math.Floor(amount*100 + 0.5))
}

// Parse reads a decimal string such as "35.50".
func Parse(s string) (Cents, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return FromFloat(f), nil
}

// Mul scales the amount by an integer quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// Float64 returns the decimal value. Display and serialization only.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

// String formats with exactly two decimal places.
func (c Cents) String() string {
	return strconv.FormatFloat(c.Float64(), 'f', 2, 64)
}

// MarshalJSON emits a JSON number with two decimal places.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number (or quoted decimal string) and
// rounds it to the nearest cent.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
