package ups

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	millimetersPerInch = 25.4
	gramsPerPound      = 453.6
)

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// millimetersToInches returns whole inches as a decimal string.
func millimetersToInches(mm float64) string {
	return strconv.FormatInt(int64(roundHalfUp(mm/millimetersPerInch)), 10)
}

// hundredthsHalfUp rounds x to hundredths using its exact binary value, with
// ties going away from zero. strconv rounds exact ties to even.
func hundredthsHalfUp(x float64) int64 {
	r := new(big.Rat).SetFloat64(math.Abs(x))
	if r == nil {
		return 0
	}
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom()).Int64()
	if x < 0 {
		return -n
	}
	return n
}

// gramsToPounds returns pounds with exactly two fractional digits.
func gramsToPounds(g float64) string {
	n := hundredthsHalfUp(g / gramsPerPound)
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// transitWeight converts grams for the transit time API. The legacy form
// divides by the length constant and rounds to whole units; it is kept only
// for byte-compatibility with older integrations.
func transitWeight(g float64, legacy bool) float64 {
	if legacy {
		return roundHalfUp(g / millimetersPerInch)
	}
	return float64(hundredthsHalfUp(g/gramsPerPound)) / 100
}

// toCents converts a major-unit amount to minor units.
func toCents(amount float64) int64 {
	return int64(roundHalfUp(amount * 100))
}

// shipDate formats t as Y-M-D without zero padding.
func shipDate(t time.Time) string {
	return t.Format("2006-1-2")
}

// Number is a JSON number that UPS may also send as a string.
type Number string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("ups number: %w", err)
		}
		*n = Number(num.String())
	}
	return nil
}

// Float64 parses the number. An empty number is zero.
func (n Number) Float64() (float64, error) {
	if n == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(n), 64)
}

// Int64 parses the number, truncating any fraction. An empty number is zero.
func (n Number) Int64() (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// List decodes either a JSON array or a single object. UPS collapses
// one-element arrays into a bare object.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}
