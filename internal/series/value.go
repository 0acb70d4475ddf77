package series

import (
	"math"
	"strconv"
)

// Value is a scalar that may be unknown. Statistics over sparse sensor
// windows routinely fail their quality gates, so "no answer" is a normal
// result here, not an error.
type Value struct {
	val   float64
	known bool
}

// Known wraps a concrete float. A non-finite input yields Unknown, so a
// NaN can never masquerade as a known value.
func Known(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{val: f, known: true}
}

// Unknown returns the missing-value sentinel.
func Unknown() Value {
	return Value{}
}

// IsKnown reports whether the value carries a concrete number.
func (v Value) IsKnown() bool {
	return v.known
}

// Float returns the concrete number, or NaN when unknown.
func (v Value) Float() float64 {
	if !v.known {
		return math.NaN()
	}
	return v.val
}

// Or returns the concrete number, or def when unknown.
func (v Value) Or(def float64) float64 {
	if !v.known {
		return def
	}
	return v.val
}

// Sub returns v-w, unknown if either operand is unknown.
func (v Value) Sub(w Value) Value {
	if !v.known || !w.known {
		return Unknown()
	}
	return Known(v.val - w.val)
}

// String renders the value for logs and delimited output. Unknown renders
// as the empty string, which round-trips through ParseValue.
func (v Value) String() string {
	if !v.known {
		return ""
	}
	return strconv.FormatFloat(v.val, 'g', -1, 64)
}

// ParseValue parses a delimited-table cell. Empty cells and the usual NaN
// spellings parse as Unknown.
func ParseValue(s string) (Value, error) {
	if s == "" || s == "NaN" || s == "nan" {
		return Unknown(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Unknown(), err
	}
	return Known(f), nil
}
