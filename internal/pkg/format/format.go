package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StroopDecimals is the number of implied decimal digits in a raw on-chain
// amount. One display unit is 10^7 stroops.
const StroopDecimals = 7

var stroopDivisor = decimal.New(1, StroopDecimals)

// StroopsToDecimal converts a raw fixed-point stroop amount to its display
// value by dividing by 10^7. It accepts numeric or numeric-string input and
// returns 0 for nil, empty or non-numeric input; it never panics.
func StroopsToDecimal(raw any) float64 {
	v, ok := toFloat(raw)
	if !ok {
		return 0
	}
	d := decimal.NewFromFloat(v).Div(stroopDivisor)
	f, _ := d.Float64()
	return f
}

// FormatDecimal renders a value with at most 2 fractional digits, trailing
// zeros stripped: 12.50 -> "12.5", 12.00 -> "12", 0 -> "0".
func FormatDecimal(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	s := decimal.NewFromFloat(value).StringFixed(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" || s == "-0" {
		return "0"
	}
	return s
}

// FormatWithCommas renders via FormatDecimal and inserts thousands separators
// into the integer portion: 1234567.5 -> "1,234,567.5".
func FormatWithCommas(value float64) string {
	s := FormatDecimal(value)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + fracPart
}

// FormatStroopsWithCommas is the canonical way to display a raw on-chain
// amount: stroop conversion followed by comma-grouped 2-decimal formatting.
func FormatStroopsWithCommas(raw any) string {
	return FormatWithCommas(StroopsToDecimal(raw))
}

// FormatCompact renders a value in compact K/M/B notation: one decimal digit
// with a trailing ".0" stripped, sign preserved. Values below 1000 fall back
// to FormatDecimal; NaN and infinities render as "0".
func FormatCompact(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || value == 0 {
		return "0"
	}

	abs := math.Abs(value)
	switch {
	case abs >= 1e9:
		return compactSuffix(value/1e9, "B")
	case abs >= 1e6:
		return compactSuffix(value/1e6, "M")
	case abs >= 1e3:
		return compactSuffix(value/1e3, "K")
	default:
		return FormatDecimal(value)
	}
}

func compactSuffix(scaled float64, suffix string) string {
	s := strconv.FormatFloat(scaled, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + suffix
}

// FormatPercentage renders a percentage with exactly 2 fractional digits.
// nil and NaN render as "0.00%". The caller is responsible for pre-multiplying
// fractional rates by 100 where the upstream field is a fraction rather than a
// percentage.
func FormatPercentage(value *float64) string {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", *value)
}

// toFloat coerces the loosely typed inputs the upstream API produces into a
// float64. The bool result is false for anything non-numeric.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case fmt.Stringer:
		return toFloat(v.String())
	default:
		return 0, false
	}
}

// ParseFloatOrZero parses a numeric string, returning 0 for anything
// unparsable. Chart building uses it so a single malformed record never
// breaks a series.
func ParseFloatOrZero(s string) float64 {
	f, ok := toFloat(s)
	if !ok {
		return 0
	}
	return f
}
