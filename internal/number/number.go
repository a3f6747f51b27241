package number

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IsNumber reports whether value holds a Go numeric kind or a json.Number.
func IsNumber(value any) bool {
	_, ok := ToFloat64(value)
	return ok
}

// IsInteger reports whether value is an integer-typed number. json.Number
// counts as an integer when its literal has no fraction or exponent.
func IsInteger(value any) bool {
	switch current := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		return !strings.ContainsAny(string(current), ".eE")
	default:
		return false
	}
}

// Loose converts numbers and numeric strings to float64. Strings are trimmed
// before parsing; empty strings, NaN and infinities are rejected.
func Loose(value any) (float64, bool) {
	if parsed, ok := ToFloat64(value); ok {
		return parsed, true
	}

	text, ok := value.(string)
	if !ok {
		return 0, false
	}

	return ParseString(text)
}

// ParseString parses a decimal or scientific number literal.
func ParseString(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}

	return parsed, true
}

// Format renders a number without a trailing fraction for integral values.
func Format(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
