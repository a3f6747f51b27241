package operator

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/jacoelho/qarray/internal/number"
	"github.com/jacoelho/qarray/tree"
)

// LooseEqual compares values the way a where "=" does: numbers and numeric
// strings compare by value, nil only equals nil and collections compare
// element by element.
func LooseEqual(value, comparable any) bool {
	if value == nil || comparable == nil {
		return value == nil && comparable == nil
	}

	if left, ok := number.Loose(value); ok {
		if right, ok := number.Loose(comparable); ok {
			return left == right
		}
	}

	switch left := value.(type) {
	case string:
		right, ok := comparable.(string)
		return ok && left == right
	case bool:
		right, ok := comparable.(bool)
		return ok && left == right
	case []any:
		right, ok := comparable.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !LooseEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	case *tree.Map:
		right, ok := comparable.(*tree.Map)
		return ok && mapsEqual(left, right, LooseEqual)
	}

	return false
}

// StrictEqualValues requires both sides to share a type class. Numbers must
// also agree on being integral, so 1 and 1.0 differ.
func StrictEqualValues(value, comparable any) bool {
	if value == nil || comparable == nil {
		return value == nil && comparable == nil
	}

	if number.IsNumber(value) || number.IsNumber(comparable) {
		if !number.IsNumber(value) || !number.IsNumber(comparable) {
			return false
		}
		if number.IsInteger(value) != number.IsInteger(comparable) {
			return false
		}
		left, _ := number.ToFloat64(value)
		right, _ := number.ToFloat64(comparable)
		return left == right
	}

	switch left := value.(type) {
	case string:
		right, ok := comparable.(string)
		return ok && left == right
	case bool:
		right, ok := comparable.(bool)
		return ok && left == right
	case []any:
		right, ok := comparable.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !StrictEqualValues(left[i], right[i]) {
				return false
			}
		}
		return true
	case *tree.Map:
		right, ok := comparable.(*tree.Map)
		return ok && mapsEqual(left, right, StrictEqualValues)
	}

	return false
}

func mapsEqual(left, right *tree.Map, equal Func) bool {
	if left.Len() != right.Len() {
		return false
	}

	same := true
	left.Range(func(key string, value any) bool {
		other, ok := right.Get(key)
		if !ok || !equal(value, other) {
			same = false
		}
		return same
	})
	return same
}

// Compare orders two values. Numbers (including numeric strings) compare
// numerically, strings lexically and booleans with false before true. The
// second result is false when the pair has no natural order.
func Compare(left, right any) (int, bool) {
	if left == nil || right == nil {
		return 0, false
	}

	if l, ok := number.Loose(left); ok {
		if r, ok := number.Loose(right); ok {
			return cmp.Compare(l, r), true
		}
	}

	switch l := left.(type) {
	case string:
		if r, ok := right.(string); ok {
			return strings.Compare(l, r), true
		}
	case bool:
		if r, ok := right.(bool); ok {
			return compareBool(l, r), true
		}
	}

	return 0, false
}

func compareBool(left, right bool) int {
	switch {
	case left == right:
		return 0
	case !left:
		return -1
	default:
		return 1
	}
}

// TypeName returns the JSON type of value.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case *tree.Map:
		return "object"
	}
	if number.IsNumber(value) {
		return "number"
	}
	return "unknown"
}

// ScalarString renders strings, numbers and booleans as text. Collections
// and nil have no scalar form.
func ScalarString(value any) (string, bool) {
	switch current := value.(type) {
	case string:
		return current, true
	case bool:
		return strconv.FormatBool(current), true
	}
	if parsed, ok := number.ToFloat64(value); ok {
		return number.Format(parsed), true
	}
	return "", false
}
