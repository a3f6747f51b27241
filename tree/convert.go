package tree

import (
	"cmp"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/qarray/internal/stack"
)

// Normalize converts decoded input into the tree form: *Map for objects,
// []any for arrays, scalars untouched. Go maps have no order, so their keys
// are imported sorted, integer keys by value. The result never shares
// containers with value.
func Normalize(value any) any {
	switch current := value.(type) {
	case nil, string, bool:
		return current
	case *Map:
		out := NewMap(current.Len())
		current.Range(func(key string, item any) bool {
			out.Set(key, Normalize(item))
			return true
		})
		return out
	case []any:
		out := make([]any, len(current))
		for i, item := range current {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := NewMap(len(current))
		for _, key := range sortedKeys(current) {
			out.Set(key, Normalize(current[key]))
		}
		return out
	case yaml.MapSlice:
		out := NewMap(len(current))
		for _, item := range current {
			out.Set(keyString(item.Key), Normalize(item.Value))
		}
		return out
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Slice, reflect.Array:
		if reflected.Kind() == reflect.Slice && reflected.IsNil() {
			return []any{}
		}
		out := make([]any, reflected.Len())
		for i := range out {
			out[i] = Normalize(reflected.Index(i).Interface())
		}
		return out
	case reflect.Map:
		entries := make(map[string]any, reflected.Len())
		iter := reflected.MapRange()
		for iter.Next() {
			entries[keyString(iter.Key().Interface())] = iter.Value().Interface()
		}
		keys := sortedKeys(entries)
		slices.SortStableFunc(keys, compareKeys)
		out := NewMap(len(entries))
		for _, key := range keys {
			out.Set(key, Normalize(entries[key]))
		}
		return out
	default:
		return value
	}
}

// Clone deep-copies maps and lists. Scalars are returned as is.
func Clone(value any) any {
	switch current := value.(type) {
	case *Map:
		if current == nil {
			return current
		}
		out := NewMap(current.Len())
		for _, key := range current.keys {
			out.Set(key, Clone(current.values[key]))
		}
		return out
	case []any:
		if current == nil {
			return current
		}
		out := make([]any, len(current))
		for i, item := range current {
			out[i] = Clone(item)
		}
		return out
	default:
		return value
	}
}

// ToNative converts a tree into map[string]any / []any containers, the shape
// produced by encoding/json.
func ToNative(value any) any {
	switch current := value.(type) {
	case *Map:
		out := make(map[string]any, current.Len())
		current.Range(func(key string, item any) bool {
			out[key] = ToNative(item)
			return true
		})
		return out
	case []any:
		out := make([]any, len(current))
		for i, item := range current {
			out[i] = ToNative(item)
		}
		return out
	default:
		return value
	}
}

// ToMapSlice converts a tree into yaml.MapSlice containers so YAML output
// keeps insertion order. json.Number values become int64 or float64.
func ToMapSlice(value any) any {
	switch current := value.(type) {
	case json.Number:
		if parsed, err := current.Int64(); err == nil {
			return parsed
		}
		if parsed, err := current.Float64(); err == nil {
			return parsed
		}
		return current.String()
	case *Map:
		out := make(yaml.MapSlice, 0, current.Len())
		current.Range(func(key string, item any) bool {
			out = append(out, yaml.MapItem{Key: key, Value: ToMapSlice(item)})
			return true
		})
		return out
	case []any:
		out := make([]any, len(current))
		for i, item := range current {
			out[i] = ToMapSlice(item)
		}
		return out
	default:
		return value
	}
}

// IsContainer reports whether value is a *Map or a list.
func IsContainer(value any) bool {
	switch value.(type) {
	case *Map, []any:
		return true
	default:
		return false
	}
}

// Walk visits every value nested inside root depth-first, in document order,
// until fn returns false. root itself is not visited.
func Walk(root any, fn func(value any) bool) {
	pending := stack.NewWithCapacity[any](16)
	pushChildren(pending, root)

	for !pending.IsEmpty() {
		value, _ := pending.Pop()
		if !fn(value) {
			return
		}
		pushChildren(pending, value)
	}
}

func pushChildren(pending *stack.Stack[any], value any) {
	var children []any
	switch current := value.(type) {
	case *Map:
		children = current.Values()
	case []any:
		children = slices.Clone(current)
	default:
		return
	}

	slices.Reverse(children)
	pending.Push(children...)
}

func sortedKeys(entries map[string]any) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// compareKeys orders integer keys numerically and ahead of any other key.
func compareKeys(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(x, y)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func keyString(key any) string {
	if text, ok := key.(string); ok {
		return text
	}
	return fmt.Sprint(key)
}
