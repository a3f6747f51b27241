// Package function holds the named column transforms that select clauses
// and where-helpers apply to values.
package function

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/jacoelho/qarray/internal/datetime"
	"github.com/jacoelho/qarray/internal/number"
	"github.com/jacoelho/qarray/tree"
)

var ErrUnknownFunction = errors.New("unknown function")

// Func transforms a single column value.
type Func func(value any) any

// Registry maps function names to transforms. Registration is append-only:
// the first function registered under a name wins.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

var defaultRegistry = NewRegistry()

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	return &Registry{
		funcs: map[string]Func{
			"date":      dateOf,
			"year":      yearOf,
			"month":     monthOf,
			"unix_time": unixTime,
			"unix_date": unixDate,
			"count":     count,
			"lowercase": lowercase,
			"uppercase": uppercase,
			"round":     round,
			"ceil":      numeric(math.Ceil),
			"floor":     numeric(math.Floor),
			"sqrt":      numeric(math.Sqrt),
			"sin":       numeric(math.Sin),
			"cos":       numeric(math.Cos),
		},
	}
}

// Default returns the process-wide registry shared by all queries.
func Default() *Registry {
	return defaultRegistry
}

// Register adds fn under name on the default registry.
func Register(name string, fn Func) bool {
	return defaultRegistry.Register(name, fn)
}

// Lookup finds name on the default registry.
func Lookup(name string) (Func, error) {
	return defaultRegistry.Lookup(name)
}

// Register adds fn under name. It returns false when name is empty, fn is
// nil, or the name is already taken.
func (r *Registry) Register(name string, fn Func) bool {
	if name == "" || fn == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return false
	}
	r.funcs[name] = fn
	return true
}

func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn, nil
}

// Names lists the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Date-based functions return nil for values that are not dates.

func dateOf(value any) any {
	if date, ok := datetime.Date(value); ok {
		return date
	}
	return nil
}

func yearOf(value any) any {
	if year, ok := datetime.Year(value); ok {
		return year
	}
	return nil
}

func monthOf(value any) any {
	if month, ok := datetime.Month(value); ok {
		return month
	}
	return nil
}

func unixTime(value any) any {
	if parsed, ok := datetime.Parse(value); ok {
		return parsed.Unix()
	}
	return nil
}

func unixDate(value any) any {
	if seconds, ok := datetime.UnixDate(value); ok {
		return seconds
	}
	return nil
}

func count(value any) any {
	switch current := value.(type) {
	case []any:
		return len(current)
	case *tree.Map:
		return current.Len()
	default:
		return 0
	}
}

func lowercase(value any) any {
	if text, ok := value.(string); ok {
		return strings.ToLower(text)
	}
	return value
}

func uppercase(value any) any {
	if text, ok := value.(string); ok {
		return strings.ToUpper(text)
	}
	return value
}

// round keeps one decimal place.
func round(value any) any {
	parsed, ok := number.Loose(value)
	if !ok {
		return value
	}
	return math.Round(parsed*10) / 10
}

func numeric(fn func(float64) float64) Func {
	return func(value any) any {
		parsed, ok := number.Loose(value)
		if !ok {
			return value
		}
		return fn(parsed)
	}
}
