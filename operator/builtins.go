package operator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/jacoelho/qarray/internal/datetime"
	"github.com/jacoelho/qarray/tree"
)

func evaluateIsNull(value tree.Lookup, _ any) bool {
	actual, found := value.Value()
	return !found || actual == nil
}

func evaluateIsNotNull(value tree.Lookup, _ any) bool {
	actual, found := value.Value()
	return found && actual != nil
}

func evaluateExists(value tree.Lookup, _ any) bool {
	return !value.Missing()
}

func evaluateNotExists(value tree.Lookup, _ any) bool {
	return value.Missing()
}

func evaluateIn(value, comparable any) bool {
	items, ok := elements(comparable)
	return ok && containsLoose(items, value)
}

func evaluateNotIn(value, comparable any) bool {
	items, ok := elements(comparable)
	return ok && !containsLoose(items, value)
}

func evaluateInArray(value, comparable any) bool {
	items, ok := elements(value)
	return ok && containsLoose(items, comparable)
}

func elements(collection any) ([]any, bool) {
	switch current := collection.(type) {
	case []any:
		return current, true
	case *tree.Map:
		return current.Values(), true
	default:
		return nil, false
	}
}

func containsLoose(items []any, needle any) bool {
	for _, item := range items {
		if LooseEqual(item, needle) {
			return true
		}
	}
	return false
}

func evaluateStartsWith(value, comparable any) bool {
	return stringPair(value, comparable, strings.HasPrefix)
}

func evaluateEndsWith(value, comparable any) bool {
	return stringPair(value, comparable, strings.HasSuffix)
}

func evaluateContains(value, comparable any) bool {
	return stringPair(value, comparable, strings.Contains)
}

func evaluateMatch(value, comparable any) bool {
	return stringPair(value, comparable, func(text, pattern string) bool {
		compiled, err := patterns.Compile(pattern)
		if err != nil {
			return false
		}
		return compiled.MatchString(text)
	})
}

func stringPair(value, comparable any, test func(string, string) bool) bool {
	text, ok := ScalarString(value)
	if !ok {
		return false
	}
	other, ok := ScalarString(comparable)
	if !ok {
		return false
	}
	return test(text, other)
}

var patterns = newCachedRegexCompiler()

type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Compile anchors pattern to the whole input.
func (c *cachedRegexCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	pattern = strings.TrimSpace(pattern)

	c.mu.RLock()
	if compiled, ok := c.patterns[pattern]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

func evaluateDateEqual(value, comparable any) bool {
	left, ok := datetime.Date(value)
	if !ok {
		return false
	}
	right, ok := datetime.Date(comparable)
	return ok && left == right
}

func evaluateMonthEqual(value, comparable any) bool {
	return datePartEqual(datetime.Month, value, comparable)
}

func evaluateYearEqual(value, comparable any) bool {
	return datePartEqual(datetime.Year, value, comparable)
}

// datePartEqual compares one component of a date loosely, so "03" matches 3.
func datePartEqual(part func(value any) (string, bool), value, comparable any) bool {
	actual, ok := part(value)
	return ok && LooseEqual(actual, comparable)
}

func evaluateInstance(value, comparable any) bool {
	switch expected := comparable.(type) {
	case reflect.Type:
		actual := reflect.TypeOf(value)
		return actual != nil && actual.AssignableTo(expected)
	case string:
		return fmt.Sprintf("%T", value) == expected
	default:
		return false
	}
}

func evaluateType(value, comparable any) bool {
	expected, ok := comparable.(string)
	return ok && strings.EqualFold(strings.TrimSpace(expected), TypeName(value))
}

// evaluateAny searches every nested value of a collection.
func evaluateAny(value, comparable any) bool {
	if !tree.IsContainer(value) {
		return false
	}

	found := false
	tree.Walk(value, func(nested any) bool {
		if tree.IsContainer(nested) {
			return true
		}
		found = LooseEqual(nested, comparable)
		return !found
	})
	return found
}

func evaluateBool(value, comparable any) bool {
	actual, ok := value.(bool)
	if !ok {
		return false
	}
	if expected, ok := comparable.(bool); ok {
		return actual == expected
	}
	return true
}
