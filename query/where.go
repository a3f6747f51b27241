package query

import (
	"strings"

	"github.com/jacoelho/qarray/internal/condition"
	"github.com/jacoelho/qarray/internal/datetime"
	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

// Where adds "path token value" to the current condition group.
func (q *Query) Where(path, token string, value any) *Query {
	return q.where(condition.Rule{Path: path, Token: token, Value: value})
}

// OrWhere starts a new condition group with "path token value".
func (q *Query) OrWhere(path, token string, value any) *Query {
	return q.orWhere(condition.Rule{Path: path, Token: token, Value: value})
}

// WhereGroup calls fn with the query so several conditions can be added to
// the current group at once.
func (q *Query) WhereGroup(fn func(*Query)) *Query {
	q.conditions.Open()
	fn(q)
	q.invalidate()
	return q
}

// OrWhereGroup is WhereGroup on a new group.
func (q *Query) OrWhereGroup(fn func(*Query)) *Query {
	q.conditions.OpenNew()
	fn(q)
	q.invalidate()
	return q
}

// CallableWhere filters with fn over the whole row.
func (q *Query) CallableWhere(fn func(row any) bool) *Query {
	return q.where(condition.Rule{Predicate: predicate(fn)})
}

func (q *Query) OrCallableWhere(fn func(row any) bool) *Query {
	return q.orWhere(condition.Rule{Predicate: predicate(fn)})
}

func (q *Query) WhereIn(path string, values any) *Query {
	return q.Where(path, "in", values)
}

func (q *Query) WhereNotIn(path string, values any) *Query {
	return q.Where(path, "notin", values)
}

func (q *Query) WhereInArray(path string, value any) *Query {
	return q.Where(path, "inarray", value)
}

func (q *Query) WhereNotInArray(path string, value any) *Query {
	return q.Where(path, "notinarray", value)
}

// WhereNull matches rows where path is nil or missing.
func (q *Query) WhereNull(path string) *Query {
	return q.Where(path, "null", nil)
}

func (q *Query) WhereNotNull(path string) *Query {
	return q.Where(path, "notnull", nil)
}

func (q *Query) WhereExists(path string) *Query {
	return q.Where(path, "exists", nil)
}

func (q *Query) WhereNotExists(path string) *Query {
	return q.Where(path, "notexists", nil)
}

func (q *Query) WhereBool(path string, value bool) *Query {
	return q.Where(path, "bool", value)
}

func (q *Query) WhereStartsWith(path, value string) *Query {
	return q.Where(path, "startswith", value)
}

func (q *Query) WhereEndsWith(path, value string) *Query {
	return q.Where(path, "endswith", value)
}

// WhereMatch matches the whole value against a regular expression.
func (q *Query) WhereMatch(path, pattern string) *Query {
	return q.Where(path, "match", pattern)
}

func (q *Query) WhereContains(path, value string) *Query {
	return q.Where(path, "contains", value)
}

// WhereLike is a case-insensitive WhereContains.
func (q *Query) WhereLike(path, value string) *Query {
	return q.where(condition.Rule{
		Path:      path,
		Token:     "contains",
		Value:     strings.ToLower(value),
		Transform: lowercase,
	})
}

// WhereDate compares the calendar date of path with value using token.
// Dates compare as YYYY-MM-DD strings, so ordering tokens work too.
func (q *Query) WhereDate(path, token string, value any) *Query {
	if date, ok := datetime.Date(value); ok {
		value = date
	}
	return q.where(condition.Rule{Path: path, Token: token, Value: value, Transform: stringOf(datetime.Date)})
}

// WhereMonth compares the two digit month of path with value.
func (q *Query) WhereMonth(path, token string, value any) *Query {
	return q.where(condition.Rule{Path: path, Token: token, Value: value, Transform: stringOf(datetime.Month)})
}

// WhereYear compares the four digit year of path with value.
func (q *Query) WhereYear(path, token string, value any) *Query {
	return q.where(condition.Rule{Path: path, Token: token, Value: value, Transform: stringOf(datetime.Year)})
}

// WhereCount compares the length of the collection at path with value.
func (q *Query) WhereCount(path, token string, value any) *Query {
	return q.where(condition.Rule{Path: path, Token: token, Value: value, Transform: length})
}

// WhereInstance matches on the Go type of the value: comparable is either a
// reflect.Type or a type name as printed by %T.
func (q *Query) WhereInstance(path string, comparable any) *Query {
	return q.Where(path, "instance", comparable)
}

// WhereDataType matches on the JSON type name of the value.
func (q *Query) WhereDataType(path, typeName string) *Query {
	return q.Where(path, "type", typeName)
}

// WhereAny matches collections holding value at any depth.
func (q *Query) WhereAny(path string, value any) *Query {
	return q.Where(path, "any", value)
}

func (q *Query) where(rule condition.Rule) *Query {
	q.conditions.Where(rule)
	q.invalidate()
	return q
}

func (q *Query) orWhere(rule condition.Rule) *Query {
	q.conditions.OrWhere(rule)
	q.invalidate()
	return q
}

func predicate(fn func(row any) bool) func(row any) (bool, error) {
	return func(row any) (bool, error) {
		return fn(row), nil
	}
}

func stringOf(fn func(any) (string, bool)) func(any) (any, bool) {
	return func(value any) (any, bool) {
		return fn(value)
	}
}

func lowercase(value any) (any, bool) {
	text, ok := operator.ScalarString(value)
	if !ok {
		return nil, false
	}
	return strings.ToLower(text), true
}

func length(value any) (any, bool) {
	switch current := value.(type) {
	case []any:
		return len(current), true
	case *tree.Map:
		return current.Len(), true
	default:
		return nil, false
	}
}
