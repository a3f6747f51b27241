package query

import (
	"fmt"

	"github.com/jacoelho/qarray/internal/number"
	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

// Count returns the number of results. A missing node counts as zero and a
// scalar node as one.
func (q *Query) Count() (int, error) {
	if err := q.prepare(); err != nil {
		return 0, err
	}
	return size(q.result), nil
}

// Size is an alias of Count.
func (q *Query) Size() (int, error) {
	return q.Count()
}

// Exists reports whether the query has any result.
func (q *Query) Exists() (bool, error) {
	count, err := q.Count()
	return count > 0, err
}

// Sum adds the numeric values of column, or of the elements themselves
// when no column is given. Values that are not numbers are skipped.
func (q *Query) Sum(column ...string) (float64, error) {
	values, err := q.numbers(column)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, value := range values {
		total += value
	}
	return total, nil
}

func (q *Query) Min(column ...string) (float64, error) {
	values, err := q.aggregate("min", column)
	if err != nil {
		return 0, err
	}
	return minOf(values), nil
}

func (q *Query) Max(column ...string) (float64, error) {
	values, err := q.aggregate("max", column)
	if err != nil {
		return 0, err
	}
	return maxOf(values), nil
}

func (q *Query) Avg(column ...string) (float64, error) {
	values, err := q.aggregate("avg", column)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, value := range values {
		total += value
	}
	return total / float64(len(values)), nil
}

func (q *Query) aggregate(name string, column []string) ([]float64, error) {
	values, err := q.numbers(column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyAggregation, name)
	}
	return values, nil
}

func (q *Query) numbers(column []string) ([]float64, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	path := firstOf(column)
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		value, found := q.columnValue(row.value, path)
		if !found {
			continue
		}
		if parsed, ok := number.Loose(value); ok {
			values = append(values, parsed)
		}
	}
	return values, nil
}

// columnValue resolves path inside row. An empty path is the row itself.
func (q *Query) columnValue(row any, path string) (any, bool) {
	if path == "" {
		return row, true
	}
	return tree.Resolve(row, path, q.delimiter).Value()
}

// GroupBy groups rows by the value of column. Rows where the column is
// missing, nil or not a scalar are left out.
func (q *Query) GroupBy(column string) (*Query, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	groups := tree.NewMap()
	for _, row := range rows {
		key, ok := q.groupKey(row.value, column)
		if !ok {
			continue
		}
		current, _ := groups.Get(key)
		list, _ := current.([]any)
		groups.Set(key, append(list, tree.Clone(row.value)))
	}
	return q.derive(groups), nil
}

// CountGroupBy counts the rows per value of column.
func (q *Query) CountGroupBy(column string) (*Query, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	counts := tree.NewMap()
	for _, row := range rows {
		key, ok := q.groupKey(row.value, column)
		if !ok {
			continue
		}
		current, _ := counts.Get(key)
		total, _ := current.(int)
		counts.Set(key, total+1)
	}
	return q.derive(counts), nil
}

// Distinct keeps the first row for every value of column.
func (q *Query) Distinct(column string) (*Query, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		key, ok := q.groupKey(row.value, column)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tree.Clone(row.value))
	}
	return q.derive(out), nil
}

func (q *Query) groupKey(row any, column string) (string, bool) {
	value, found := q.columnValue(row, column)
	if !found {
		return "", false
	}
	return operator.ScalarString(value)
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, value := range values[1:] {
		out = min(out, value)
	}
	return out
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, value := range values[1:] {
		out = max(out, value)
	}
	return out
}
