package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jacoelho/qarray/internal/number"
	"github.com/jacoelho/qarray/operator"
)

// SortBy orders rows by column. Any order other than "desc" sorts
// ascending. Strings compare case-insensitively and rows with a missing or
// nil column sort first, then booleans, numbers, strings and collections.
// The sort is stable.
func (q *Query) SortBy(column string, order ...string) (*Query, error) {
	rows, keyed, err := q.rows()
	if err != nil {
		return nil, err
	}

	type sortable struct {
		row entry
		key any
	}

	items := make([]sortable, len(rows))
	for i, row := range rows {
		key, _ := q.columnValue(row.value, column)
		if text, ok := key.(string); ok {
			key = strings.ToLower(text)
		}
		items[i] = sortable{row: row, key: key}
	}

	descending := isDescending(order)
	slices.SortStableFunc(items, func(a, b sortable) int {
		result := compareKeys(a.key, b.key)
		if descending {
			return -result
		}
		return result
	})

	sorted := make([]entry, len(items))
	for i, item := range items {
		sorted[i] = item.row
	}
	return q.derive(cloneRows(sorted, keyed)), nil
}

// Sort orders scalar elements by their own value.
func (q *Query) Sort(order ...string) (*Query, error) {
	return q.SortBy("", order...)
}

// compareKeys orders nil, booleans, numbers, strings and then anything else.
// Numeric strings rank as numbers. Values within a class compare by value;
// collections are all equal to each other.
func compareKeys(a, b any) int {
	rankA, rankB := sortRank(a), sortRank(b)
	if rankA != rankB {
		return cmp.Compare(rankA, rankB)
	}
	if rankA == rankNil || rankA == rankOther {
		return 0
	}

	result, _ := operator.Compare(a, b)
	return result
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func sortRank(value any) int {
	switch value.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	}
	if _, ok := number.Loose(value); ok {
		return rankNumber
	}
	if _, ok := value.(string); ok {
		return rankString
	}
	return rankOther
}

func isDescending(order []string) bool {
	return strings.ToLower(strings.TrimSpace(firstOf(order))) == "desc"
}
