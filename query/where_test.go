package query

import (
	"reflect"
	"slices"
	"testing"

	"github.com/jacoelho/qarray/tree"
)

func TestQuery_WhereHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(q *Query) *Query
		want  []int
	}{
		{name: "in", build: func(q *Query) *Query { return q.WhereIn("city", []string{"Porto"}) }, want: []int{2}},
		{name: "not_in", build: func(q *Query) *Query { return q.WhereNotIn("city", []any{"Lisbon"}) }, want: []int{2, 4}},
		{name: "in_array", build: func(q *Query) *Query { return q.WhereInArray("tags", "dev") }, want: []int{1, 3}},
		{name: "not_in_array", build: func(q *Query) *Query { return q.WhereNotInArray("tags", "dev") }, want: []int{2, 4}},
		{name: "bool", build: func(q *Query) *Query { return q.WhereBool("active", true) }, want: []int{1, 3}},
		{name: "starts_with", build: func(q *Query) *Query { return q.WhereStartsWith("name", "b") }, want: []int{2}},
		{name: "ends_with", build: func(q *Query) *Query { return q.WhereEndsWith("city", "bon") }, want: []int{1, 3}},
		{name: "match", build: func(q *Query) *Query { return q.WhereMatch("name", "[A-Z].*") }, want: []int{1, 3}},
		{name: "contains", build: func(q *Query) *Query { return q.WhereContains("city", "ort") }, want: []int{2}},
		{name: "like", build: func(q *Query) *Query { return q.WhereLike("name", "AN") }, want: []int{1, 4}},
		{name: "date", build: func(q *Query) *Query { return q.WhereDate("joined", ">=", "2022-01-01") }, want: []int{2, 4}},
		{name: "date_equal", build: func(q *Query) *Query { return q.WhereDate("joined", "=", "2021-01-15T09:00:00Z") }, want: []int{3}},
		{name: "month", build: func(q *Query) *Query { return q.WhereMonth("joined", "=", 5) }, want: []int{1, 4}},
		{name: "year", build: func(q *Query) *Query { return q.WhereYear("joined", "=", "2021") }, want: []int{1, 3}},
		{name: "count", build: func(q *Query) *Query { return q.WhereCount("tags", ">", 1) }, want: []int{1, 4}},
		{name: "count_not_collection", build: func(q *Query) *Query { return q.WhereCount("name", ">=", 0) }, want: []int{}},
		{name: "instance", build: func(q *Query) *Query { return q.WhereInstance("age", reflect.TypeOf(0)) }, want: []int{1, 2, 4}},
		{name: "data_type", build: func(q *Query) *Query { return q.WhereDataType("city", "null") }, want: []int{4}},
		{name: "any", build: func(q *Query) *Query { return q.WhereAny("tags", "oncall") }, want: []int{4}},
		{name: "dates_operator", build: func(q *Query) *Query { return q.Where("joined", "dates", "2023-05-01T23:59:00Z") }, want: []int{4}},
		{
			name: "callable",
			build: func(q *Query) *Query {
				return q.CallableWhere(func(row any) bool {
					return row.(*tree.Map).Len() == 7
				})
			},
			want: []int{1, 2},
		},
		{
			name: "or_callable",
			build: func(q *Query) *Query {
				return q.Where("id", "=", 1).OrCallableWhere(func(row any) bool {
					id, _ := row.(*tree.Map).Get("id")
					return id == 4
				})
			},
			want: []int{1, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := tt.build(New(users()).From("users"))
			if got := idsOf(t, q); !slices.Equal(got, tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}
