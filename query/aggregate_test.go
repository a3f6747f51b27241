package query

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/jacoelho/qarray/tree"
)

func TestQuery_Aggregates(t *testing.T) {
	t.Parallel()

	q := New(users()).From("users")

	tests := []struct {
		name string
		fn   func() (float64, error)
		want float64
	}{
		{name: "sum", fn: func() (float64, error) { return q.Sum("age") }, want: 93},
		{name: "min", fn: func() (float64, error) { return q.Min("age") }, want: 17},
		{name: "max", fn: func() (float64, error) { return q.Max("age") }, want: 45},
		{name: "avg", fn: func() (float64, error) { return q.Avg("age") }, want: 31},
		{name: "sum_ids", fn: func() (float64, error) { return q.Sum("id") }, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("%s error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Fatalf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestQuery_AggregateScalars(t *testing.T) {
	t.Parallel()

	q := New([]any{3, "4", "x", nil, 1.5})

	sum, err := q.Sum()
	if err != nil || sum != 8.5 {
		t.Fatalf("Sum() = (%v, %v), want (8.5, nil)", sum, err)
	}
	minimum, err := q.Min()
	if err != nil || minimum != 1.5 {
		t.Fatalf("Min() = (%v, %v), want (1.5, nil)", minimum, err)
	}
}

func TestQuery_EmptyAggregation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    func() *Query
	}{
		{name: "no_rows_match", q: func() *Query { return New(users()).From("users").Where("age", ">", 100) }},
		{name: "missing_node", q: func() *Query { return New(users()).From("nothing.here") }},
		{name: "no_numeric_values", q: func() *Query { return New(users()).From("users").Select("name") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := tt.q()
			for name, fn := range map[string]func(...string) (float64, error){
				"min": q.Min,
				"max": q.Max,
				"avg": q.Avg,
			} {
				if _, err := fn("age"); !errors.Is(err, ErrEmptyAggregation) {
					t.Fatalf("%s error = %v, want ErrEmptyAggregation", name, err)
				}
			}

			sum, err := q.Sum("age")
			if err != nil || sum != 0 {
				t.Fatalf("Sum() = (%v, %v), want (0, nil)", sum, err)
			}
		})
	}
}

func TestQuery_CountMissingNode(t *testing.T) {
	t.Parallel()

	q := New(users()).From("users.9")

	count, err := q.Count()
	if err != nil || count != 0 {
		t.Fatalf("Count() = (%d, %v), want (0, nil)", count, err)
	}
	exists, err := q.Exists()
	if err != nil || exists {
		t.Fatalf("Exists() = (%v, %v), want (false, nil)", exists, err)
	}
	got, err := q.Get()
	if err != nil || got != nil {
		t.Fatalf("Get() = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestQuery_GroupBy(t *testing.T) {
	t.Parallel()

	grouped, err := New(users()).From("users").GroupBy("city")
	if err != nil {
		t.Fatalf("GroupBy() error = %v", err)
	}

	keys, err := grouped.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if !slices.Equal(keys, []string{"Lisbon", "Porto"}) {
		t.Fatalf("Keys() = %v, want [Lisbon Porto]", keys)
	}

	lisbon := idsOf(t, New(users()).From("users").Where("city", "=", "Lisbon"))
	group := idsOf(t, grouped.Copy().From("Lisbon"))
	if !slices.Equal(group, lisbon) {
		t.Fatalf("Lisbon group = %v, want %v", group, lisbon)
	}
}

func TestQuery_CountGroupBy(t *testing.T) {
	t.Parallel()

	counts, err := New(users()).From("users").CountGroupBy("active")
	if err != nil {
		t.Fatalf("CountGroupBy() error = %v", err)
	}

	got, err := counts.ToArray()
	if err != nil {
		t.Fatalf("ToArray() error = %v", err)
	}
	want := map[string]any{"true": 2, "false": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CountGroupBy() = %v, want %v", got, want)
	}
}

func TestQuery_Distinct(t *testing.T) {
	t.Parallel()

	distinct, err := New(users()).From("users").Distinct("city")
	if err != nil {
		t.Fatalf("Distinct() error = %v", err)
	}
	if got := idsOf(t, distinct); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("ids = %v, want [1 2]", got)
	}
}

func TestQuery_SortBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   any
		column string
		order  []string
		want   []int
	}{
		{
			name:   "stable_case_folded",
			data:   []any{obj("id", 1, "n", "b"), obj("id", 2, "n", "A"), obj("id", 3, "n", "a")},
			column: "n",
			want:   []int{2, 3, 1},
		},
		{
			name:   "descending_missing_last",
			data:   users(),
			column: "age",
			order:  []string{" DESC "},
			want:   []int{4, 1, 2, 3},
		},
		{
			name:   "ascending_missing_first",
			data:   users(),
			column: "age",
			order:  []string{"up"},
			want:   []int{3, 2, 1, 4},
		},
		{
			name:   "names",
			data:   users(),
			column: "name",
			want:   []int{1, 2, 3, 4},
		},
		{
			name:   "numeric_strings",
			data:   []any{obj("id", 1, "v", "10"), obj("id", 2, "v", "9"), obj("id", 3, "v", 9.5)},
			column: "v",
			want:   []int{2, 3, 1},
		},
		{
			name: "mixed_types",
			data: []any{
				obj("id", 1, "v", "b"),
				obj("id", 2, "v", []any{1}),
				obj("id", 3, "v", 7),
				obj("id", 4, "v", true),
				obj("id", 5, "v", "a"),
				obj("id", 6),
				obj("id", 7, "v", "3"),
				obj("id", 8, "v", false),
			},
			column: "v",
			want:   []int{6, 8, 4, 7, 3, 5, 1, 2},
		},
		{
			name: "mixed_types_desc",
			data: []any{
				obj("id", 1, "v", "x"),
				obj("id", 2, "v", 1),
				obj("id", 3, "v", nil),
				obj("id", 4, "v", obj("k", 1)),
			},
			column: "v",
			order:  []string{"desc"},
			want:   []int{4, 1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := New(tt.data)
			if _, ok := tt.data.(*tree.Map); ok {
				q.From("users")
			}

			sorted, err := q.SortBy(tt.column, tt.order...)
			if err != nil {
				t.Fatalf("SortBy() error = %v", err)
			}
			if got := idsOf(t, sorted); !slices.Equal(got, tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_Sort(t *testing.T) {
	t.Parallel()

	ages, err := New(users()).From("users").Pluck("age")
	if err != nil {
		t.Fatalf("Pluck() error = %v", err)
	}

	asc, err := ages.Sort()
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if got, _ := asc.Get(); !reflect.DeepEqual(got, []any{17, 31, 45}) {
		t.Fatalf("Sort() = %v", got)
	}

	desc, err := ages.Sort("desc")
	if err != nil {
		t.Fatalf("Sort(desc) error = %v", err)
	}
	if got, _ := desc.Get(); !reflect.DeepEqual(got, []any{45, 31, 17}) {
		t.Fatalf("Sort(desc) = %v", got)
	}
}
