package condition

import (
	"errors"
	"strings"
	"testing"

	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

func row(pairs ...any) *tree.Map {
	m := tree.NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestBuilder_Grouping(t *testing.T) {
	t.Parallel()

	var b Builder
	if !b.Empty() {
		t.Fatal("new builder should be empty")
	}

	b.Where(Rule{Path: "a", Token: "=", Value: 1})
	b.Where(Rule{Path: "b", Token: "=", Value: 2})
	b.OrWhere(Rule{Path: "c", Token: "=", Value: 3})

	groups := b.Groups()
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("Groups() = %+v", groups)
	}

	groups[0][0].Path = "mutated"
	if b.Groups()[0][0].Path != "a" {
		t.Fatal("Groups() should return a copy")
	}

	b.Reset()
	b.OpenNew()
	if !b.Empty() {
		t.Fatal("builder with only empty groups should be empty")
	}
}

func TestMatcher_Keep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		groups []Group
		row    any
		want   bool
	}{
		{
			name: "no_groups",
			row:  row("a", 1),
			want: true,
		},
		{
			name:   "empty_group",
			groups: []Group{{}},
			row:    row("a", 1),
			want:   true,
		},
		{
			name: "and_all_true",
			groups: []Group{{
				{Path: "a", Token: "=", Value: 1},
				{Path: "b", Token: ">", Value: 1},
			}},
			row:  row("a", 1, "b", 2),
			want: true,
		},
		{
			name: "and_one_false",
			groups: []Group{{
				{Path: "a", Token: "=", Value: 1},
				{Path: "b", Token: ">", Value: 5},
			}},
			row:  row("a", 1, "b", 2),
			want: false,
		},
		{
			name: "or_second_group",
			groups: []Group{
				{{Path: "a", Token: "=", Value: 9}},
				{{Path: "b", Token: "=", Value: 2}},
			},
			row:  row("a", 1, "b", 2),
			want: true,
		},
		{
			name:   "missing_key",
			groups: []Group{{{Path: "missing", Token: "!=", Value: 1}}},
			row:    row("a", 1),
			want:   false,
		},
		{
			name:   "nested_path",
			groups: []Group{{{Path: "user.name", Token: "=", Value: "ann"}}},
			row:    row("user", row("name", "ann")),
			want:   true,
		},
		{
			name:   "typed_values_normalised",
			groups: []Group{{{Path: "id", Token: "in", Value: []int{1, 2}}}},
			row:    row("id", 2),
			want:   true,
		},
		{
			name: "transform",
			groups: []Group{{{
				Path:      "name",
				Token:     "=",
				Value:     "ann",
				Transform: func(value any) (any, bool) { return strings.ToLower(value.(string)), true },
			}}},
			row:  row("name", "ANN"),
			want: true,
		},
		{
			name: "transform_rejects",
			groups: []Group{{{
				Path:      "name",
				Token:     "null",
				Transform: func(any) (any, bool) { return nil, false },
			}}},
			row:  row("name", "ANN"),
			want: true,
		},
		{
			name: "predicate",
			groups: []Group{{{
				Predicate: func(row any) (bool, error) {
					return row.(*tree.Map).Has("flag"), nil
				},
			}}},
			row:  row("flag", nil),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := Compile(tt.groups, operator.NewRegistry(), tree.DefaultDelimiter)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := m.Keep(tt.row)
			if err != nil {
				t.Fatalf("Keep() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Keep() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcher_ShortCircuit(t *testing.T) {
	t.Parallel()

	calls := 0
	counting := Rule{Predicate: func(any) (bool, error) {
		calls++
		return true, nil
	}}

	groups := []Group{
		{{Path: "a", Token: "=", Value: 2}, counting},
		{counting},
		{counting},
	}

	m, err := Compile(groups, nil, ".")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ok, err := m.Keep(row("a", 1))
	if err != nil || !ok {
		t.Fatalf("Keep() = (%v, %v), want (true, nil)", ok, err)
	}
	if calls != 1 {
		t.Fatalf("predicate called %d times, want 1", calls)
	}
}

func TestMatcher_PredicateError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m, err := Compile([]Group{{{Predicate: func(any) (bool, error) { return false, boom }}}}, nil, ".")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := m.Keep(row()); !errors.Is(err, boom) {
		t.Fatalf("Keep() error = %v, want boom", err)
	}
}

func TestCompile_UnknownOperator(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Group{{{Path: "a", Token: "~"}}}, operator.NewRegistry(), ".")
	if !errors.Is(err, operator.ErrConditionNotAllowed) {
		t.Fatalf("Compile() error = %v, want ErrConditionNotAllowed", err)
	}
}
