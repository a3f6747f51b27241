// Package condition collects where clauses into OR-combined groups of
// AND-combined rules and evaluates them against rows.
package condition

import (
	"fmt"

	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

// Rule is a single where clause. Predicate rules test the whole row and
// ignore the other fields; path rules resolve Path in the row, optionally
// run Transform on the found value and compare it with Value using the
// operator registered under Token. A Transform reporting false turns the
// value into a missing one.
type Rule struct {
	Path      string
	Token     string
	Value     any
	Transform func(value any) (any, bool)
	Predicate func(row any) (bool, error)
}

// Group is a conjunction of rules.
type Group []Rule

// Builder accumulates groups in insertion order.
type Builder struct {
	groups []Group
}

// Open makes sure there is a group for Where to append to.
func (b *Builder) Open() {
	if len(b.groups) == 0 {
		b.groups = append(b.groups, Group{})
	}
}

// OpenNew starts a new OR branch.
func (b *Builder) OpenNew() {
	b.groups = append(b.groups, Group{})
}

// Where appends rule to the current group.
func (b *Builder) Where(rule Rule) {
	b.Open()
	last := len(b.groups) - 1
	b.groups[last] = append(b.groups[last], rule)
}

// OrWhere appends rule to a new group.
func (b *Builder) OrWhere(rule Rule) {
	b.OpenNew()
	b.Where(rule)
}

// Groups returns a copy of the collected groups.
func (b *Builder) Groups() []Group {
	out := make([]Group, len(b.groups))
	for i, group := range b.groups {
		out[i] = append(Group(nil), group...)
	}
	return out
}

// Empty reports whether no rule has been added. Groups opened without rules
// do not count.
func (b *Builder) Empty() bool {
	for _, group := range b.groups {
		if len(group) > 0 {
			return false
		}
	}
	return true
}

func (b *Builder) Reset() {
	b.groups = nil
}

func (b *Builder) Clone() Builder {
	return Builder{groups: b.Groups()}
}

type compiledRule struct {
	path      string
	op        operator.Operator
	value     any
	transform func(any) (any, bool)
	predicate func(row any) (bool, error)
}

// Matcher is a compiled set of groups.
type Matcher struct {
	groups    [][]compiledRule
	delimiter string
}

// Compile resolves every operator token once. Comparison values are
// normalised into tree form so they compare like decoded data.
func Compile(groups []Group, registry *operator.Registry, delimiter string) (*Matcher, error) {
	if registry == nil {
		registry = operator.Default()
	}

	m := &Matcher{
		groups:    make([][]compiledRule, 0, len(groups)),
		delimiter: delimiter,
	}

	for i, group := range groups {
		compiled := make([]compiledRule, 0, len(group))
		for j, rule := range group {
			if rule.Predicate != nil {
				compiled = append(compiled, compiledRule{predicate: rule.Predicate})
				continue
			}

			op, err := registry.Resolve(rule.Token)
			if err != nil {
				return nil, fmt.Errorf("group %d rule %d on %q: %w", i, j, rule.Path, err)
			}
			compiled = append(compiled, compiledRule{
				path:      rule.Path,
				op:        op,
				value:     tree.Normalize(rule.Value),
				transform: rule.Transform,
			})
		}
		m.groups = append(m.groups, compiled)
	}

	return m, nil
}

// Keep reports whether row satisfies any group. A matcher without groups
// keeps every row; an empty group is satisfied by every row.
func (m *Matcher) Keep(row any) (bool, error) {
	if len(m.groups) == 0 {
		return true, nil
	}

	for _, group := range m.groups {
		ok, err := m.matchAll(group, row)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) matchAll(group []compiledRule, row any) (bool, error) {
	for _, rule := range group {
		ok, err := m.match(rule, row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) match(rule compiledRule, row any) (bool, error) {
	if rule.predicate != nil {
		return rule.predicate(row)
	}

	value := tree.Resolve(row, rule.path, m.delimiter)
	if rule.transform != nil {
		if actual, found := value.Value(); found {
			value = tree.NotFound()
			if transformed, ok := rule.transform(actual); ok {
				value = tree.Found(transformed)
			}
		}
	}

	return rule.op.Apply(value, rule.value), nil
}
