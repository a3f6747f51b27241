// Package projection narrows rows to selected columns after dropping
// excluded ones, running per-column transform chains on what is kept.
package projection

import (
	"fmt"

	"github.com/jacoelho/qarray/function"
	"github.com/jacoelho/qarray/tree"
)

// ColumnFunc is an inline transform. It sees the value and the row the
// value came from.
type ColumnFunc func(value any, row *tree.Map) any

// Column selects a key. Funcs are registered function names applied in
// order; Fn, when set, runs after them.
type Column struct {
	Name  string
	Funcs []string
	Fn    ColumnFunc
}

type column struct {
	chain []function.Func
	fn    ColumnFunc
}

type Projector struct {
	except  map[string]struct{}
	columns map[string]column
}

// New resolves every function name up front. A later Column with the same
// Name replaces an earlier one.
func New(selects []Column, except []string, registry *function.Registry) (*Projector, error) {
	if registry == nil {
		registry = function.Default()
	}

	p := &Projector{
		except:  make(map[string]struct{}, len(except)),
		columns: make(map[string]column, len(selects)),
	}

	for _, name := range except {
		p.except[name] = struct{}{}
	}

	for _, selected := range selects {
		chain := make([]function.Func, 0, len(selected.Funcs))
		for _, name := range selected.Funcs {
			fn, err := registry.Lookup(name)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", selected.Name, err)
			}
			chain = append(chain, fn)
		}
		p.columns[selected.Name] = column{chain: chain, fn: selected.Fn}
	}

	return p, nil
}

// Empty reports whether Apply would return rows unchanged.
func (p *Projector) Empty() bool {
	return len(p.except) == 0 && len(p.columns) == 0
}

// Apply projects a map row into a new map, keeping the row's key order.
// Other values are returned as is.
func (p *Projector) Apply(row any) any {
	record, ok := row.(*tree.Map)
	if !ok || p.Empty() {
		return row
	}

	out := tree.NewMap(record.Len())
	record.Range(func(key string, value any) bool {
		if _, dropped := p.except[key]; dropped {
			return true
		}
		if len(p.columns) == 0 {
			out.Set(key, value)
			return true
		}

		selected, ok := p.columns[key]
		if !ok {
			return true
		}
		for _, fn := range selected.chain {
			value = fn(value)
		}
		if selected.fn != nil {
			value = selected.fn(value, record)
		}
		out.Set(key, value)
		return true
	})

	return out
}
