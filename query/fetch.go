package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

// Get returns a copy of the query result. A node that does not exist yields
// nil.
func (q *Query) Get() (any, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}
	return tree.Clone(q.result), nil
}

// Fetch is an alias of Get.
func (q *Query) Fetch() (any, error) {
	return q.Get()
}

// Result returns the cached result itself. Callers must not modify it.
func (q *Query) Result() (any, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}
	return q.result, nil
}

func (q *Query) First() (any, error) {
	return q.Nth(0)
}

func (q *Query) Last() (any, error) {
	return q.Nth(-1)
}

// Nth returns the row at index. Negative indexes count from the end.
func (q *Query) Nth(index int) (any, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	if index < 0 {
		index += len(rows)
	}
	if index < 0 || index >= len(rows) {
		return nil, fmt.Errorf("%w: no row at index %d of %d", ErrNotFound, index, len(rows))
	}
	return tree.Clone(rows[index].value), nil
}

// Find resolves path inside the query result.
func (q *Query) Find(path string) (any, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}
	value, found := tree.Resolve(q.result, path, q.delimiter).Value()
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return tree.Clone(value), nil
}

// Grab resolves path against the whole data, ignoring the node, the
// conditions and the cached result. The query is left untouched.
func (q *Query) Grab(path string) (any, error) {
	value, found := tree.Resolve(q.data, path, q.delimiter).Value()
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return tree.Clone(value), nil
}

// Then starts a new query over the result, pointed at path when it is not
// empty.
func (q *Query) Then(path string) (*Query, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}

	next := q.derive(tree.Clone(q.result))
	if path != "" {
		next.From(path)
	}
	return next, nil
}

// Each calls fn with a copy of every row until fn returns false. Rows of a
// list are keyed by their index.
func (q *Query) Each(fn func(key string, row any) bool) error {
	rows, _, err := q.rows()
	if err != nil {
		return err
	}

	for _, row := range rows {
		if !fn(row.key, tree.Clone(row.value)) {
			return nil
		}
	}
	return nil
}

// Transform runs every row through fns, in the order given.
func (q *Query) Transform(fns ...func(row any) any) (*Query, error) {
	return q.Map(func(_ string, row any) any {
		for _, fn := range fns {
			row = fn(row)
		}
		return row
	})
}

// Map replaces every row with the value fn returns for it. A *Query
// returned by fn, at any depth, is replaced by its result.
func (q *Query) Map(fn func(key string, row any) any) (*Query, error) {
	rows, keyed, err := q.rows()
	if err != nil {
		return nil, err
	}

	out := make([]entry, len(rows))
	for i, row := range rows {
		value, err := resolveQueries(fn(row.key, tree.Clone(row.value)))
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", row.key, err)
		}
		out[i] = entry{key: row.key, value: value}
	}
	return q.derive(rebuild(out, keyed)), nil
}

// resolveQueries normalizes value and swaps every nested *Query for a copy
// of its result.
func resolveQueries(value any) (any, error) {
	switch current := tree.Normalize(value).(type) {
	case *Query:
		if current == nil {
			return nil, nil
		}
		result, err := current.Get()
		if err != nil {
			return nil, err
		}
		return resolveQueries(result)
	case *tree.Map:
		out := tree.NewMap(current.Len())
		for _, key := range current.Keys() {
			item, _ := current.Get(key)
			resolved, err := resolveQueries(item)
			if err != nil {
				return nil, err
			}
			out.Set(key, resolved)
		}
		return out, nil
	case []any:
		for i, item := range current {
			resolved, err := resolveQueries(item)
			if err != nil {
				return nil, err
			}
			current[i] = resolved
		}
		return current, nil
	default:
		return current, nil
	}
}

// Filter keeps the rows fn accepts. Maps keep their keys.
func (q *Query) Filter(fn func(key string, row any) bool) (*Query, error) {
	rows, keyed, err := q.rows()
	if err != nil {
		return nil, err
	}

	out := make([]entry, 0, len(rows))
	for _, row := range rows {
		if fn(row.key, row.value) {
			out = append(out, row)
		}
	}
	return q.derive(cloneRows(out, keyed)), nil
}

// Pluck lists the value of column for every row that has it.
func (q *Query) Pluck(column string) (*Query, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if value, found := q.columnValue(row.value, column); found {
			out = append(out, tree.Clone(value))
		}
	}
	return q.derive(out), nil
}

// Column is an alias of Pluck.
func (q *Query) Column(column string) (*Query, error) {
	return q.Pluck(column)
}

// Implode joins the scalar values of column, or the rows themselves when
// column is empty.
func (q *Query) Implode(column, separator string) (string, error) {
	rows, _, err := q.rows()
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		value, found := q.columnValue(row.value, column)
		if !found {
			continue
		}
		if text, ok := operator.ScalarString(value); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, separator), nil
}

// Keys lists map keys, or indexes for lists.
func (q *Query) Keys() ([]string, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.key
	}
	return keys, nil
}

// Values drops map keys.
func (q *Query) Values() (*Query, error) {
	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}
	return q.derive(cloneRows(rows, false)), nil
}

// Chunk splits the rows into lists of at most size rows.
func (q *Query) Chunk(size int) (*Query, error) {
	chunks, err := q.chunks(size)
	if err != nil {
		return nil, err
	}
	return q.derive(chunks), nil
}

// ChunkFunc calls fn with every chunk and collects the non-nil values it
// returns.
func (q *Query) ChunkFunc(size int, fn func(chunk []any) any) (*Query, error) {
	chunks, err := q.chunks(size)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(chunks))
	for i, chunk := range chunks {
		value, err := resolveQueries(fn(chunk.([]any)))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if value != nil {
			out = append(out, value)
		}
	}
	return q.derive(out), nil
}

func (q *Query) chunks(size int) ([]any, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidSize, size)
	}

	rows, _, err := q.rows()
	if err != nil {
		return nil, err
	}

	chunks := make([]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, cloneRows(rows[start:end], false))
	}
	return chunks, nil
}

// Pop removes the last row from the result and returns a query over it.
// The removal lasts until the result is prepared again.
func (q *Query) Pop() (*Query, error) {
	return q.remove(-1)
}

// Shift removes the first row from the result and returns a query over it.
// Lists are renumbered; map keys are kept.
func (q *Query) Shift() (*Query, error) {
	return q.remove(0)
}

func (q *Query) remove(index int) (*Query, error) {
	rows, keyed, err := q.rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrNotFound)
	}

	if index < 0 {
		index += len(rows)
	}
	removed := rows[index]
	q.result = rebuild(slices.Delete(rows, index, index+1), keyed)

	q.logger.Debug("row removed", "engine_id", q.id, "key", removed.key, "size", len(rows)-1)
	return q.derive(tree.Clone(removed.value)), nil
}

// Push appends value to the result, or stores it under key. A list given a
// key becomes a map keyed by index. A map given no key stores value under
// the next integer key. A missing node starts a new collection. The
// addition lasts until the result is prepared again.
func (q *Query) Push(value any, key ...string) error {
	if err := q.prepare(); err != nil {
		return err
	}

	value, err := resolveQueries(value)
	if err != nil {
		return err
	}

	rows, keyed, err := entries(q.result)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}

	name := strconv.Itoa(len(rows))
	switch {
	case len(key) > 0:
		name = key[0]
		keyed = true
	case keyed:
		name = strconv.Itoa(nextIndex(rows))
	}

	if index := slices.IndexFunc(rows, func(row entry) bool { return row.key == name }); keyed && index >= 0 {
		rows[index].value = value
	} else {
		rows = append(rows, entry{key: name, value: value})
	}
	q.result = rebuild(rows, keyed)

	q.logger.Debug("row pushed", "engine_id", q.id, "key", name, "size", len(rows))
	return nil
}

// nextIndex returns one past the largest non-negative integer key.
func nextIndex(rows []entry) int {
	next := 0
	for _, row := range rows {
		if index, err := strconv.Atoi(row.key); err == nil && index >= next {
			next = index + 1
		}
	}
	return next
}

// Search selects nodes of the result with a JSONPath expression. Objects in
// the matches are rebuilt with their keys sorted.
func (q *Query) Search(expr string) (*Query, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	if err := q.prepare(); err != nil {
		return nil, err
	}

	nodes := path.Select(tree.ToNative(q.result))
	return q.derive(tree.Normalize([]any(nodes))), nil
}

func cloneRows(rows []entry, keyed bool) any {
	return tree.Clone(rebuild(rows, keyed))
}
