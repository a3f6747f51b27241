package query

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/jacoelho/qarray/function"
	"github.com/jacoelho/qarray/internal/condition"
	"github.com/jacoelho/qarray/internal/projection"
	"github.com/jacoelho/qarray/operator"
	"github.com/jacoelho/qarray/tree"
)

type (
	Column     = projection.Column
	ColumnFunc = projection.ColumnFunc
)

// Col selects name, running the named functions over its value in order.
func Col(name string, funcs ...string) Column {
	return Column{Name: name, Funcs: funcs}
}

// ColFunc selects name through an inline transform.
func ColFunc(name string, fn ColumnFunc) Column {
	return Column{Name: name, Fn: fn}
}

type Option func(*Query)

// WithDelimiter sets the node path separator. The default is ".".
func WithDelimiter(delimiter string) Option {
	return func(q *Query) {
		q.delimiter = delimiter
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(q *Query) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithOperators replaces the process-wide operator registry.
func WithOperators(registry *operator.Registry) Option {
	return func(q *Query) {
		if registry != nil {
			q.operators = registry
		}
	}
}

// WithFunctions replaces the process-wide function registry.
func WithFunctions(registry *function.Registry) Option {
	return func(q *Query) {
		if registry != nil {
			q.functions = registry
		}
	}
}

// Query is a single query engine instance. It is not safe for concurrent
// use.
type Query struct {
	id        uuid.UUID
	logger    *slog.Logger
	operators *operator.Registry
	functions *function.Registry
	delimiter string

	data     any
	original any

	node       string
	nodeErr    error
	conditions condition.Builder
	selects    []Column
	except     []string
	offset     int
	take       int
	hasTake    bool

	prepared bool
	result   any
}

// New builds a query over data. Go maps, slices and yaml.MapSlice values
// are converted into tree form; the caller's data is never modified.
func New(data any, opts ...Option) *Query {
	q := &Query{
		id:        uuid.New(),
		logger:    slog.New(slog.DiscardHandler),
		operators: operator.Default(),
		functions: function.Default(),
		delimiter: tree.DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.load(tree.Normalize(data))
	q.logger.Debug("query created", "engine_id", q.id)
	return q
}

// ID identifies the engine in log records.
func (q *Query) ID() uuid.UUID {
	return q.id
}

func (q *Query) load(data any) {
	q.data = data
	q.original = tree.Clone(data)
	q.clearState()
}

func (q *Query) clearState() {
	q.node = ""
	q.nodeErr = nil
	q.conditions.Reset()
	q.selects = nil
	q.except = nil
	q.offset = 0
	q.take = 0
	q.hasTake = false
	q.invalidate()
}

func (q *Query) invalidate() {
	q.prepared = false
	q.result = nil
}

// From points the query at node. An empty node is an error reported by the
// next terminal method.
func (q *Query) From(node string) *Query {
	q.node = node
	q.nodeErr = nil
	if node == "" {
		q.nodeErr = fmt.Errorf("%w: empty node path", ErrInvalidNode)
	}
	q.invalidate()
	return q
}

// At is an alias of From.
func (q *Query) At(node string) *Query {
	return q.From(node)
}

// Select keeps only the given columns of each row.
func (q *Query) Select(columns ...string) *Query {
	for _, name := range columns {
		q.selects = append(q.selects, Column{Name: name})
	}
	q.invalidate()
	return q
}

// SelectColumns is Select with per-column transforms.
func (q *Query) SelectColumns(columns ...Column) *Query {
	q.selects = append(q.selects, columns...)
	q.invalidate()
	return q
}

// Except drops the given columns. It is applied before Select.
func (q *Query) Except(columns ...string) *Query {
	q.except = append(q.except, columns...)
	q.invalidate()
	return q
}

// Offset skips the first n results.
func (q *Query) Offset(n int) *Query {
	q.offset = max(n, 0)
	q.invalidate()
	return q
}

// Take limits the number of results.
func (q *Query) Take(n int) *Query {
	q.take = max(n, 0)
	q.hasTake = true
	q.invalidate()
	return q
}

func (q *Query) SetDelimiter(delimiter string) *Query {
	q.delimiter = delimiter
	q.invalidate()
	return q
}

// ReProcess drops the cached result so the next terminal method evaluates
// the query again.
func (q *Query) ReProcess() *Query {
	q.invalidate()
	return q
}

// Collect replaces the data and clears every builder setting.
func (q *Query) Collect(data any) *Query {
	q.load(tree.Normalize(data))
	return q
}

// Reset restores the data given at construction (or data, when not nil)
// and clears every builder setting. With fresh set the receiver is left
// untouched and a new query is returned instead.
func (q *Query) Reset(data any, fresh bool) *Query {
	source := tree.Clone(q.original)
	if data != nil {
		source = tree.Normalize(data)
	}

	if fresh {
		return q.derive(source)
	}

	q.load(source)
	return q
}

// Copy returns an independent query with the same data and builder state.
func (q *Query) Copy() *Query {
	c := *q
	c.id = uuid.New()
	c.data = tree.Clone(q.data)
	c.original = tree.Clone(q.original)
	c.conditions = q.conditions.Clone()
	c.selects = slices.Clone(q.selects)
	c.except = slices.Clone(q.except)
	c.result = tree.Clone(q.result)

	c.logger.Debug("query copied", "engine_id", c.id, "parent_id", q.id)
	return &c
}

// derive builds a query that owns data, sharing registries and settings.
func (q *Query) derive(data any) *Query {
	d := &Query{
		id:        uuid.New(),
		logger:    q.logger,
		operators: q.operators,
		functions: q.functions,
		delimiter: q.delimiter,
	}
	d.load(data)

	d.logger.Debug("query derived", "engine_id", d.id, "parent_id", q.id)
	return d
}

func (q *Query) prepare() error {
	if q.nodeErr != nil {
		return q.nodeErr
	}
	if q.prepared {
		return nil
	}

	node, found := tree.Resolve(q.data, q.node, q.delimiter).Value()
	if !found {
		q.logger.Debug("node not found", "engine_id", q.id, "node", q.node)
		q.result = nil
		q.prepared = true
		return nil
	}
	node = tree.Clone(node)

	projector, err := projection.New(q.selects, q.except, q.functions)
	if err != nil {
		return err
	}

	var result any
	if q.conditions.Empty() {
		result = project(node, projector)
	} else {
		matcher, err := condition.Compile(q.conditions.Groups(), q.operators, q.delimiter)
		if err != nil {
			return err
		}
		result, err = filter(node, matcher, projector)
		if err != nil {
			return err
		}
	}

	if q.hasTake || q.offset > 0 {
		result = window(result, q.offset, q.take, q.hasTake)
	}

	q.result = result
	q.prepared = true
	q.logger.Debug("query prepared", "engine_id", q.id, "node", q.node, "size", size(result))
	return nil
}

// project applies projector to each list element, or to a map node as a
// single record.
func project(node any, projector *projection.Projector) any {
	if projector.Empty() {
		return node
	}

	list, ok := node.([]any)
	if !ok {
		return projector.Apply(node)
	}

	out := make([]any, len(list))
	for i, row := range list {
		out[i] = projector.Apply(row)
	}
	return out
}

// filter keeps the rows of node accepted by matcher. Map nodes are treated
// as keyed collections and keep their keys.
func filter(node any, matcher *condition.Matcher, projector *projection.Projector) (any, error) {
	switch current := node.(type) {
	case []any:
		out := make([]any, 0, len(current))
		for _, row := range current {
			keep, err := matcher.Keep(row)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, projector.Apply(row))
			}
		}
		return out, nil
	case *tree.Map:
		out := tree.NewMap()
		var err error
		current.Range(func(key string, row any) bool {
			var keep bool
			keep, err = matcher.Keep(row)
			if err != nil {
				return false
			}
			if keep {
				out.Set(key, projector.Apply(row))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot filter %s", ErrNotCollection, operator.TypeName(node))
	}
}

func window(result any, offset, take int, hasTake bool) any {
	bounds := func(n int) (int, int) {
		start := min(offset, n)
		end := n
		if hasTake {
			end = start + min(take, n-start)
		}
		return start, end
	}

	switch current := result.(type) {
	case []any:
		start, end := bounds(len(current))
		return slices.Clone(current[start:end])
	case *tree.Map:
		keys := current.Keys()
		start, end := bounds(len(keys))
		out := tree.NewMap(end - start)
		for _, key := range keys[start:end] {
			value, _ := current.Get(key)
			out.Set(key, value)
		}
		return out
	default:
		return result
	}
}

func size(value any) int {
	switch current := value.(type) {
	case nil:
		return 0
	case []any:
		return len(current)
	case *tree.Map:
		return current.Len()
	default:
		return 1
	}
}

type entry struct {
	key   string
	value any
}

// entries lists the rows of a prepared result. keyed is true for maps.
func entries(value any) (rows []entry, keyed bool, err error) {
	switch current := value.(type) {
	case nil:
		return nil, false, nil
	case []any:
		rows = make([]entry, len(current))
		for i, item := range current {
			rows[i] = entry{key: strconv.Itoa(i), value: item}
		}
		return rows, false, nil
	case *tree.Map:
		rows = make([]entry, 0, current.Len())
		current.Range(func(key string, item any) bool {
			rows = append(rows, entry{key: key, value: item})
			return true
		})
		return rows, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrNotCollection, operator.TypeName(value))
	}
}

// rebuild turns rows back into a map or a list.
func rebuild(rows []entry, keyed bool) any {
	if keyed {
		out := tree.NewMap(len(rows))
		for _, row := range rows {
			out.Set(row.key, row.value)
		}
		return out
	}

	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row.value
	}
	return out
}

// rows prepares the query and returns its result as rows.
func (q *Query) rows() ([]entry, bool, error) {
	if err := q.prepare(); err != nil {
		return nil, false, err
	}
	return entries(q.result)
}
