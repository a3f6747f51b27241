// Package operator resolves where-clause operator tokens to comparison
// functions. Built-in operators live in a fixed table indexed by Builtin;
// callers can register additional named predicates at runtime.
package operator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jacoelho/qarray/tree"
)

var ErrConditionNotAllowed = errors.New("condition not allowed")

// Func compares a resolved value against the comparable given in a where
// clause.
type Func func(value, comparable any) bool

// Operator is either a Builtin or a Custom predicate.
type Operator interface {
	Name() string
	// Apply evaluates the operator. Only presence-testing built-ins see
	// missing values; every other operator reports false for them.
	Apply(value tree.Lookup, comparable any) bool

	operator()
}

// Builtin identifies one of the operators every registry starts with.
type Builtin uint8

const (
	Equal Builtin = iota + 1
	StrictEqual
	NotEqual
	StrictNotEqual
	GreaterThan
	LessThan
	GreaterThanOrEqual
	LessThanOrEqual
	In
	NotIn
	InArray
	NotInArray
	IsNull
	IsNotNull
	Exists
	NotExists
	StartsWith
	EndsWith
	Match
	Contains
	DateEqual
	MonthEqual
	YearEqual
	Instance
	Type
	Any
	Bool

	builtinCount
)

type builtinEntry struct {
	name string
	// presence is set for operators that must observe missing values.
	presence func(value tree.Lookup, comparable any) bool
	value    Func
}

var builtins = [builtinCount]builtinEntry{
	Equal:              {name: "equal", value: LooseEqual},
	StrictEqual:        {name: "strict_equal", value: StrictEqualValues},
	NotEqual:           {name: "not_equal", value: not(LooseEqual)},
	StrictNotEqual:     {name: "strict_not_equal", value: not(StrictEqualValues)},
	GreaterThan:        {name: "greater_than", value: ordered(func(c int) bool { return c > 0 })},
	LessThan:           {name: "less_than", value: ordered(func(c int) bool { return c < 0 })},
	GreaterThanOrEqual: {name: "greater_than_or_equal", value: ordered(func(c int) bool { return c >= 0 })},
	LessThanOrEqual:    {name: "less_than_or_equal", value: ordered(func(c int) bool { return c <= 0 })},
	In:                 {name: "in", value: evaluateIn},
	NotIn:              {name: "not_in", value: evaluateNotIn},
	InArray:            {name: "in_array", value: evaluateInArray},
	NotInArray:         {name: "not_in_array", value: not(evaluateInArray)},
	IsNull:             {name: "null", presence: evaluateIsNull},
	IsNotNull:          {name: "not_null", presence: evaluateIsNotNull},
	Exists:             {name: "exists", presence: evaluateExists},
	NotExists:          {name: "not_exists", presence: evaluateNotExists},
	StartsWith:         {name: "starts_with", value: evaluateStartsWith},
	EndsWith:           {name: "ends_with", value: evaluateEndsWith},
	Match:              {name: "match", value: evaluateMatch},
	Contains:           {name: "contains", value: evaluateContains},
	DateEqual:          {name: "dates", value: evaluateDateEqual},
	MonthEqual:         {name: "month", value: evaluateMonthEqual},
	YearEqual:          {name: "year", value: evaluateYearEqual},
	Instance:           {name: "instance", value: evaluateInstance},
	Type:               {name: "type", value: evaluateType},
	Any:                {name: "any", value: evaluateAny},
	Bool:               {name: "bool", value: evaluateBool},
}

var builtinTokens = map[string]Builtin{
	"=":          Equal,
	"eq":         Equal,
	"==":         StrictEqual,
	"seq":        StrictEqual,
	"!=":         NotEqual,
	"neq":        NotEqual,
	"<>":         NotEqual,
	"!==":        StrictNotEqual,
	"sneq":       StrictNotEqual,
	">":          GreaterThan,
	"gt":         GreaterThan,
	"<":          LessThan,
	"lt":         LessThan,
	">=":         GreaterThanOrEqual,
	"gte":        GreaterThanOrEqual,
	"<=":         LessThanOrEqual,
	"lte":        LessThanOrEqual,
	"in":         In,
	"notin":      NotIn,
	"inarray":    InArray,
	"notinarray": NotInArray,
	"null":       IsNull,
	"notnull":    IsNotNull,
	"exists":     Exists,
	"notexists":  NotExists,
	"startswith": StartsWith,
	"endswith":   EndsWith,
	"match":      Match,
	"contains":   Contains,
	"dates":      DateEqual,
	"month":      MonthEqual,
	"year":       YearEqual,
	"instance":   Instance,
	"type":       Type,
	"any":        Any,
	"bool":       Bool,
}

func (b Builtin) Name() string {
	if !b.valid() {
		return fmt.Sprintf("builtin(%d)", uint8(b))
	}
	return builtins[b].name
}

// Apply evaluates the built-in. An out-of-range Builtin never matches.
func (b Builtin) Apply(value tree.Lookup, comparable any) bool {
	if !b.valid() {
		return false
	}

	entry := builtins[b]
	if entry.presence != nil {
		return entry.presence(value, comparable)
	}

	actual, found := value.Value()
	if !found {
		return false
	}
	return entry.value(actual, comparable)
}

// ObservesMissing reports whether the operator is evaluated for missing
// values instead of failing them outright.
func (b Builtin) ObservesMissing() bool {
	return b.valid() && builtins[b].presence != nil
}

func (b Builtin) valid() bool {
	return b > 0 && b < builtinCount
}

func (Builtin) operator() {}

// Custom is a predicate registered under a token.
type Custom struct {
	name string
	fn   Func
}

func (c Custom) Name() string {
	return c.name
}

func (c Custom) Apply(value tree.Lookup, comparable any) bool {
	actual, found := value.Value()
	if !found || c.fn == nil {
		return false
	}
	return c.fn(actual, comparable)
}

func (Custom) operator() {}

// Registry maps tokens to operators. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]Custom
}

var defaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		custom: make(map[string]Custom),
	}
}

// Default returns the process-wide registry shared by all queries.
func Default() *Registry {
	return defaultRegistry
}

// Register adds fn under token on the default registry.
func Register(token string, fn Func) bool {
	return defaultRegistry.Register(token, fn)
}

// Resolve looks token up on the default registry.
func Resolve(token string) (Operator, error) {
	return defaultRegistry.Resolve(token)
}

// Register adds a custom operator. It returns false when the token is empty,
// fn is nil, or the token is already taken by a built-in or an earlier
// registration.
func (r *Registry) Register(token string, fn Func) bool {
	if token == "" || fn == nil {
		return false
	}
	if _, ok := builtinTokens[token]; ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.custom[token]; ok {
		return false
	}
	r.custom[token] = Custom{name: token, fn: fn}
	return true
}

func (r *Registry) Resolve(token string) (Operator, error) {
	if builtin, ok := builtinTokens[token]; ok {
		return builtin, nil
	}

	r.mu.RLock()
	custom, ok := r.custom[token]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrConditionNotAllowed, token)
	}
	return custom, nil
}

// Tokens lists every token the registry resolves, sorted.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]string, 0, len(builtinTokens)+len(r.custom))
	for token := range builtinTokens {
		tokens = append(tokens, token)
	}
	for token := range r.custom {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	return tokens
}

func not(fn Func) Func {
	return func(value, comparable any) bool {
		return !fn(value, comparable)
	}
}

func ordered(accept func(int) bool) Func {
	return func(value, comparable any) bool {
		result, ok := Compare(value, comparable)
		return ok && accept(result)
	}
}
