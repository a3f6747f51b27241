// Package query runs SQL-like queries over decoded JSON or YAML trees.
//
// A Query owns a private copy of its data. Builder methods (From, Where,
// Select, Take, ...) only record state; the first terminal method (Get,
// Count, SortBy, ...) resolves the node, filters it and projects the kept
// rows, and the result is cached until the next builder call:
//
//	q := query.New(data).
//		From("users").
//		Where("age", ">=", 18).
//		OrWhere("role", "=", "admin").
//		Select("name", "age")
//
//	adults, err := q.Get()
//
// Conditions form groups: Where adds to the current group (AND) and OrWhere
// starts a new one (OR). A condition on a path a row does not have fails,
// except for the null and notexists family which exist to detect absence.
//
// Methods returning a *Query build a new, independent query over a copy of
// the result.
package query
