package query

import "errors"

var (
	ErrInvalidNode      = errors.New("invalid node")
	ErrEmptyAggregation = errors.New("aggregation over an empty collection")
	ErrNotFound         = errors.New("not found")
	ErrNotCollection    = errors.New("not a collection")
	ErrInvalidSize      = errors.New("invalid size")
)
