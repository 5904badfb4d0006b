package store

import "context"

// Record is implemented by values kept in a Repository. Clone returns a
// deep copy so callers never share mutable state with the store.
type Record[T any] interface {
	RecordID() string
	Clone() T
}

// Repository keeps the latest snapshot of each record. Put replaces the
// stored snapshot; Get returns NotFound for unknown ids; List returns
// records in first-insertion order.
type Repository[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Put(ctx context.Context, record T) error
	List(ctx context.Context) ([]T, error)
}
