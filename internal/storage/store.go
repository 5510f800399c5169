// Package storage defines the narrow Store capability the persistence engine
// runs against, the generic query engine that is the only place translating
// descriptors, filters and payloads into store operations, and the two Store
// implementations (PostgreSQL and in-memory).
package storage

import (
	"context"
	"fmt"

	"apigw-sim/internal/config"
	"apigw-sim/internal/query"
)

// Field is one (column, value) pair of a tuple or payload.
type Field struct {
	Column string
	Value  any
}

// Tuple is an ordered sequence of (column, value) pairs, one per requested
// column of a read, or the server-generated values of a write.
type Tuple []Field

// Get returns the value of the named column, and whether it is present.
func (t Tuple) Get(column string) (any, bool) {
	for _, f := range t {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the named column's value as a string, or "" when absent
// or not string-typed.
func (t Tuple) String(column string) string {
	v, ok := t.Get(column)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Payload is the ordered column → value list of a write. Order matters only
// for deterministic statement generation; semantically it is a map.
type Payload []Field

// Set appends a column value, replacing any earlier entry for the column.
func (p Payload) Set(column string, value any) Payload {
	for i, f := range p {
		if f.Column == column {
			p[i].Value = value
			return p
		}
	}
	return append(p, Field{Column: column, Value: value})
}

// Handle is an opaque, exclusively-owned connection to the store. A handle
// belongs to exactly one engine instance from Acquire to Release and must
// not be used concurrently.
type Handle interface {
	handle()
}

// Store is the capability surface the engine consumes. Reads run a single
// parameterized select; writes run inside a handle-scoped transaction that
// the caller ends with Commit or Rollback. Row order of reads is
// store-defined; callers must not assume an ordering.
type Store interface {
	// Acquire obtains a handle. Failures surface as fault.ConnectionError.
	Acquire(ctx context.Context) (Handle, error)

	// Release returns the handle. Best-effort; internal errors are swallowed.
	Release(h Handle)

	// Opened reports whether the handle is still usable.
	Opened(h Handle) bool

	// Commit ends the handle's transaction. Failures surface as
	// fault.TransactionError.
	Commit(ctx context.Context, h Handle) error

	// Rollback aborts the handle's transaction. Failures surface as
	// fault.TransactionError.
	Rollback(ctx context.Context, h Handle) error

	// Read runs a parameterized select over the relation and returns one
	// tuple per matching row, fields ordered as the projection.
	Read(ctx context.Context, h Handle, relation string, f query.Filter, proj query.Projection) ([]Tuple, error)

	// Write runs an insert (nil filter), update (filter and payload) or
	// delete (filter, nil payload) and returns the number of affected rows
	// plus the post-write values of the requested generated columns.
	Write(ctx context.Context, h Handle, relation string, f query.Filter, p Payload, generated []string) (int64, Tuple, error)
}

// Open constructs the Store selected by the configuration.
func Open(cfg *config.Config) (Store, error) {
	switch config.StoreType(cfg.StoreType) {
	case config.PostgresStore:
		return OpenPostgres(cfg.DSN())
	case config.MemoryStore:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}
}
