package storage

import (
	"context"
	"fmt"

	"apigw-sim/internal/query"
)

// Engine turns (descriptor, filter, projection) into reads and
// (descriptor, filter, payload) into writes against one held handle. It is
// the only place such translation happens. The engine never commits;
// transaction boundaries belong to the orchestrator that owns the handle.
type Engine struct {
	store Store
	h     Handle
}

// NewEngine binds an engine to the store handle the orchestrator holds.
func NewEngine(store Store, h Handle) *Engine {
	return &Engine{store: store, h: h}
}

// Read returns one tuple per row matching the filter, carrying the
// projected columns in projection order. Row order is store-defined.
func (e *Engine) Read(ctx context.Context, d query.Descriptor, f query.Filter, proj query.Projection) ([]Tuple, error) {
	return e.store.Read(ctx, e.h, d.Relation, f, proj)
}

// Insert writes a new row from the attribute → value payload. When
// generated columns are named, their post-insert values (audit stamps,
// server-side ids) are returned.
func (e *Engine) Insert(ctx context.Context, d query.Descriptor, payload Payload, generated ...string) (Tuple, error) {
	cols, err := e.toColumns(d, payload)
	if err != nil {
		return nil, err
	}
	_, gen, err := e.store.Write(ctx, e.h, d.Relation, nil, cols, generated)
	return gen, err
}

// Update rewrites the rows matching the filter from the payload. Same
// generated-column contract as Insert.
func (e *Engine) Update(ctx context.Context, d query.Descriptor, f query.Filter, payload Payload, generated ...string) (Tuple, error) {
	cols, err := e.toColumns(d, payload)
	if err != nil {
		return nil, err
	}
	_, gen, err := e.store.Write(ctx, e.h, d.Relation, f, cols, generated)
	return gen, err
}

// Delete removes the rows matching the filter and returns how many went.
func (e *Engine) Delete(ctx context.Context, d query.Descriptor, f query.Filter) (int64, error) {
	n, _, err := e.store.Write(ctx, e.h, d.Relation, f, nil, nil)
	return n, err
}

// toColumns validates the payload's attribute names against the descriptor
// and maps them to physical columns. Descriptors without an attribute
// enumeration pass the payload through untranslated.
func (e *Engine) toColumns(d query.Descriptor, payload Payload) (Payload, error) {
	if len(d.Attributes) == 0 {
		return payload, nil
	}
	cols := make(Payload, 0, len(payload))
	for _, f := range payload {
		col, ok := d.Column(f.Column)
		if !ok {
			return nil, fmt.Errorf("relation %s has no attribute %q", d.Relation, f.Column)
		}
		cols = append(cols, Field{Column: col, Value: f.Value})
	}
	return cols, nil
}
