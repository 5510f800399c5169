// Package provider implements the business-level persistence operations of
// the management backend: per-entity search/exists/lookup/create/modify/
// delete plus role-membership assign/revoke/member, combining generic query
// construction with the existence, uniqueness and ambiguity invariants and
// the cross-entity assembly the management API exposes.
package provider

import (
	"context"
	"time"

	"github.com/lib/pq"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/logger"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

// auditColumns are stamped by the store on every write and read back via
// the generated-columns channel.
var auditColumns = []string{"created_at", "created_by", "updated_at", "updated_by"}

// Provider owns one store handle for its lifetime and exposes the business
// operations on it. A Provider is not safe for concurrent use; concurrent
// request paths each get their own instance and handle.
type Provider struct {
	store storage.Store
	h     storage.Handle
	eng   *storage.Engine
	log   *logger.Logger
}

// Open acquires a handle and binds a provider to it.
func Open(ctx context.Context, store storage.Store, log *logger.Logger) (*Provider, error) {
	h, err := store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Provider{
		store: store,
		h:     h,
		eng:   storage.NewEngine(store, h),
		log:   log,
	}, nil
}

// Close releases the handle. Best-effort, safe to call twice.
func (p *Provider) Close() {
	if p.h != nil && p.store.Opened(p.h) {
		p.store.Release(p.h)
	}
}

// readOne runs a read expected to match at most one row. Zero rows return
// (nil, nil); more than one is an ambiguity fault, never a silent pick.
func (p *Provider) readOne(ctx context.Context, d query.Descriptor, f query.Filter, proj query.Projection, entity, key string) (storage.Tuple, error) {
	rows, err := p.eng.Read(ctx, d, f, proj)
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	}
	return nil, &fault.AmbiguousError{Entity: entity, Key: key, Count: len(rows)}
}

// keyExists reports whether exactly one row matches the key filter.
func (p *Provider) keyExists(ctx context.Context, d query.Descriptor, f query.Filter, entity, key string) (bool, error) {
	row, err := p.readOne(ctx, d, f, query.Columns(d.KeyColumn), entity, key)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// searchKeys lists the key column of every row matching the filter. Row
// order is store-defined.
func (p *Provider) searchKeys(ctx context.Context, d query.Descriptor, f query.Filter) ([]string, error) {
	rows, err := p.eng.Read(ctx, d, f, query.Columns(d.KeyColumn))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.String(d.KeyColumn))
	}
	return keys, nil
}

// fail aborts a write operation: best-effort rollback, then the primary
// failure wrapped so callers can see whether the rollback itself failed.
func (p *Provider) fail(ctx context.Context, op string, err error) error {
	rbErr := p.store.Rollback(ctx, p.h)
	if rbErr != nil {
		p.log.WithField("op", op).Warnf("rollback after failed %s also failed: %v", op, rbErr)
	}
	return &fault.StoreError{Op: op, Err: err, RolledBack: true, RollbackErr: rbErr}
}

// commit ends the write operation. A commit failure triggers the same
// best-effort rollback before the transaction fault propagates.
func (p *Provider) commit(ctx context.Context, op string) error {
	err := p.store.Commit(ctx, p.h)
	if err == nil {
		return nil
	}
	if rbErr := p.store.Rollback(ctx, p.h); rbErr != nil {
		p.log.WithField("op", op).Warnf("rollback after failed commit also failed: %v", rbErr)
	}
	return err
}

// auditFrom maps the generated audit columns back onto an Audit value.
func auditFrom(gen storage.Tuple) Audit {
	var a Audit
	if v, ok := gen.Get("created_at"); ok {
		if t, ok := v.(time.Time); ok {
			a.CreatedAt = t
		}
	}
	if v, ok := gen.Get("updated_at"); ok {
		if t, ok := v.(time.Time); ok {
			a.UpdatedAt = t
		}
	}
	a.CreatedBy = gen.String("created_by")
	a.UpdatedBy = gen.String("updated_by")
	return a
}

// stringList normalizes an array-valued column into a []string, accepting
// both the in-memory representation and the Postgres text[] wire form.
func stringList(v any) []string {
	switch s := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, s...)
	case pq.StringArray:
		return append([]string{}, s...)
	case *pq.StringArray:
		if s == nil {
			return []string{}
		}
		return append([]string{}, *s...)
	default:
		var arr pq.StringArray
		if err := arr.Scan(v); err != nil {
			return []string{}
		}
		return append([]string{}, arr...)
	}
}
