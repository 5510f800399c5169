package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
)

// Memory implements Store on in-process tables. It mirrors the transaction
// contract of the Postgres store: the first write on a handle stages a copy
// of the tables, Commit publishes it, Rollback discards it. It enforces no
// uniqueness constraints, so duplicate rows can be inserted through it
// directly, exactly like an out-of-band write to a real database.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]memRow

	// Actor and Now feed the synthesized audit columns. Tests may pin them.
	Actor string
	Now   func() time.Time
}

type memRow map[string]any

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]memRow),
		Actor:  "admin@local",
		Now:    time.Now,
	}
}

type memHandle struct {
	st     *Memory
	work   map[string][]memRow // staged tables, non-nil while a tx is open
	closed bool
}

func (*memHandle) handle() {}

func (s *Memory) Acquire(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, &fault.ConnectionError{Err: err}
	}
	return &memHandle{st: s}, nil
}

func (s *Memory) Release(h Handle) {
	mh, ok := h.(*memHandle)
	if !ok || mh.closed {
		return
	}
	mh.work = nil
	mh.closed = true
}

func (s *Memory) Opened(h Handle) bool {
	mh, ok := h.(*memHandle)
	return ok && !mh.closed
}

func (s *Memory) Commit(ctx context.Context, h Handle) error {
	mh, err := s.handleOf(h)
	if err != nil {
		return &fault.TransactionError{Op: "commit", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if mh.work != nil {
		s.tables = mh.work
		mh.work = nil
	}
	return nil
}

func (s *Memory) Rollback(ctx context.Context, h Handle) error {
	mh, err := s.handleOf(h)
	if err != nil {
		return &fault.TransactionError{Op: "rollback", Err: err}
	}
	mh.work = nil
	return nil
}

func (s *Memory) Read(ctx context.Context, h Handle, relation string, f query.Filter, proj query.Projection) ([]Tuple, error) {
	mh, err := s.handleOf(h)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var tuples []Tuple
	for _, row := range mh.view()[relation] {
		if !rowMatches(f, row) {
			continue
		}
		tuple := make(Tuple, len(proj))
		for i, col := range proj {
			tuple[i] = Field{Column: col, Value: row[col]}
		}
		tuples = append(tuples, tuple)
	}
	return tuples, nil
}

func (s *Memory) Write(ctx context.Context, h Handle, relation string, f query.Filter, p Payload, generated []string) (int64, Tuple, error) {
	mh, err := s.handleOf(h)
	if err != nil {
		return 0, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mh.stage()

	now := s.Now()
	switch {
	case f == nil && len(p) > 0:
		row := make(memRow, len(p)+len(generated))
		for _, field := range p {
			row[field.Column] = field.Value
		}
		synthesizeGenerated(row, generated, now, s.Actor)
		mh.work[relation] = append(mh.work[relation], row)
		return 1, pickGenerated(row, generated), nil

	case f != nil && len(p) > 0:
		var (
			affected int64
			gen      Tuple
		)
		for _, row := range mh.work[relation] {
			if !rowMatches(f, row) {
				continue
			}
			for _, field := range p {
				row[field.Column] = field.Value
			}
			synthesizeGenerated(row, generated, now, s.Actor)
			if gen == nil {
				gen = pickGenerated(row, generated)
			}
			affected++
		}
		return affected, gen, nil

	case f != nil:
		kept := mh.work[relation][:0]
		var affected int64
		for _, row := range mh.work[relation] {
			if rowMatches(f, row) {
				affected++
				continue
			}
			kept = append(kept, row)
		}
		mh.work[relation] = kept
		return affected, nil, nil
	}
	return 0, nil, fmt.Errorf("write to %s has neither filter nor payload", relation)
}

func (s *Memory) handleOf(h Handle) (*memHandle, error) {
	mh, ok := h.(*memHandle)
	if !ok {
		return nil, fmt.Errorf("handle does not belong to this store")
	}
	if mh.closed {
		return nil, fmt.Errorf("handle is released")
	}
	return mh, nil
}

// view returns the tables this handle currently sees: the staged copy while
// a transaction is open, the committed state otherwise.
func (mh *memHandle) view() map[string][]memRow {
	if mh.work != nil {
		return mh.work
	}
	return mh.st.tables
}

// stage deep-copies the committed tables on the first write of a handle.
func (mh *memHandle) stage() {
	if mh.work != nil {
		return
	}
	work := make(map[string][]memRow, len(mh.st.tables))
	for name, rows := range mh.st.tables {
		copied := make([]memRow, len(rows))
		for i, row := range rows {
			dup := make(memRow, len(row))
			for k, v := range row {
				dup[k] = v
			}
			copied[i] = dup
		}
		work[name] = copied
	}
	mh.work = work
}

func rowMatches(f query.Filter, row memRow) bool {
	switch node := f.(type) {
	case nil, query.NoOp:
		return true
	case query.Compare:
		return fmt.Sprint(row[node.Column]) == fmt.Sprint(node.Value)
	case query.Combine:
		return rowMatches(node.Left, row) && rowMatches(node.Right, row)
	}
	return false
}

// synthesizeGenerated emulates the server-side column defaults: audit
// timestamps get the clock, audit principals get the configured actor.
// Create stamps are only set once; update stamps refresh on every write.
func synthesizeGenerated(row memRow, generated []string, now time.Time, actor string) {
	for _, col := range generated {
		switch {
		case strings.HasPrefix(col, "created_"):
			if _, ok := row[col]; ok {
				continue
			}
		}
		if strings.HasSuffix(col, "_at") {
			row[col] = now
		} else if strings.HasSuffix(col, "_by") {
			row[col] = actor
		}
	}
}

func pickGenerated(row memRow, generated []string) Tuple {
	if len(generated) == 0 {
		return nil
	}
	gen := make(Tuple, len(generated))
	for i, col := range generated {
		gen[i] = Field{Column: col, Value: row[col]}
	}
	return gen
}
