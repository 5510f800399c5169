package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
)

// Postgres implements Store against a PostgreSQL database. A handle is a
// dedicated connection; the first write on a handle opens a transaction
// that stays open until Commit or Rollback, so precondition reads run
// outside any transaction and post-write reads see uncommitted rows.
type Postgres struct {
	db *sqlx.DB
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB constructs a Postgres store from an existing *sql.DB.
// Useful for tests.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: sqlx.NewDb(db, "postgres")}
}

// Close closes the underlying connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx handle. Used by schema loading.
func (s *Postgres) DB() *sqlx.DB {
	return s.db
}

type pgHandle struct {
	conn   *sql.Conn
	tx     *sql.Tx
	closed bool
}

func (*pgHandle) handle() {}

func (s *Postgres) Acquire(ctx context.Context) (Handle, error) {
	conn, err := s.db.DB.Conn(ctx)
	if err != nil {
		return nil, &fault.ConnectionError{Err: err}
	}
	return &pgHandle{conn: conn}, nil
}

func (s *Postgres) Release(h Handle) {
	ph, ok := h.(*pgHandle)
	if !ok || ph.closed {
		return
	}
	if ph.tx != nil {
		_ = ph.tx.Rollback()
		ph.tx = nil
	}
	_ = ph.conn.Close()
	ph.closed = true
}

func (s *Postgres) Opened(h Handle) bool {
	ph, ok := h.(*pgHandle)
	return ok && !ph.closed
}

func (s *Postgres) Commit(ctx context.Context, h Handle) error {
	ph, err := s.handleOf(h)
	if err != nil {
		return &fault.TransactionError{Op: "commit", Err: err}
	}
	if ph.tx == nil {
		return nil
	}
	tx := ph.tx
	ph.tx = nil
	if err := tx.Commit(); err != nil {
		return &fault.TransactionError{Op: "commit", Err: err}
	}
	return nil
}

func (s *Postgres) Rollback(ctx context.Context, h Handle) error {
	ph, err := s.handleOf(h)
	if err != nil {
		return &fault.TransactionError{Op: "rollback", Err: err}
	}
	if ph.tx == nil {
		return nil
	}
	tx := ph.tx
	ph.tx = nil
	if err := tx.Rollback(); err != nil {
		return &fault.TransactionError{Op: "rollback", Err: err}
	}
	return nil
}

func (s *Postgres) Read(ctx context.Context, h Handle, relation string, f query.Filter, proj query.Projection) ([]Tuple, error) {
	ph, err := s.handleOf(h)
	if err != nil {
		return nil, err
	}
	if len(proj) == 0 {
		return nil, fmt.Errorf("empty projection for relation %s", relation)
	}

	where, args, err := renderFilter(f, nil)
	if err != nil {
		return nil, err
	}
	stmt := "SELECT " + strings.Join(proj, ", ") + " FROM " + relation
	if where != "" {
		stmt += " WHERE " + where
	}

	rows, err := ph.query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("read from %s failed: %w", relation, err)
	}
	defer rows.Close()

	var tuples []Tuple
	for rows.Next() {
		values := make([]any, len(proj))
		ptrs := make([]any, len(proj))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read from %s failed: %w", relation, err)
		}
		tuple := make(Tuple, len(proj))
		for i, col := range proj {
			tuple[i] = Field{Column: col, Value: values[i]}
		}
		tuples = append(tuples, tuple)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read from %s failed: %w", relation, err)
	}
	return tuples, nil
}

func (s *Postgres) Write(ctx context.Context, h Handle, relation string, f query.Filter, p Payload, generated []string) (int64, Tuple, error) {
	ph, err := s.handleOf(h)
	if err != nil {
		return 0, nil, err
	}
	if err := ph.begin(ctx); err != nil {
		return 0, nil, fmt.Errorf("write to %s failed: %w", relation, err)
	}

	var (
		stmt string
		args []any
	)
	switch {
	case f == nil && len(p) > 0:
		stmt, args = buildInsert(relation, p)
	case f != nil && len(p) > 0:
		stmt, args, err = buildUpdate(relation, f, p)
	case f != nil:
		stmt, args, err = buildDelete(relation, f)
	default:
		return 0, nil, fmt.Errorf("write to %s has neither filter nor payload", relation)
	}
	if err != nil {
		return 0, nil, err
	}

	if len(generated) == 0 {
		res, execErr := ph.tx.ExecContext(ctx, stmt, args...)
		if execErr != nil {
			return 0, nil, fmt.Errorf("write to %s failed: %w", relation, execErr)
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return 0, nil, fmt.Errorf("write to %s failed: %w", relation, raErr)
		}
		return affected, nil, nil
	}

	stmt += " RETURNING " + strings.Join(generated, ", ")
	rows, err := ph.tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("write to %s failed: %w", relation, err)
	}
	defer rows.Close()

	var (
		affected int64
		gen      Tuple
	)
	for rows.Next() {
		affected++
		if gen != nil {
			continue
		}
		values := make([]any, len(generated))
		ptrs := make([]any, len(generated))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return 0, nil, fmt.Errorf("write to %s failed: %w", relation, err)
		}
		gen = make(Tuple, len(generated))
		for i, col := range generated {
			gen[i] = Field{Column: col, Value: values[i]}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("write to %s failed: %w", relation, err)
	}
	return affected, gen, nil
}

func (s *Postgres) handleOf(h Handle) (*pgHandle, error) {
	ph, ok := h.(*pgHandle)
	if !ok {
		return nil, fmt.Errorf("handle does not belong to this store")
	}
	if ph.closed {
		return nil, fmt.Errorf("handle is released")
	}
	return ph, nil
}

// begin opens the handle's transaction if none is active yet.
func (h *pgHandle) begin(ctx context.Context) error {
	if h.tx != nil {
		return nil
	}
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	h.tx = tx
	return nil
}

// query routes reads through the open transaction when there is one, so a
// post-write read on the same handle sees the uncommitted rows.
func (h *pgHandle) query(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	if h.tx != nil {
		return h.tx.QueryContext(ctx, stmt, args...)
	}
	return h.conn.QueryContext(ctx, stmt, args...)
}

// renderFilter turns the filter tree into a WHERE fragment with $n
// placeholders, appending values to args. NoOp renders to the empty string.
func renderFilter(f query.Filter, args []any) (string, []any, error) {
	switch node := f.(type) {
	case nil, query.NoOp:
		return "", args, nil
	case query.Compare:
		args = append(args, node.Value)
		return fmt.Sprintf("%s %s $%d", node.Column, node.Op, len(args)), args, nil
	case query.Combine:
		left, args, err := renderFilter(node.Left, args)
		if err != nil {
			return "", nil, err
		}
		right, args, err := renderFilter(node.Right, args)
		if err != nil {
			return "", nil, err
		}
		switch {
		case left == "":
			return right, args, nil
		case right == "":
			return left, args, nil
		}
		return fmt.Sprintf("(%s %s %s)", left, node.Op, right), args, nil
	default:
		return "", nil, fmt.Errorf("unknown filter node %T", f)
	}
}

func buildInsert(relation string, p Payload) (string, []any) {
	cols := make([]string, len(p))
	marks := make([]string, len(p))
	args := make([]any, len(p))
	for i, f := range p {
		cols[i] = f.Column
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = f.Value
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		relation, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return stmt, args
}

func buildUpdate(relation string, f query.Filter, p Payload) (string, []any, error) {
	sets := make([]string, len(p))
	args := make([]any, 0, len(p))
	for i, field := range p {
		args = append(args, field.Value)
		sets[i] = fmt.Sprintf("%s = $%d", field.Column, len(args))
	}
	where, args, err := renderFilter(f, args)
	if err != nil {
		return "", nil, err
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s", relation, strings.Join(sets, ", "))
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt, args, nil
}

func buildDelete(relation string, f query.Filter) (string, []any, error) {
	where, args, err := renderFilter(f, nil)
	if err != nil {
		return "", nil, err
	}
	stmt := "DELETE FROM " + relation
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt, args, nil
}
