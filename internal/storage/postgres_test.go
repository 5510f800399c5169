package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	return NewPostgresFromDB(db), mock, func() { db.Close() }
}

func TestRenderFilter(t *testing.T) {
	cases := []struct {
		name   string
		filter query.Filter
		where  string
		args   []any
	}{
		{"noop", query.All(), "", nil},
		{"single equality", query.Eq("name", "acme"), "name = $1", []any{"acme"}},
		{
			"composite key",
			query.And(query.Eq("tenant", "acme"), query.Eq("name", "ops")),
			"(tenant = $1 AND name = $2)",
			[]any{"acme", "ops"},
		},
		{
			"triple key",
			query.And(
				query.And(query.Eq("tenant", "acme"), query.Eq("role", "admin")),
				query.Eq("email", "a@x.com"),
			),
			"((tenant = $1 AND role = $2) AND email = $3)",
			[]any{"acme", "admin", "a@x.com"},
		},
		{
			"noop collapses inside a conjunction",
			query.And(query.All(), query.Eq("name", "acme")),
			"name = $1",
			[]any{"acme"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, args, err := renderFilter(tc.filter, nil)
			if err != nil {
				t.Fatalf("renderFilter failed: %v", err)
			}
			if where != tc.where {
				t.Errorf("Expected WHERE %q, got %q", tc.where, where)
			}
			if len(args) != len(tc.args) {
				t.Fatalf("Expected %d args, got %d", len(tc.args), len(args))
			}
			for i := range args {
				if args[i] != tc.args[i] {
					t.Errorf("Expected arg %d to be %v, got %v", i, tc.args[i], args[i])
				}
			}
		})
	}
}

func TestPostgresRead(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	rows := sqlmock.NewRows([]string{"name", "type"}).
		AddRow("acme", "trial").
		AddRow("globex", "paid")

	mock.ExpectQuery(`SELECT name, type FROM tenants WHERE name = \$1`).
		WithArgs("acme").
		WillReturnRows(rows)

	tuples, err := store.Read(ctx, h, "tenants", query.Eq("name", "acme"), query.Columns("name", "type"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tuples) != 2 {
		t.Fatalf("Expected 2 tuples, got %d", len(tuples))
	}
	if got := tuples[0].String("name"); got != "acme" {
		t.Errorf("Expected first name 'acme', got %q", got)
	}
	if got := tuples[1].String("type"); got != "paid" {
		t.Errorf("Expected second type 'paid', got %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresInsertReturnsGeneratedColumns(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tenants \(name, type\) VALUES \(\$1, \$2\) RETURNING created_at, created_by`).
		WithArgs("acme", "trial").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "created_by"}).AddRow(now, "admin"))
	mock.ExpectCommit()

	payload := Payload{}.Set("name", "acme").Set("type", "trial")
	affected, gen, err := store.Write(ctx, h, "tenants", nil, payload, []string{"created_at", "created_by"})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}
	if got, _ := gen.Get("created_at"); got != now {
		t.Errorf("Expected created_at %v, got %v", now, got)
	}
	if got := gen.String("created_by"); got != "admin" {
		t.Errorf("Expected created_by 'admin', got %q", got)
	}

	if err := store.Commit(ctx, h); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresUpdateScopedByFilter(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE companies SET status = \$1 WHERE \(tenant = \$2 AND name = \$3\)`).
		WithArgs("inactive", "acme", "ops").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	filter := query.And(query.Eq("tenant", "acme"), query.Eq("name", "ops"))
	affected, _, err := store.Write(ctx, h, "companies", filter, Payload{}.Set("status", "inactive"), nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	if err := store.Commit(ctx, h); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresDelete(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tenants WHERE name = \$1`).
		WithArgs("acme").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, _, err := store.Write(ctx, h, "tenants", query.Eq("name", "acme"), nil, nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	if err := store.Commit(ctx, h); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresRollbackAfterFailedWrite(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tenants WHERE name = \$1`).
		WithArgs("acme").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err = store.Write(ctx, h, "tenants", query.Eq("name", "acme"), nil, nil)
	if err == nil {
		t.Fatal("Expected write error, got nil")
	}

	if err := store.Rollback(ctx, h); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresCommitWithoutWritesIsNoOp(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	// No ExpectBegin/ExpectCommit: reads never open a transaction and a
	// commit with no preceding write must not touch the database.
	if err := store.Commit(ctx, h); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresCommitFailureIsTransactionError(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer store.Release(h)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tenants WHERE name = \$1`).
		WithArgs("acme").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	if _, _, err := store.Write(ctx, h, "tenants", query.Eq("name", "acme"), nil, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	err = store.Commit(ctx, h)
	if err == nil {
		t.Fatal("Expected commit error, got nil")
	}
	if !errors.Is(err, &fault.TransactionError{}) {
		t.Errorf("Expected TransactionError, got %T: %v", err, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}

func TestPostgresOpenedReflectsRelease(t *testing.T) {
	store, _, closeDB := newMockStore(t)
	defer closeDB()
	ctx := context.Background()

	h, err := store.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !store.Opened(h) {
		t.Error("Expected handle to be opened after Acquire")
	}

	store.Release(h)
	if store.Opened(h) {
		t.Error("Expected handle to be closed after Release")
	}
	// Release twice is harmless.
	store.Release(h)
}
