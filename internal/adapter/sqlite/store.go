// Package sqlite provides a SQLite-backed account store for single-node
// deployments.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/migrations"
)

const table = "accounts"

var columns = []string{"address", "owner", "kind", "version", "data", "created_at", "updated_at"}

// Store persists accounts in SQLite. It holds a single connection, so
// transactions are serialized by the driver pool.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite account store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.SQLite())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Store{sqlDB: sqlDB, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks that the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type txCtxKey struct{}

type txState struct {
	store *Store
	tx    *sql.Tx
}

func (s *Store) txFromCtx(ctx context.Context) *sql.Tx {
	if st, ok := ctx.Value(txCtxKey{}).(*txState); ok && st.store == s {
		return st.tx
	}
	return nil
}

func (s *Store) q(ctx context.Context) querier {
	if tx := s.txFromCtx(ctx); tx != nil {
		return tx
	}
	return s.sqlDB
}

// RunInTx executes fn within a SQLite transaction.
// On success: commits.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
// A call made inside fn with its context joins the running transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFromCtx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, &txState{store: s, tx: tx})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// Create inserts acc at a free address with version 1.
func (s *Store) Create(ctx context.Context, acc domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := toMillis(s.now())
	query, args, err := squirrel.Insert(table).
		Columns(columns...).
		Values(acc.Address.Bytes(), acc.Owner.Bytes(), string(acc.Kind), 1, acc.Data, now, now).
		Suffix("ON CONFLICT (address) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", acc.Address, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create account %s: %w", acc.Address, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create account %s: %w", acc.Address, err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", acc.Address, domain.ErrAlreadyExists)
	}
	return nil
}

// Get returns the account at addr.
func (s *Store) Get(ctx context.Context, addr address.Address) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args, err := squirrel.Select(columns...).From(table).Where(squirrel.Eq{"address": addr.Bytes()}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		rawAddr, rawOwner []byte
		kind              string
		created, updated  int64
		acc               domain.Account
	)
	err = s.q(ctx).QueryRowContext(ctx, query, args...).
		Scan(&rawAddr, &rawOwner, &kind, &acc.Version, &acc.Data, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", addr, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", addr, err)
	}

	if acc.Address, err = address.FromBytes(rawAddr); err != nil {
		return nil, fmt.Errorf("scan address: %w", err)
	}
	if acc.Owner, err = address.FromBytes(rawOwner); err != nil {
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	acc.Kind = domain.Kind(kind)
	acc.CreatedAt = fromMillis(created)
	acc.UpdatedAt = fromMillis(updated)
	return &acc, nil
}

// Update replaces kind and data of the account at acc.Address and bumps its
// version. acc.Owner must match the stored owner.
func (s *Store) Update(ctx context.Context, acc domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query, args, err := squirrel.Update(table).
		Set("data", acc.Data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", toMillis(s.now())).
		Where(squirrel.Eq{"address": acc.Address.Bytes(), "owner": acc.Owner.Bytes(), "kind": string(acc.Kind)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	q := s.q(ctx)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account %s: %w", acc.Address, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account %s: %w", acc.Address, err)
	}
	if n > 0 {
		return nil
	}

	var (
		owner []byte
		kind  string
	)
	err = q.QueryRowContext(ctx, "SELECT owner, kind FROM accounts WHERE address = ?", acc.Address.Bytes()).Scan(&owner, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account %s: %w", acc.Address, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update account %s: %w", acc.Address, err)
	}
	if !bytes.Equal(owner, acc.Owner.Bytes()) {
		return fmt.Errorf("account %s: %w", acc.Address, domain.ErrAuthorityMismatch)
	}
	return fmt.Errorf("account %s: %s to %s: %w", acc.Address, kind, acc.Kind, domain.ErrKindChanged)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
