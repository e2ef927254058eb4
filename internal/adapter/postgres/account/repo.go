// Package account implements the account store using PostgreSQL.
package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/heartmarshall/folio/internal/adapter/postgres"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

const table = "accounts"

var columns = []string{"address", "owner", "kind", "version", "data", "created_at", "updated_at"}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides account persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.Querier
	now func() time.Time
}

// New creates a new account repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts acc at a free address with version 1.
func (r *Repo) Create(ctx context.Context, acc domain.Account) error {
	now := r.now()
	query, args, err := psql.Insert(table).
		Columns(columns...).
		Values(acc.Address.Bytes(), acc.Owner.Bytes(), string(acc.Kind), 1, acc.Data, now, now).
		Suffix("ON CONFLICT (address) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, acc.Address)
	}
	if tag.RowsAffected() == 0 {
		return mapError(domain.ErrAlreadyExists, acc.Address)
	}
	return nil
}

// Get returns the account at addr. Inside a transaction the row stays
// locked until commit, so read-modify-write sequences do not interleave.
func (r *Repo) Get(ctx context.Context, addr address.Address) (*domain.Account, error) {
	sel := psql.Select(columns...).From(table).Where(squirrel.Eq{"address": addr.Bytes()})
	if postgres.InTx(ctx) {
		sel = sel.Suffix("FOR UPDATE")
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	acc, err := scanAccount(row)
	if err != nil {
		return nil, mapError(err, addr)
	}
	return acc, nil
}

// Update replaces kind and data of the account at acc.Address and bumps its
// version. acc.Owner must match the stored owner.
func (r *Repo) Update(ctx context.Context, acc domain.Account) error {
	query, args, err := psql.Update(table).
		Set("data", acc.Data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", r.now()).
		Where(squirrel.And{
			squirrel.Eq{"address": acc.Address.Bytes()},
			squirrel.Eq{"owner": acc.Owner.Bytes()},
			squirrel.Eq{"kind": string(acc.Kind)},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, acc.Address)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing matched: tell a missing account from a foreign or retyped one.
	query, args, err = psql.Select("owner", "kind").From(table).Where(squirrel.Eq{"address": acc.Address.Bytes()}).ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	var (
		owner []byte
		kind  string
	)
	if err := q.QueryRow(ctx, query, args...).Scan(&owner, &kind); err != nil {
		return mapError(err, acc.Address)
	}
	if !bytes.Equal(owner, acc.Owner.Bytes()) {
		return mapError(domain.ErrAuthorityMismatch, acc.Address)
	}
	return mapError(fmt.Errorf("%s to %s: %w", kind, acc.Kind, domain.ErrKindChanged), acc.Address)
}

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "SELECT 1")
	return err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		addr, owner []byte
		kind        string
		acc         domain.Account
	)
	if err := row.Scan(&addr, &owner, &kind, &acc.Version, &acc.Data, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if acc.Address, err = address.FromBytes(addr); err != nil {
		return nil, fmt.Errorf("scan address: %w", err)
	}
	if acc.Owner, err = address.FromBytes(owner); err != nil {
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	acc.Kind = domain.Kind(kind)
	acc.CreatedAt = acc.CreatedAt.UTC()
	acc.UpdatedAt = acc.UpdatedAt.UTC()
	return &acc, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, addr address.Address) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("account %s: %w", addr, err)
	}

	// pgx.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("account %s: %w", addr, domain.ErrNotFound)
	}

	// PgError codes
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("account %s: %w", addr, domain.ErrAlreadyExists)
		case "23514": // check_violation
			return fmt.Errorf("account %s: %w", addr, domain.ErrValidation)
		}
	}

	return fmt.Errorf("account %s: %w", addr, err)
}
