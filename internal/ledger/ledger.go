// Package ledger defines the account store contract and the program-scoped
// view each module uses to read and write records.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/record"
)

// Store is implemented by every account store backend.
//
// Create fails with domain.ErrAlreadyExists when the address is occupied.
// Get fails with domain.ErrNotFound. Update fails with domain.ErrNotFound,
// with domain.ErrAuthorityMismatch when acc.Owner is not the stored owner and
// with domain.ErrKindChanged when acc.Kind is not the stored kind.
// Calls made with a context returned by the backend's RunInTx belong to that
// transaction.
type Store interface {
	Create(ctx context.Context, acc domain.Account) error
	Get(ctx context.Context, addr address.Address) (*domain.Account, error)
	Update(ctx context.Context, acc domain.Account) error
}

// TxManager runs fn as one atomic unit of work. Nested calls join the
// outer transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Accounts is the view of the store granted to a single program. Reads of any
// record are allowed; writes are stamped with the program and rejected by the
// store for records the program does not own.
type Accounts struct {
	store   Store
	program address.Address
}

// NewAccounts returns the view of store for program.
func NewAccounts(store Store, program address.Address) *Accounts {
	return &Accounts{store: store, program: program}
}

// Program returns the program this view writes as.
func (a *Accounts) Program() address.Address { return a.program }

// Init creates a record at addr owned by the program.
func (a *Accounts) Init(ctx context.Context, addr address.Address, rec domain.Record) error {
	data, err := record.Marshal(rec)
	if err != nil {
		return err
	}
	err = a.store.Create(ctx, domain.Account{
		Address: addr,
		Owner:   a.program,
		Kind:    rec.Kind(),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("init %s %s: %w", rec.Kind(), addr, err)
	}
	return nil
}

// Load decodes the record at addr into rec. The record must be owned by the
// program; use LoadFrom for records owned by another program.
func (a *Accounts) Load(ctx context.Context, addr address.Address, rec domain.Record) error {
	return a.LoadFrom(ctx, a.program, addr, rec)
}

// LoadFrom decodes the record at addr into rec after checking that owner
// wrote it. A record at the right address but written by another program is
// reported as an authority mismatch.
func (a *Accounts) LoadFrom(ctx context.Context, owner, addr address.Address, rec domain.Record) error {
	acc, err := a.store.Get(ctx, addr)
	if err != nil {
		return fmt.Errorf("load %s %s: %w", rec.Kind(), addr, err)
	}
	if acc.Owner != owner {
		return fmt.Errorf("load %s %s: %w", rec.Kind(), addr, domain.ErrAuthorityMismatch)
	}
	if err := record.Unmarshal(acc.Data, rec); err != nil {
		return fmt.Errorf("load %s %s: %w", rec.Kind(), addr, err)
	}
	return nil
}

// Save overwrites the record at addr.
func (a *Accounts) Save(ctx context.Context, addr address.Address, rec domain.Record) error {
	data, err := record.Marshal(rec)
	if err != nil {
		return err
	}
	err = a.store.Update(ctx, domain.Account{
		Address: addr,
		Owner:   a.program,
		Kind:    rec.Kind(),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("save %s %s: %w", rec.Kind(), addr, err)
	}
	return nil
}

// Exists reports whether any record occupies addr.
func (a *Accounts) Exists(ctx context.Context, addr address.Address) (bool, error) {
	_, err := a.store.Get(ctx, addr)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup %s: %w", addr, err)
	}
}

// Raw returns the stored account at addr without decoding it.
func (a *Accounts) Raw(ctx context.Context, addr address.Address) (*domain.Account, error) {
	acc, err := a.store.Get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", addr, err)
	}
	return acc, nil
}
