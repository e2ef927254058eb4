// Package memstore is a process-local account store. Transactions stage
// their writes and commit them in one step; they are serialized, so a
// transaction always sees the state left by the previous one.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// Store keeps accounts in memory.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	accounts map[address.Address]domain.Account

	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[address.Address]domain.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type txCtxKey struct{}

type tx struct {
	store  *Store
	writes map[address.Address]domain.Account
}

func (s *Store) txFromCtx(ctx context.Context) *tx {
	if t, ok := ctx.Value(txCtxKey{}).(*tx); ok && t.store == s {
		return t
	}
	return nil
}

// RunInTx executes fn against a staged view of the store.
// On success the staged writes are applied at once.
// On error the staged writes are discarded and the error returned.
// On panic the staged writes are discarded and the panic re-raised.
// A call made inside fn with its context joins the running transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFromCtx(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{store: s, writes: make(map[address.Address]domain.Account)}
	if err := fn(context.WithValue(ctx, txCtxKey{}, t)); err != nil {
		return err
	}

	s.mu.Lock()
	for addr, acc := range t.writes {
		s.accounts[addr] = acc
	}
	s.mu.Unlock()
	return nil
}

// Create stores acc at a free address.
func (s *Store) Create(ctx context.Context, acc domain.Account) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		t := s.txFromCtx(ctx)
		if _, ok := s.lookup(t, acc.Address); ok {
			return fmt.Errorf("account %s: %w", acc.Address, domain.ErrAlreadyExists)
		}
		now := s.now()
		acc.Version = 1
		acc.CreatedAt = now
		acc.UpdatedAt = now
		acc.Data = clone(acc.Data)
		t.writes[acc.Address] = acc
		return nil
	})
}

// Get returns a copy of the account at addr.
func (s *Store) Get(ctx context.Context, addr address.Address) (*domain.Account, error) {
	acc, ok := s.lookup(s.txFromCtx(ctx), addr)
	if !ok {
		return nil, fmt.Errorf("account %s: %w", addr, domain.ErrNotFound)
	}
	acc.Data = clone(acc.Data)
	return &acc, nil
}

// Update replaces the payload of an existing account owned by acc.Owner.
// The kind is fixed at creation.
func (s *Store) Update(ctx context.Context, acc domain.Account) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		t := s.txFromCtx(ctx)
		cur, ok := s.lookup(t, acc.Address)
		if !ok {
			return fmt.Errorf("account %s: %w", acc.Address, domain.ErrNotFound)
		}
		if cur.Owner != acc.Owner {
			return fmt.Errorf("account %s: %w", acc.Address, domain.ErrAuthorityMismatch)
		}
		if cur.Kind != acc.Kind {
			return fmt.Errorf("account %s: %s to %s: %w", acc.Address, cur.Kind, acc.Kind, domain.ErrKindChanged)
		}
		cur.Data = clone(acc.Data)
		cur.Version++
		cur.UpdatedAt = s.now()
		t.writes[acc.Address] = cur
		return nil
	})
}

// Ping reports the store as available.
func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of committed accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *Store) lookup(t *tx, addr address.Address) (domain.Account, bool) {
	if t != nil {
		if acc, ok := t.writes[addr]; ok {
			return acc, true
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[addr]
	return acc, ok
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
