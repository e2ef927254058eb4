// Package system is the in-process fungible transfer primitive. Balances are
// records owned by the system program, so a transfer commits or rolls back
// with the operation that issued it.
package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/ledger"
)

// Program moves lamports between addresses.
type Program struct {
	accounts *ledger.Accounts
	tx       ledger.TxManager
}

// New creates the system program over store.
func New(store ledger.Store, tx ledger.TxManager) *Program {
	return &Program{
		accounts: ledger.NewAccounts(store, address.SystemProgram),
		tx:       tx,
	}
}

// WalletAddress returns where the balance of owner is kept.
func WalletAddress(owner address.Address) address.Address {
	addr, _ := address.MustDerive(address.SystemProgram, address.Seed("wallet"), owner.Bytes())
	return addr
}

// Balance returns the lamports held by owner. Unknown owners hold nothing.
func (p *Program) Balance(ctx context.Context, owner address.Address) (uint64, error) {
	var w domain.Wallet
	err := p.accounts.Load(ctx, WalletAddress(owner), &w)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Lamports, nil
}

// Airdrop credits owner with freshly issued lamports.
func (p *Program) Airdrop(ctx context.Context, owner address.Address, amount uint64) error {
	return p.tx.RunInTx(ctx, func(ctx context.Context) error {
		return p.credit(ctx, owner, amount)
	})
}

// Transfer moves amount from one owner to another. from must be signed by
// inv; a short balance fails with domain.ErrInsufficientFunds.
func (p *Program) Transfer(ctx context.Context, inv invoke.Context, from, to address.Address, amount uint64) error {
	if err := inv.RequireSigner(from); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return p.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := p.debit(ctx, from, amount); err != nil {
			return err
		}
		return p.credit(ctx, to, amount)
	})
}

func (p *Program) debit(ctx context.Context, owner address.Address, amount uint64) error {
	addr := WalletAddress(owner)
	var w domain.Wallet
	err := p.accounts.Load(ctx, addr, &w)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("debit %s: %w", owner, domain.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	left, ok := domain.CheckedSub(w.Lamports, amount)
	if !ok {
		return fmt.Errorf("debit %s: %w", owner, domain.ErrInsufficientFunds)
	}
	w.Lamports = left
	return p.accounts.Save(ctx, addr, w)
}

func (p *Program) credit(ctx context.Context, owner address.Address, amount uint64) error {
	addr := WalletAddress(owner)
	var w domain.Wallet
	err := p.accounts.Load(ctx, addr, &w)
	if errors.Is(err, domain.ErrNotFound) {
		return p.accounts.Init(ctx, addr, domain.Wallet{Lamports: amount})
	}
	if err != nil {
		return err
	}
	total, ok := domain.CheckedAdd(w.Lamports, amount)
	if !ok {
		return fmt.Errorf("credit %s: %w", owner, domain.ErrArithmeticOverflow)
	}
	w.Lamports = total
	return p.accounts.Save(ctx, addr, w)
}
