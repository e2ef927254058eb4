// Package marketplace creates named marketplaces and their treasuries.
// Records are append-only: nothing here updates or deletes them.
package marketplace

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/ledger"
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the marketplace module.
type Service struct {
	accounts *ledger.Accounts
	tx       txManager
	log      *slog.Logger
}

// NewService creates a new marketplace service.
func NewService(log *slog.Logger, store ledger.Store, tx txManager) *Service {
	return &Service{
		accounts: ledger.NewAccounts(store, address.MarketplaceProgram),
		tx:       tx,
		log:      log.With("service", "marketplace"),
	}
}

// Address returns the marketplace address for name and its proof.
func Address(name string) (address.Address, uint8, error) {
	return address.Derive(address.MarketplaceProgram, address.Seed("marketplace"), address.Seed(name))
}

// TreasuryAddress returns the treasury address of a marketplace and its proof.
func TreasuryAddress(marketplace address.Address) (address.Address, uint8) {
	return address.MustDerive(address.MarketplaceProgram, address.Seed("treasury"), marketplace.Bytes())
}

// AdminAddress returns the module-controlled admin of every marketplace.
func AdminAddress() address.Address {
	addr, _ := address.MustDerive(address.MarketplaceProgram, address.Seed("admin"))
	return addr
}
