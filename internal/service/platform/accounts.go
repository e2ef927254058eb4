package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// AccountResult describes a user account and where it lives.
type AccountResult struct {
	Address address.Address    `json:"address"`
	Account domain.UserAccount `json:"account"`
}

// CreateAccount creates the signer's account for role. Each (wallet, role)
// pair has at most one account.
func (s *Service) CreateAccount(ctx context.Context, role domain.Role) (_ *AccountResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.CreateAccount")
	defer func() { telemetry.End(span, err) }()

	if !role.IsValid() {
		return nil, fmt.Errorf("%s: %w", role, domain.ErrInvalidRole)
	}
	wallet, _, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}

	addr, bump := UserAddress(wallet, role)
	acc := domain.UserAccount{Role: role, Wallet: wallet, Bump: bump}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.accounts.Init(ctx, addr, acc)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account created",
		slog.String("address", addr.String()),
		slog.String("wallet", wallet.String()),
		slog.String("role", role.String()),
	)

	return &AccountResult{Address: addr, Account: acc}, nil
}

// CreateWriterAccount creates the signer's writer account.
func (s *Service) CreateWriterAccount(ctx context.Context) (*AccountResult, error) {
	return s.CreateAccount(ctx, domain.RoleWriter)
}

// CreateReaderAccount creates the signer's reader account.
func (s *Service) CreateReaderAccount(ctx context.Context) (*AccountResult, error) {
	return s.CreateAccount(ctx, domain.RoleReader)
}

// GetUserAccount loads the account of wallet in role.
func (s *Service) GetUserAccount(ctx context.Context, wallet address.Address, role domain.Role) (*domain.UserAccount, error) {
	addr, _ := UserAddress(wallet, role)
	var acc domain.UserAccount
	if err := s.accounts.Load(ctx, addr, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// loadRoleAccount loads the account of wallet in role, reporting a missing
// account as missing.
func (s *Service) loadRoleAccount(ctx context.Context, wallet address.Address, role domain.Role, missing error) (address.Address, *domain.UserAccount, error) {
	addr, _ := UserAddress(wallet, role)
	var acc domain.UserAccount
	err := s.accounts.Load(ctx, addr, &acc)
	if errors.Is(err, domain.ErrNotFound) {
		return address.Zero, nil, fmt.Errorf("%s: %w", wallet, missing)
	}
	if err != nil {
		return address.Zero, nil, err
	}
	return addr, &acc, nil
}
