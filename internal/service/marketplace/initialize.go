package marketplace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// Result describes a marketplace and where its records live.
type Result struct {
	Address     address.Address    `json:"address"`
	Treasury    address.Address    `json:"treasury"`
	Marketplace domain.Marketplace `json:"marketplace"`
}

// Initialize creates the marketplace named in.Name and its treasury in one
// step. A second call with the same name fails with domain.ErrAlreadyExists.
func (s *Service) Initialize(ctx context.Context, inv invoke.Context, in InitializeInput) (_ *Result, err error) {
	ctx, span := telemetry.Start(ctx, "marketplace.Initialize")
	defer func() { telemetry.End(span, err) }()

	if err := inv.RequireSigner(inv.Signer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	addr, bump, err := Address(in.Name)
	if err != nil {
		return nil, fmt.Errorf("derive marketplace: %w", err)
	}
	treasury, treasuryBump := TreasuryAddress(addr)

	m := domain.Marketplace{
		Admin:        AdminAddress(),
		Fee:          in.Fee,
		Name:         in.Name,
		Bump:         bump,
		TreasuryBump: treasuryBump,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Init(ctx, addr, m); err != nil {
			return err
		}
		return s.accounts.Init(ctx, treasury, domain.Treasury{Marketplace: addr, Bump: treasuryBump})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "marketplace initialized",
		slog.String("name", in.Name),
		slog.String("address", addr.String()),
		slog.String("signer", inv.Signer.String()),
		slog.String("caller", address.ProgramName(inv.Caller)),
	)

	return &Result{Address: addr, Treasury: treasury, Marketplace: m}, nil
}
