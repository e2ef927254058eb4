package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/service/marketplace"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// InitializeResult describes the platform genesis.
type InitializeResult struct {
	Platform    address.Address    `json:"platform"`
	Marketplace *marketplace.Result `json:"marketplace"`
}

// InitializePlatform creates the platform account and the platform
// marketplace together. A second call fails with domain.ErrAlreadyExists.
func (s *Service) InitializePlatform(ctx context.Context) (_ *InitializeResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.InitializePlatform")
	defer func() { telemetry.End(span, err) }()

	wallet, inv, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}

	addr, bump := PlatformAddress()

	var market *marketplace.Result
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Init(ctx, addr, domain.PlatformAccount{Bump: bump}); err != nil {
			return err
		}
		var err error
		market, err = s.market.Initialize(ctx, inv, marketplace.InitializeInput{
			Name: s.cfg.MarketplaceName,
			Fee:  s.cfg.FeeBasisPoints,
		})
		if err != nil {
			return fmt.Errorf("initialize marketplace: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "platform initialized",
		slog.String("platform", addr.String()),
		slog.String("marketplace", market.Address.String()),
		slog.String("signer", wallet.String()),
	)

	return &InitializeResult{Platform: addr, Marketplace: market}, nil
}

// GetPlatform loads the platform account.
func (s *Service) GetPlatform(ctx context.Context) (*domain.PlatformAccount, error) {
	addr, _ := PlatformAddress()
	var p domain.PlatformAccount
	if err := s.accounts.Load(ctx, addr, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
