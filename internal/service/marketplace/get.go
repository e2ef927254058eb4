package marketplace

import (
	"context"
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// Get re-derives the address of the marketplace named name and loads it.
func (s *Service) Get(ctx context.Context, name string) (*Result, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	addr, _, err := Address(name)
	if err != nil {
		return nil, fmt.Errorf("derive marketplace: %w", err)
	}

	var m domain.Marketplace
	if err := s.accounts.Load(ctx, addr, &m); err != nil {
		return nil, err
	}
	treasury, err := s.treasuryOf(addr, m)
	if err != nil {
		return nil, err
	}
	return &Result{Address: addr, Treasury: treasury, Marketplace: m}, nil
}

// Treasury loads the treasury of the marketplace named name. The address is
// rebuilt from the proof stored on the marketplace rather than searched for.
func (s *Service) Treasury(ctx context.Context, name string) (address.Address, *domain.Treasury, error) {
	res, err := s.Get(ctx, name)
	if err != nil {
		return address.Zero, nil, err
	}

	var t domain.Treasury
	if err := s.accounts.Load(ctx, res.Treasury, &t); err != nil {
		return address.Zero, nil, err
	}
	if t.Marketplace != res.Address {
		return address.Zero, nil, fmt.Errorf("treasury %s: %w", res.Treasury, domain.ErrInvalidDerivation)
	}
	return res.Treasury, &t, nil
}

func (s *Service) treasuryOf(addr address.Address, m domain.Marketplace) (address.Address, error) {
	treasury, err := address.CreateWithProof(address.MarketplaceProgram, m.TreasuryBump, address.Seed("treasury"), addr.Bytes())
	if err != nil {
		return address.Zero, fmt.Errorf("treasury of %s: %w", addr, domain.ErrInvalidDerivation)
	}
	return treasury, nil
}
