package platform

import (
	"context"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/record"
)

// AccountView is the public form of any stored record.
type AccountView struct {
	Address address.Address `json:"address"`
	Owner   address.Address `json:"owner"`
	Kind    domain.Kind     `json:"kind"`
	Version int64           `json:"version"`
	Data    domain.Record   `json:"data"`
}

// Account reads any record by address. Exclusive content and exclusive
// chapters are returned without their URI.
func (s *Service) Account(ctx context.Context, addr address.Address) (*AccountView, error) {
	acc, err := s.accounts.Raw(ctx, addr)
	if err != nil {
		return nil, err
	}
	rec, err := record.Decode(acc.Data)
	if err != nil {
		return nil, err
	}
	switch v := rec.(type) {
	case *domain.ExclusiveContent:
		public := v.Public()
		rec = &public
	case *domain.Chapter:
		public := v.Public()
		rec = &public
	}
	return &AccountView{
		Address: acc.Address,
		Owner:   acc.Owner,
		Kind:    acc.Kind,
		Version: acc.Version,
		Data:    rec,
	}, nil
}
