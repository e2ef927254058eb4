// Package capability decides whether a presenter controls a qualifying
// asset. It reads nothing and writes nothing: callers fetch the records and
// the verifier only judges them.
package capability

import (
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// Asset is the claimed asset: a mint and the collection it belongs to.
type Asset struct {
	Mint       address.Address
	Collection address.Address
}

// Holding is the presenter's balance record for a mint.
type Holding struct {
	Owner  address.Address
	Mint   address.Address
	Amount uint64
}

// VerifyOwnership succeeds iff presenter holds a positive balance of asset
// and the asset belongs to required. Failures are domain.ErrNoOwnership or
// domain.ErrWrongCollection.
func VerifyOwnership(presenter address.Address, asset Asset, holding Holding, required address.Address) error {
	if holding.Owner != presenter {
		return fmt.Errorf("holding owned by %s: %w", holding.Owner, domain.ErrNoOwnership)
	}
	if holding.Mint != asset.Mint {
		return fmt.Errorf("holding is for mint %s: %w", holding.Mint, domain.ErrNoOwnership)
	}
	if holding.Amount == 0 {
		return fmt.Errorf("empty holding: %w", domain.ErrNoOwnership)
	}
	if asset.Collection != required {
		return fmt.Errorf("asset in collection %s: %w", asset.Collection, domain.ErrWrongCollection)
	}
	return nil
}

// Policy selects when review submission is gated by ownership.
type Policy string

const (
	// PolicyOpen requires only a reader account.
	PolicyOpen Policy = "open"
	// PolicyHolder additionally requires the reviewer to hold the chapter NFT.
	PolicyHolder Policy = "holder"
)

func (p Policy) IsValid() bool {
	switch p {
	case PolicyOpen, PolicyHolder:
		return true
	}
	return false
}

// RequiresOwnership reports whether the policy gates reviews.
func (p Policy) RequiresOwnership() bool { return p == PolicyHolder }
