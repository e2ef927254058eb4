package minter

import (
	"fmt"

	"github.com/heartmarshall/folio/internal/adapter/token"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// MaxSeedLen is the longest seed a collection or NFT can be created with.
const MaxSeedLen = address.MaxSeedLen

// CreateCollectionInput holds the parameters for creating a collection.
type CreateCollectionInput struct {
	Seed   string
	Name   string
	Symbol string
	URI    string
}

// Validate checks all fields and collects all errors.
func (i CreateCollectionInput) Validate() error {
	errs := validateSeed(nil, i.Seed)
	errs = validateMetadata(errs, i.Name, i.Symbol, i.URI)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// MintNFTInput holds the parameters for minting an NFT into a collection.
type MintNFTInput struct {
	Collection         address.Address
	Seed               string
	Name               string
	Symbol             string
	URI                string
	RoyaltyBasisPoints uint16
}

// Validate checks all fields and collects all errors.
func (i MintNFTInput) Validate() error {
	var errs []domain.FieldError
	if i.Collection.IsZero() {
		errs = append(errs, domain.FieldError{Field: "collection", Message: "required"})
	}
	errs = validateSeed(errs, i.Seed)
	errs = validateMetadata(errs, i.Name, i.Symbol, i.URI)
	if i.RoyaltyBasisPoints > domain.MaxRoyaltyBasisPoints {
		errs = append(errs, domain.FieldError{Field: "royalty_basis_points", Message: fmt.Sprintf("max %d", domain.MaxRoyaltyBasisPoints)})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// TransferInput holds the parameters for handing an NFT to another wallet.
type TransferInput struct {
	Mint address.Address
	To   address.Address
}

// Validate checks all fields and collects all errors.
func (i TransferInput) Validate() error {
	var errs []domain.FieldError
	if i.Mint.IsZero() {
		errs = append(errs, domain.FieldError{Field: "mint", Message: "required"})
	}
	if i.To.IsZero() {
		errs = append(errs, domain.FieldError{Field: "to", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateSeed(errs []domain.FieldError, seed string) []domain.FieldError {
	if seed == "" {
		return append(errs, domain.FieldError{Field: "seed", Message: "required"})
	}
	if len(seed) > MaxSeedLen {
		return append(errs, domain.FieldError{Field: "seed", Message: fmt.Sprintf("max %d bytes", MaxSeedLen)})
	}
	return errs
}

func validateMetadata(errs []domain.FieldError, name, symbol, uri string) []domain.FieldError {
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > token.MaxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: fmt.Sprintf("max %d bytes", token.MaxNameLen)})
	}
	if len(symbol) > token.MaxSymbolLen {
		errs = append(errs, domain.FieldError{Field: "symbol", Message: fmt.Sprintf("max %d bytes", token.MaxSymbolLen)})
	}
	if len(uri) > token.MaxURILen {
		errs = append(errs, domain.FieldError{Field: "uri", Message: fmt.Sprintf("max %d bytes", token.MaxURILen)})
	}
	return errs
}
