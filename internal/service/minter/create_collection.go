package minter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/adapter/token"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// CollectionResult describes a created collection.
type CollectionResult struct {
	Address    address.Address   `json:"address"`
	Collection domain.Collection `json:"collection"`
}

// CreateCollection creates a collection mint controlled by the module
// authority, attaches its metadata and master edition, and issues the single
// collection token to the signer.
func (s *Service) CreateCollection(ctx context.Context, inv invoke.Context, in CreateCollectionInput) (_ *CollectionResult, err error) {
	ctx, span := telemetry.Start(ctx, "minter.CreateCollection")
	defer func() { telemetry.End(span, err) }()

	if err := inv.RequireSigner(inv.Signer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	creator := inv.Signer
	authority, authorityBump := AuthorityAddress()
	mint, mintBump := CollectionMintAddress(creator, in.Seed)
	recordAddr, recordBump := CollectionAddress(mint)

	minterInv, err := authorize(inv, invoke.SignerSeeds{
		Program: address.MinterProgram,
		Seeds:   collectionMintSeeds(creator, in.Seed),
		Proof:   mintBump,
	})
	if err != nil {
		return nil, err
	}

	var c domain.Collection
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tokens.CreateMint(ctx, minterInv, mint, authority); err != nil {
			return fmt.Errorf("create collection mint: %w", err)
		}
		destination, err := s.tokens.MintTo(ctx, minterInv, mint, creator, 1)
		if err != nil {
			return fmt.Errorf("mint collection token: %w", err)
		}
		metadata, err := s.tokens.AttachMetadata(ctx, minterInv, mint, token.MetadataInput{
			Name:    in.Name,
			Symbol:  in.Symbol,
			URI:     in.URI,
			Creator: creator,
		})
		if err != nil {
			return fmt.Errorf("attach collection metadata: %w", err)
		}
		edition, err := s.tokens.AttachMasterEdition(ctx, minterInv, mint)
		if err != nil {
			return fmt.Errorf("attach collection edition: %w", err)
		}

		c = domain.Collection{
			Mint:          mint,
			Authority:     authority,
			AuthorityBump: authorityBump,
			Creator:       creator,
			Metadata:      metadata,
			MasterEdition: edition,
			Destination:   destination,
			Seed:          in.Seed,
			Bump:          recordBump,
		}
		return s.accounts.Init(ctx, recordAddr, c)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "collection created",
		slog.String("mint", mint.String()),
		slog.String("creator", creator.String()),
		slog.String("caller", address.ProgramName(inv.Caller)),
	)

	return &CollectionResult{Address: recordAddr, Collection: c}, nil
}
