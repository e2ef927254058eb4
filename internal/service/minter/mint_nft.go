package minter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/adapter/token"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// NFTResult describes a minted NFT.
type NFTResult struct {
	Address address.Address `json:"address"`
	NFT     domain.NFT      `json:"nft"`
}

// MintNFT mints one NFT into an existing collection and issues it to the
// signer. Only the collection creator may mint into it. The module authority
// signs the mint; the caller only supplies its context.
func (s *Service) MintNFT(ctx context.Context, inv invoke.Context, in MintNFTInput) (_ *NFTResult, err error) {
	ctx, span := telemetry.Start(ctx, "minter.MintNFT")
	defer func() { telemetry.End(span, err) }()

	if err := inv.RequireSigner(inv.Signer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	creator := inv.Signer
	mint, mintBump := NFTMintAddress(in.Collection, in.Seed)
	recordAddr, recordBump := NFTAddress(mint)

	minterInv, err := authorize(inv, invoke.SignerSeeds{
		Program: address.MinterProgram,
		Seeds:   nftMintSeeds(in.Collection, in.Seed),
		Proof:   mintBump,
	})
	if err != nil {
		return nil, err
	}
	authority, _ := AuthorityAddress()

	var n domain.NFT
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		collection, err := s.GetCollection(ctx, in.Collection)
		if err != nil {
			return fmt.Errorf("collection %s: %w", in.Collection, err)
		}
		if collection.Creator != creator {
			return fmt.Errorf("mint into collection %s: %w", in.Collection, domain.ErrUnauthorizedWriter)
		}

		if err := s.tokens.CreateMint(ctx, minterInv, mint, authority); err != nil {
			return fmt.Errorf("create nft mint: %w", err)
		}
		destination, err := s.tokens.MintTo(ctx, minterInv, mint, creator, 1)
		if err != nil {
			return fmt.Errorf("mint nft token: %w", err)
		}
		metadata, err := s.tokens.AttachMetadata(ctx, minterInv, mint, token.MetadataInput{
			Name:                 in.Name,
			Symbol:               in.Symbol,
			URI:                  in.URI,
			SellerFeeBasisPoints: in.RoyaltyBasisPoints,
			Creator:              creator,
			Collection:           in.Collection,
		})
		if err != nil {
			return fmt.Errorf("attach nft metadata: %w", err)
		}
		edition, err := s.tokens.AttachMasterEdition(ctx, minterInv, mint)
		if err != nil {
			return fmt.Errorf("attach nft edition: %w", err)
		}

		n = domain.NFT{
			Mint:          mint,
			Collection:    in.Collection,
			Creator:       creator,
			Metadata:      metadata,
			MasterEdition: edition,
			Destination:   destination,
			Seed:          in.Seed,
			Bump:          recordBump,
		}
		return s.accounts.Init(ctx, recordAddr, n)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "nft minted",
		slog.String("mint", mint.String()),
		slog.String("collection", in.Collection.String()),
		slog.String("creator", creator.String()),
		slog.String("caller", address.ProgramName(inv.Caller)),
	)

	return &NFTResult{Address: recordAddr, NFT: n}, nil
}

// VerifyCollectionMembership succeeds iff the NFT of nftMint belongs to
// collection. It reads only.
func (s *Service) VerifyCollectionMembership(ctx context.Context, nftMint, collection address.Address) error {
	n, err := s.GetNFT(ctx, nftMint)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("nft %s: %w", nftMint, err)
	}
	if err != nil {
		return err
	}
	if n.Collection != collection {
		return fmt.Errorf("nft %s in collection %s: %w", nftMint, n.Collection, domain.ErrWrongCollection)
	}
	return nil
}

// VerifyCollection marks the collection reference on the NFT metadata as
// verified. Only the NFT creator may request it; the module authority signs.
func (s *Service) VerifyCollection(ctx context.Context, inv invoke.Context, nftMint address.Address) (err error) {
	ctx, span := telemetry.Start(ctx, "minter.VerifyCollection")
	defer func() { telemetry.End(span, err) }()

	if err := inv.RequireSigner(inv.Signer); err != nil {
		return err
	}
	minterInv, err := authorize(inv)
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.GetNFT(ctx, nftMint)
		if err != nil {
			return err
		}
		if n.Creator != inv.Signer {
			return fmt.Errorf("verify nft %s: %w", nftMint, domain.ErrUnauthorizedWriter)
		}
		return s.tokens.VerifyCollection(ctx, minterInv, nftMint)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "collection verified", slog.String("mint", nftMint.String()))
	return nil
}

// Transfer hands one unit of mint from the signer to in.To.
func (s *Service) Transfer(ctx context.Context, inv invoke.Context, in TransferInput) (err error) {
	ctx, span := telemetry.Start(ctx, "minter.Transfer")
	defer func() { telemetry.End(span, err) }()

	if err := inv.RequireSigner(inv.Signer); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.tokens.TransferHolding(ctx, inv, in.Mint, inv.Signer, in.To, 1)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "nft transferred",
		slog.String("mint", in.Mint.String()),
		slog.String("from", inv.Signer.String()),
		slog.String("to", in.To.String()),
	)
	return nil
}
