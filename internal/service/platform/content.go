package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/service/minter"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// UploadResult describes published content.
type UploadResult struct {
	Collection *minter.CollectionResult `json:"collection"`
	NFT        *minter.NFTResult        `json:"nft"`
	Listing    address.Address          `json:"listing"`
	Content    domain.ContentListing    `json:"content"`
}

// UploadContent publishes content as a new collection with one
// representative NFT issued to the signer, and lists it on the platform.
// Either every step commits or none does.
func (s *Service) UploadContent(ctx context.Context, in UploadContentInput) (_ *UploadResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.UploadContent")
	defer func() { telemetry.End(span, err) }()

	wallet, inv, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	platformAddr, _ := PlatformAddress()
	res := &UploadResult{}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var platform domain.PlatformAccount
		if err := s.accounts.Load(ctx, platformAddr, &platform); err != nil {
			return fmt.Errorf("platform: %w", err)
		}

		collection, err := s.minter.CreateCollection(ctx, inv, minter.CreateCollectionInput{
			Seed:   in.ContentID,
			Name:   in.Title,
			Symbol: in.Symbol,
			URI:    in.URI,
		})
		if err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		nft, err := s.minter.MintNFT(ctx, inv, minter.MintNFTInput{
			Collection:         collection.Collection.Mint,
			Seed:               in.ContentID,
			Name:               in.Title,
			Symbol:             in.Symbol,
			URI:                in.URI,
			RoyaltyBasisPoints: in.RoyaltyBasisPoints,
		})
		if err != nil {
			return fmt.Errorf("mint nft: %w", err)
		}

		seq, ok := domain.CheckedAdd(platform.Counter, 1)
		if !ok {
			return fmt.Errorf("platform counter: %w", domain.ErrArithmeticOverflow)
		}
		platform.Counter = seq

		listingAddr, bump := ListingAddress(nft.NFT.Mint)
		listing := domain.ContentListing{
			Creator:     wallet,
			Collection:  collection.Collection.Mint,
			Mint:        nft.NFT.Mint,
			ContentID:   in.ContentID,
			Title:       in.Title,
			ContentType: in.ContentType,
			Sequence:    seq,
			ListedAt:    s.now().Unix(),
			Bump:        bump,
		}
		if err := s.accounts.Init(ctx, listingAddr, listing); err != nil {
			return err
		}
		if err := s.accounts.Save(ctx, platformAddr, platform); err != nil {
			return err
		}

		res.Collection = collection
		res.NFT = nft
		res.Listing = listingAddr
		res.Content = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "content uploaded",
		slog.String("content_id", in.ContentID),
		slog.String("collection", res.Collection.Collection.Mint.String()),
		slog.String("mint", res.NFT.NFT.Mint.String()),
		slog.Uint64("sequence", res.Content.Sequence),
	)

	return res, nil
}

// GetListing loads the content listing of an NFT mint.
func (s *Service) GetListing(ctx context.Context, mint address.Address) (*domain.ContentListing, error) {
	addr, _ := ListingAddress(mint)
	var l domain.ContentListing
	if err := s.accounts.Load(ctx, addr, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
