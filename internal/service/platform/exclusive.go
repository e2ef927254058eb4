package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/capability"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// CreateExclusiveContent gates a URI behind a collection the signer
// created. The URI is only ever returned by VerifyAccess.
func (s *Service) CreateExclusiveContent(ctx context.Context, in CreateExclusiveContentInput) (_ address.Address, err error) {
	ctx, span := telemetry.Start(ctx, "platform.CreateExclusiveContent")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return address.Zero, err
	}
	if err := in.Validate(); err != nil {
		return address.Zero, err
	}

	addr, bump := ExclusiveAddress(wallet, in.Collection)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		collection, err := s.minter.GetCollection(ctx, in.Collection)
		if err != nil {
			return fmt.Errorf("collection %s: %w", in.Collection, err)
		}
		if collection.Creator != wallet {
			return fmt.Errorf("collection %s: %w", in.Collection, domain.ErrUnauthorizedWriter)
		}
		return s.accounts.Init(ctx, addr, domain.ExclusiveContent{
			Author:             wallet,
			RequiredCollection: in.Collection,
			ContentURI:         in.ContentURI,
			IsActive:           true,
			CreatedAt:          s.now().Unix(),
			Bump:               bump,
		})
	})
	if err != nil {
		return address.Zero, err
	}

	s.log.InfoContext(ctx, "exclusive content created",
		slog.String("address", addr.String()),
		slog.String("collection", in.Collection.String()),
	)

	return addr, nil
}

// VerifyAccess returns the gated URI iff the signer holds a chapter NFT
// from the required collection. On any failure nothing is disclosed.
func (s *Service) VerifyAccess(ctx context.Context, in VerifyAccessInput) (_ string, err error) {
	ctx, span := telemetry.Start(ctx, "platform.VerifyAccess")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return "", err
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	var content domain.ExclusiveContent
	if err := s.accounts.Load(ctx, in.ExclusiveContent, &content); err != nil {
		return "", err
	}
	if !content.IsActive {
		return "", fmt.Errorf("content %s: %w", in.ExclusiveContent, domain.ErrContentInactive)
	}

	if err := s.checkOwnership(ctx, wallet, in.ChapterMint, content.RequiredCollection); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "access granted",
		slog.String("content", in.ExclusiveContent.String()),
		slog.String("presenter", wallet.String()),
	)

	return content.ContentURI, nil
}

// ChapterContent returns the URI of the chapter minted as chapterMint. An
// exclusive chapter is disclosed to its author and to a signer holding the
// chapter NFT of the book's collection.
func (s *Service) ChapterContent(ctx context.Context, chapterMint address.Address) (_ string, err error) {
	ctx, span := telemetry.Start(ctx, "platform.ChapterContent")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return "", err
	}
	if chapterMint.IsZero() {
		return "", domain.NewValidationError("chapter_mint", "required")
	}

	chapter, err := s.loadChapter(ctx, chapterMint)
	if err != nil {
		return "", err
	}
	if !chapter.IsExclusive || chapter.Author == wallet {
		return chapter.ContentURI, nil
	}
	if err := s.checkOwnership(ctx, wallet, chapterMint, chapter.BookCollection); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "chapter access granted",
		slog.String("chapter_mint", chapterMint.String()),
		slog.String("presenter", wallet.String()),
	)
	return chapter.ContentURI, nil
}

// checkOwnership fetches the presenter's holding of the chapter NFT and the
// chapter it represents, then hands both to the verifier.
func (s *Service) checkOwnership(ctx context.Context, presenter, chapterMint, required address.Address) error {
	holding, err := s.holdings.GetHolding(ctx, presenter, chapterMint)
	if isNotFound(err) {
		return fmt.Errorf("no holding of %s: %w", chapterMint, domain.ErrNoOwnership)
	}
	if err != nil {
		return err
	}

	chapter, err := s.loadChapter(ctx, chapterMint)
	if isNotFound(err) {
		return fmt.Errorf("no chapter for %s: %w", chapterMint, domain.ErrNoOwnership)
	}
	if err != nil {
		return err
	}

	return capability.VerifyOwnership(
		presenter,
		capability.Asset{Mint: chapterMint, Collection: chapter.BookCollection},
		capability.Holding{Owner: holding.Owner, Mint: holding.Mint, Amount: holding.Amount},
		required,
	)
}
