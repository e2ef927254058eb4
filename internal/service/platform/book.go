package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// BookResult describes a book and where it lives.
type BookResult struct {
	Address address.Address `json:"address"`
	Book    domain.Book     `json:"book"`
}

// ChapterResult describes a chapter and where it lives.
type ChapterResult struct {
	Address address.Address `json:"address"`
	Chapter domain.Chapter  `json:"chapter"`
}

// CreateBook creates the book backed by a collection the signer created.
// The signer must have a writer account.
func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (_ *BookResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.CreateBook")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	addr, bump := BookAddress(in.Collection)
	var book domain.Book

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		writerAddr, writer, err := s.loadRoleAccount(ctx, wallet, domain.RoleWriter, domain.ErrWriterAccountNotFound)
		if err != nil {
			return err
		}

		collection, err := s.minter.GetCollection(ctx, in.Collection)
		if err != nil {
			return fmt.Errorf("collection %s: %w", in.Collection, err)
		}
		if collection.Creator != wallet {
			return fmt.Errorf("collection %s: %w", in.Collection, domain.ErrUnauthorizedWriter)
		}

		count, ok := domain.CheckedAdd(writer.BookCount, 1)
		if !ok {
			return fmt.Errorf("book count: %w", domain.ErrArithmeticOverflow)
		}
		writer.BookCount = count

		book = domain.Book{
			Title:             in.Title,
			Author:            wallet,
			Collection:        in.Collection,
			Genre:             in.Genre,
			RoyaltyPercentage: in.RoyaltyPercentage,
			Bump:              bump,
		}
		if err := s.accounts.Init(ctx, addr, book); err != nil {
			return err
		}
		return s.accounts.Save(ctx, writerAddr, *writer)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "book created",
		slog.String("address", addr.String()),
		slog.String("author", wallet.String()),
		slog.String("title", in.Title),
	)

	return &BookResult{Address: addr, Book: book}, nil
}

// AddChapter appends a chapter to the signer's book. The chapter is
// addressed by its NFT mint, which must be a member of the book's
// collection. A book holds at most 255 chapters.
func (s *Service) AddChapter(ctx context.Context, in AddChapterInput) (_ *ChapterResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.AddChapter")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	bookAddr, _ := BookAddress(in.Collection)
	addr, bump := ChapterAddress(in.ChapterMint)
	var chapter domain.Chapter

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var book domain.Book
		if err := s.accounts.Load(ctx, bookAddr, &book); err != nil {
			return err
		}
		if book.Author != wallet {
			return fmt.Errorf("book %s: %w", bookAddr, domain.ErrUnauthorizedWriter)
		}
		if err := s.minter.VerifyCollectionMembership(ctx, in.ChapterMint, book.Collection); err != nil {
			return fmt.Errorf("chapter mint %s: %w", in.ChapterMint, err)
		}

		count, ok := domain.CheckedAdd(book.ChapterCount, 1)
		if !ok {
			return fmt.Errorf("book %s: %w", bookAddr, domain.ErrChapterLimitExceeded)
		}
		book.ChapterCount = count

		chapter = domain.Chapter{
			Title:          in.Title,
			ContentURI:     in.ContentURI,
			Author:         wallet,
			Book:           bookAddr,
			BookCollection: book.Collection,
			ChapterNumber:  count,
			IsExclusive:    in.Exclusive,
			ChapterMint:    in.ChapterMint,
			Bump:           bump,
		}
		if err := s.accounts.Init(ctx, addr, chapter); err != nil {
			return err
		}
		return s.accounts.Save(ctx, bookAddr, book)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "chapter added",
		slog.String("address", addr.String()),
		slog.String("book", bookAddr.String()),
		slog.Int("number", int(chapter.ChapterNumber)),
	)

	return &ChapterResult{Address: addr, Chapter: chapter}, nil
}

// GetBook loads the book backed by collection.
func (s *Service) GetBook(ctx context.Context, collection address.Address) (*domain.Book, error) {
	addr, _ := BookAddress(collection)
	var b domain.Book
	if err := s.accounts.Load(ctx, addr, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetChapter loads the chapter represented by mint. The URI of an
// exclusive chapter is left out; ChapterContent discloses it.
func (s *Service) GetChapter(ctx context.Context, mint address.Address) (*domain.Chapter, error) {
	c, err := s.loadChapter(ctx, mint)
	if err != nil {
		return nil, err
	}
	public := c.Public()
	return &public, nil
}

func (s *Service) loadChapter(ctx context.Context, mint address.Address) (*domain.Chapter, error) {
	addr, _ := ChapterAddress(mint)
	var c domain.Chapter
	if err := s.accounts.Load(ctx, addr, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
