package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/telemetry"
)

// ReviewResult describes a submitted review and the chapter's new rating.
type ReviewResult struct {
	Address address.Address `json:"address"`
	Review  domain.Review   `json:"review"`
	Rating  uint8           `json:"chapter_rating"`
}

// SubmitReview records the signer's review of a chapter and folds its rating
// into the chapter mean. Each reader reviews a chapter at most once. Under
// the holder policy the reader must also hold the chapter NFT.
func (s *Service) SubmitReview(ctx context.Context, in SubmitReviewInput) (_ *ReviewResult, err error) {
	ctx, span := telemetry.Start(ctx, "platform.SubmitReview")
	defer func() { telemetry.End(span, err) }()

	wallet, _, err := s.signer(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	chapterAddr, _ := ChapterAddress(in.ChapterMint)
	addr, bump := ReviewAddress(wallet, chapterAddr)
	var (
		review  domain.Review
		chapter domain.Chapter
	)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		readerAddr, reader, err := s.loadRoleAccount(ctx, wallet, domain.RoleReader, domain.ErrReaderAccountNotFound)
		if err != nil {
			return err
		}
		if err := s.accounts.Load(ctx, chapterAddr, &chapter); err != nil {
			return err
		}
		if s.cfg.ReviewPolicy.RequiresOwnership() {
			if err := s.checkOwnership(ctx, wallet, in.ChapterMint, chapter.BookCollection); err != nil {
				return err
			}
		}

		if err := tallyReader(reader, s.cfg.ReputationIncrement); err != nil {
			return err
		}
		if err := tallyChapter(&chapter, in.Rating); err != nil {
			return err
		}

		review = domain.Review{
			Reviewer:       wallet,
			Chapter:        chapterAddr,
			BookCollection: chapter.BookCollection,
			Content:        in.Content,
			Rating:         in.Rating,
			CreatedAt:      s.now().Unix(),
			Bump:           bump,
		}
		if err := s.accounts.Init(ctx, addr, review); err != nil {
			return err
		}
		if err := s.accounts.Save(ctx, readerAddr, *reader); err != nil {
			return err
		}
		return s.accounts.Save(ctx, chapterAddr, chapter)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review submitted",
		slog.String("address", addr.String()),
		slog.String("chapter", chapterAddr.String()),
		slog.Int("rating", int(in.Rating)),
		slog.Int("chapter_rating", int(chapter.Rating)),
	)

	return &ReviewResult{Address: addr, Review: review, Rating: chapter.Rating}, nil
}

// GetReview loads the review of the chapter of mint written by reviewer.
func (s *Service) GetReview(ctx context.Context, reviewer, chapterMint address.Address) (*domain.Review, error) {
	chapterAddr, _ := ChapterAddress(chapterMint)
	addr, _ := ReviewAddress(reviewer, chapterAddr)
	var r domain.Review
	if err := s.accounts.Load(ctx, addr, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func tallyReader(reader *domain.UserAccount, increment uint64) error {
	count, ok := domain.CheckedAdd(reader.ReviewCount, 1)
	if !ok {
		return fmt.Errorf("review count: %w", domain.ErrArithmeticOverflow)
	}
	score, ok := domain.CheckedAdd(reader.ReputationScore, increment)
	if !ok {
		return fmt.Errorf("reputation: %w", domain.ErrArithmeticOverflow)
	}
	reader.ReviewCount = count
	reader.ReputationScore = score
	return nil
}

// tallyChapter adds rating to the chapter and recomputes the truncated mean.
func tallyChapter(chapter *domain.Chapter, rating uint8) error {
	sum, ok := domain.CheckedAdd(chapter.RatingSum, uint64(rating))
	if !ok {
		return fmt.Errorf("rating sum: %w", domain.ErrArithmeticOverflow)
	}
	count, ok := domain.CheckedAdd(chapter.ReviewCount, 1)
	if !ok {
		return fmt.Errorf("chapter review count: %w", domain.ErrArithmeticOverflow)
	}
	chapter.RatingSum = sum
	chapter.ReviewCount = count
	chapter.Rating = uint8(sum / uint64(count))
	return nil
}
