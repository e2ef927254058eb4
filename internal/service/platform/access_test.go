package platform

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/capability"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/ledger"
)

const secretURI = "ipfs://secret"

// gated sets up a book with one chapter and exclusive content gated by the
// book's collection. The writer still holds the chapter NFT.
func (f fixture) gated(t *testing.T, seed string) (content, collection, chapterMint address.Address) {
	t.Helper()
	collection = f.book(t, writer, seed)
	chapterMint = f.chapter(t, writer, collection, seed+"-1")
	content, err := f.svc.CreateExclusiveContent(as(writer), CreateExclusiveContentInput{
		Collection: collection, ContentURI: secretURI,
	})
	require.NoError(t, err)
	return content, collection, chapterMint
}

// ---------------------------------------------------------------------------
// Exclusive content
// ---------------------------------------------------------------------------

func TestCreateExclusiveContent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)

	content, collection, _ := f.gated(t, "dune")
	want, _ := ExclusiveAddress(writer, collection)
	assert.Equal(t, want, content)

	_, err := f.svc.CreateExclusiveContent(as(writer), CreateExclusiveContentInput{Collection: collection, ContentURI: "u"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.svc.CreateExclusiveContent(as(other), CreateExclusiveContentInput{Collection: collection, ContentURI: "u"})
	assert.ErrorIs(t, err, domain.ErrUnauthorizedWriter)

	_, err = f.svc.CreateExclusiveContent(as(writer), CreateExclusiveContentInput{Collection: collection, ContentURI: strings.Repeat("u", 101)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyAccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	ctx := context.Background()

	content, _, chapterMint := f.gated(t, "dune")

	otherCollection := f.book(t, writer, "emma")
	otherChapter := f.chapter(t, writer, otherCollection, "emma-1")
	strayMint := f.chapterMint(t, writer, otherCollection, "stray")

	inactive, _ := ExclusiveAddress(writer, address.Address{0x1a})
	require.NoError(t, ledger.NewAccounts(f.store, address.PlatformProgram).Init(ctx, inactive, domain.ExclusiveContent{
		Author: writer, RequiredCollection: otherCollection, ContentURI: secretURI,
	}))

	f.give(t, writer, reader, otherChapter)
	f.give(t, writer, reader, strayMint)

	tests := []struct {
		name    string
		who     address.Address
		content address.Address
		mint    address.Address
		wantErr error
	}{
		{name: "writer holds the chapter", who: writer, content: content, mint: chapterMint},
		{name: "reader holds nothing", who: reader, content: content, mint: chapterMint, wantErr: domain.ErrNoOwnership},
		{name: "chapter from another collection", who: reader, content: content, mint: otherChapter, wantErr: domain.ErrWrongCollection},
		{name: "nft without a chapter", who: reader, content: content, mint: strayMint, wantErr: domain.ErrNoOwnership},
		{name: "inactive content", who: reader, content: inactive, mint: otherChapter, wantErr: domain.ErrContentInactive},
		{name: "unknown content", who: reader, content: address.Address{0x2b}, mint: otherChapter, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := f.svc.VerifyAccess(as(tt.who), VerifyAccessInput{ExclusiveContent: tt.content, ChapterMint: tt.mint})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, uri, "failure must disclose nothing")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, secretURI, uri)
		})
	}
}

func TestVerifyAccess_FollowsTheHolding(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)

	content, _, chapterMint := f.gated(t, "dune")
	in := VerifyAccessInput{ExclusiveContent: content, ChapterMint: chapterMint}

	f.give(t, writer, reader, chapterMint)

	uri, err := f.svc.VerifyAccess(as(reader), in)
	require.NoError(t, err)
	assert.Equal(t, secretURI, uri)

	_, err = f.svc.VerifyAccess(as(writer), in)
	assert.ErrorIs(t, err, domain.ErrNoOwnership, "an emptied holding grants nothing")

	_, err = f.svc.VerifyAccess(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAccount_RedactsExclusiveURI(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	ctx := context.Background()

	content, collection, _ := f.gated(t, "dune")

	view, err := f.svc.Account(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, domain.KindExclusiveContent, view.Kind)
	assert.Equal(t, address.PlatformProgram, view.Owner)

	ec, ok := view.Data.(*domain.ExclusiveContent)
	require.True(t, ok)
	assert.Empty(t, ec.ContentURI)
	assert.Equal(t, collection, ec.RequiredCollection)
	assert.True(t, ec.IsActive)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), secretURI)
	assert.NotContains(t, string(raw), "content_uri")

	bookAddr, _ := BookAddress(collection)
	view, err = f.svc.Account(ctx, bookAddr)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBook, view.Kind)

	_, err = f.svc.Account(ctx, address.Address{0x3c})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// exclusiveChapter mints a chapter NFT and adds it as an exclusive chapter.
func (f fixture) exclusiveChapter(t *testing.T, collection address.Address, seed string) (mint, addr address.Address) {
	t.Helper()
	mint = f.chapterMint(t, writer, collection, seed)
	res, err := f.svc.AddChapter(as(writer), AddChapterInput{
		Collection: collection, ChapterMint: mint, Title: "Chapter " + seed, ContentURI: secretURI, Exclusive: true,
	})
	require.NoError(t, err)
	return mint, res.Address
}

func TestChapterReads_HideExclusiveURI(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	collection := f.book(t, writer, "solaris")
	openMint := f.chapter(t, writer, collection, "solaris-1")
	exclusiveMint, _ := f.exclusiveChapter(t, collection, "solaris-2")

	tests := []struct {
		name    string
		mint    address.Address
		wantURI string
	}{
		{name: "public chapter", mint: openMint, wantURI: "uri://solaris-1"},
		{name: "exclusive chapter", mint: exclusiveMint, wantURI: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, _ := ChapterAddress(tt.mint)
			view, err := f.svc.Account(context.Background(), addr)
			require.NoError(t, err)
			ch, ok := view.Data.(*domain.Chapter)
			require.True(t, ok)
			assert.Equal(t, tt.wantURI, ch.ContentURI)

			raw, err := json.Marshal(view)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), secretURI)

			got, err := f.svc.GetChapter(context.Background(), tt.mint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURI, got.ContentURI)
		})
	}
}

func TestChapterContent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	collection := f.book(t, writer, "ubik")
	openMint := f.chapter(t, writer, collection, "ubik-1")
	exclusiveMint, _ := f.exclusiveChapter(t, collection, "ubik-2")

	uri, err := f.svc.ChapterContent(as(reader), openMint)
	require.NoError(t, err)
	assert.Equal(t, "uri://ubik-1", uri)

	uri, err = f.svc.ChapterContent(as(writer), exclusiveMint)
	require.NoError(t, err)
	assert.Equal(t, secretURI, uri, "the author reads their own chapter")

	uri, err = f.svc.ChapterContent(as(reader), exclusiveMint)
	assert.ErrorIs(t, err, domain.ErrNoOwnership)
	assert.Empty(t, uri)

	_, err = f.svc.ChapterContent(context.Background(), exclusiveMint)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.ChapterContent(as(reader), address.Address{0x44})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.give(t, writer, reader, exclusiveMint)
	uri, err = f.svc.ChapterContent(as(reader), exclusiveMint)
	require.NoError(t, err)
	assert.Equal(t, secretURI, uri)

	chapter, err := f.svc.GetChapter(context.Background(), exclusiveMint)
	require.NoError(t, err)
	assert.Empty(t, chapter.ContentURI, "granting access does not unredact reads")
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

func TestSubmitReview_RatingIsTruncatedMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ratings []uint8
		want    uint8
	}{
		{name: "single", ratings: []uint8{3}, want: 3},
		{name: "5 4 4", ratings: []uint8{5, 4, 4}, want: 4},
		{name: "1 2", ratings: []uint8{1, 2}, want: 1},
		{name: "5 5 5 1", ratings: []uint8{5, 5, 5, 1}, want: 4},
		{name: "1 1 1 1 5", ratings: []uint8{1, 1, 1, 1, 5}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, capability.PolicyOpen)
			col := f.book(t, writer, "dune")
			mint := f.chapter(t, writer, col, "ch1")

			for i, r := range tt.ratings {
				wallet := address.Address{0x70, byte(i + 1)}
				_, err := f.svc.CreateReaderAccount(as(wallet))
				require.NoError(t, err)
				_, err = f.svc.SubmitReview(as(wallet), SubmitReviewInput{ChapterMint: mint, Content: "review", Rating: r})
				require.NoError(t, err)
			}

			ch, err := f.svc.GetChapter(context.Background(), mint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ch.Rating)
			assert.Equal(t, uint32(len(tt.ratings)), ch.ReviewCount)
		})
	}
}

func TestSubmitReview_OncePerReader(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	ctx := context.Background()

	col := f.book(t, writer, "dune")
	mint := f.chapter(t, writer, col, "ch1")
	_, err := f.svc.CreateReaderAccount(as(reader))
	require.NoError(t, err)

	res, err := f.svc.SubmitReview(as(reader), SubmitReviewInput{ChapterMint: mint, Content: "great", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, uint8(5), res.Rating)
	assert.Equal(t, col, res.Review.BookCollection)

	_, err = f.svc.SubmitReview(as(reader), SubmitReviewInput{ChapterMint: mint, Content: "again", Rating: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	acc, err := f.svc.GetUserAccount(ctx, reader, domain.RoleReader)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), acc.ReviewCount)
	assert.Equal(t, uint64(50), acc.ReputationScore)

	ch, err := f.svc.GetChapter(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), ch.Rating, "rejected review must not move the rating")

	got, err := f.svc.GetReview(ctx, reader, mint)
	require.NoError(t, err)
	assert.Equal(t, "great", got.Content)
}

func TestSubmitReview_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)

	col := f.book(t, writer, "dune")
	mint := f.chapter(t, writer, col, "ch1")

	_, err := f.svc.SubmitReview(as(reader), SubmitReviewInput{ChapterMint: mint, Content: "c", Rating: 4})
	assert.ErrorIs(t, err, domain.ErrReaderAccountNotFound)

	_, err = f.svc.CreateReaderAccount(as(reader))
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   SubmitReviewInput
		wantErr error
	}{
		{name: "rating 0", input: SubmitReviewInput{ChapterMint: mint, Content: "c", Rating: 0}, wantErr: domain.ErrInvalidRating},
		{name: "rating 6", input: SubmitReviewInput{ChapterMint: mint, Content: "c", Rating: 6}, wantErr: domain.ErrInvalidRating},
		{name: "rating before content", input: SubmitReviewInput{ChapterMint: mint, Rating: 9}, wantErr: domain.ErrInvalidRating},
		{name: "content 501 bytes", input: SubmitReviewInput{ChapterMint: mint, Content: strings.Repeat("c", 501), Rating: 3}, wantErr: domain.ErrValidation},
		{name: "unknown chapter", input: SubmitReviewInput{ChapterMint: address.Address{0x4d}, Content: "c", Rating: 3}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.store.Len()
			_, err := f.svc.SubmitReview(as(reader), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.store.Len())
		})
	}
}

func TestSubmitReview_ContentIsOptional(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)

	col := f.book(t, writer, "dune")
	_, err := f.svc.CreateReaderAccount(as(reader))
	require.NoError(t, err)
	_, err = f.svc.CreateReaderAccount(as(other))
	require.NoError(t, err)

	tests := []struct {
		name     string
		reviewer address.Address
		content  string
	}{
		{name: "rating only", reviewer: reader, content: ""},
		{name: "content at the cap", reviewer: other, content: strings.Repeat("c", domain.MaxReviewLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mint := f.chapter(t, writer, col, tt.name)
			res, err := f.svc.SubmitReview(as(tt.reviewer), SubmitReviewInput{ChapterMint: mint, Content: tt.content, Rating: 5})
			require.NoError(t, err)
			assert.Equal(t, tt.content, res.Review.Content)
			assert.Equal(t, uint8(5), res.Rating)
		})
	}
}

func TestSubmitReview_Policy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  capability.Policy
		holds   bool
		wantErr error
	}{
		{name: "open without nft", policy: capability.PolicyOpen},
		{name: "holder without nft", policy: capability.PolicyHolder, wantErr: domain.ErrNoOwnership},
		{name: "holder with nft", policy: capability.PolicyHolder, holds: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tt.policy)
			col := f.book(t, writer, "dune")
			mint := f.chapter(t, writer, col, "ch1")
			if tt.holds {
				f.give(t, writer, reader, mint)
			}
			_, err := f.svc.CreateReaderAccount(as(reader))
			require.NoError(t, err)

			_, err = f.svc.SubmitReview(as(reader), SubmitReviewInput{ChapterMint: mint, Content: "c", Rating: 4})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// Tips
// ---------------------------------------------------------------------------

func TestTipWriter(t *testing.T) {
	t.Parallel()
	f := newFixture(t, capability.PolicyOpen)
	ctx := context.Background()

	w, err := f.svc.CreateWriterAccount(as(writer))
	require.NoError(t, err)
	r, err := f.svc.CreateReaderAccount(as(reader))
	require.NoError(t, err)
	require.NoError(t, f.system.Airdrop(ctx, reader, 1_000))

	forged := address.Address{0x77}
	require.NoError(t, ledger.NewAccounts(f.store, address.PlatformProgram).Init(ctx, forged, domain.UserAccount{
		Role: domain.RoleWriter, Wallet: writer,
	}))

	tests := []struct {
		name    string
		input   TipWriterInput
		wantErr error
	}{
		{name: "zero amount", input: TipWriterInput{Writer: writer, WriterAccount: w.Address}, wantErr: domain.ErrZeroTipAmount},
		{name: "zero amount before account checks", input: TipWriterInput{}, wantErr: domain.ErrZeroTipAmount},
		{name: "reader account", input: TipWriterInput{Writer: reader, WriterAccount: r.Address, Amount: 10}, wantErr: domain.ErrInvalidWriterRole},
		{name: "wallet mismatch", input: TipWriterInput{Writer: other, WriterAccount: w.Address, Amount: 10}, wantErr: domain.ErrWriterAccountNotFound},
		{name: "missing account", input: TipWriterInput{Writer: writer, WriterAccount: address.Address{0x5e}, Amount: 10}, wantErr: domain.ErrWriterAccountNotFound},
		{name: "forged account", input: TipWriterInput{Writer: writer, WriterAccount: forged, Amount: 10}, wantErr: domain.ErrInvalidDerivation},
		{name: "insufficient funds", input: TipWriterInput{Writer: writer, WriterAccount: w.Address, Amount: 1_001}, wantErr: domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.TipWriter(as(reader), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			balance, err := f.system.Balance(ctx, reader)
			require.NoError(t, err)
			assert.Equal(t, uint64(1_000), balance, "a failed tip moves nothing")
		})
	}

	require.NoError(t, f.svc.TipWriter(as(reader), TipWriterInput{Writer: writer, WriterAccount: w.Address, Amount: 300}))

	readerBalance, err := f.system.Balance(ctx, reader)
	require.NoError(t, err)
	writerBalance, err := f.system.Balance(ctx, writer)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), readerBalance)
	assert.Equal(t, uint64(300), writerBalance)

	acc, err := f.svc.GetUserAccount(ctx, writer, domain.RoleWriter)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), acc.TotalRoyalties)
}
