package platform

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Collection        address.Address
	Title             string
	RoyaltyPercentage uint8
	Genre             string
}

// Validate checks all fields and collects all errors.
func (i CreateBookInput) Validate() error {
	var errs []domain.FieldError
	errs = requireAddress(errs, "collection", i.Collection)
	errs = checkText(errs, "title", i.Title, domain.MaxTitleLen, true)
	errs = checkText(errs, "genre", i.Genre, domain.MaxGenreLen, true)
	if i.RoyaltyPercentage > domain.MaxRoyaltyPercentage {
		errs = append(errs, domain.FieldError{Field: "royalty_percentage", Message: fmt.Sprintf("max %d", domain.MaxRoyaltyPercentage)})
	}
	return fieldErrors(errs)
}

// AddChapterInput holds the parameters for adding a chapter to a book.
type AddChapterInput struct {
	Collection  address.Address
	ChapterMint address.Address
	Title       string
	ContentURI  string
	Exclusive   bool
}

// Validate checks all fields and collects all errors.
func (i AddChapterInput) Validate() error {
	var errs []domain.FieldError
	errs = requireAddress(errs, "collection", i.Collection)
	errs = requireAddress(errs, "chapter_mint", i.ChapterMint)
	errs = checkText(errs, "title", i.Title, domain.MaxTitleLen, true)
	errs = checkText(errs, "content_uri", i.ContentURI, domain.MaxURILen, true)
	return fieldErrors(errs)
}

// UploadContentInput holds the parameters for publishing a piece of content
// as a fresh collection with one representative NFT.
type UploadContentInput struct {
	ContentID          string
	Title              string
	Symbol             string
	RoyaltyBasisPoints uint16
	ContentType        string
	URI                string
}

// Validate checks all fields and collects all errors.
func (i UploadContentInput) Validate() error {
	var errs []domain.FieldError
	errs = checkText(errs, "content_id", i.ContentID, domain.MaxContentIDLen, true)
	errs = checkText(errs, "title", i.Title, domain.MaxTitleLen, true)
	errs = checkText(errs, "symbol", i.Symbol, domain.MaxSymbolLen, false)
	errs = checkText(errs, "content_type", i.ContentType, domain.MaxContentTypeLen, true)
	errs = checkText(errs, "uri", i.URI, domain.MaxURILen, false)
	if i.RoyaltyBasisPoints > domain.MaxRoyaltyBasisPoints {
		errs = append(errs, domain.FieldError{Field: "royalty_basis_points", Message: fmt.Sprintf("max %d", domain.MaxRoyaltyBasisPoints)})
	}
	return fieldErrors(errs)
}

// CreateExclusiveContentInput holds the parameters for gating content
// behind a collection.
type CreateExclusiveContentInput struct {
	Collection address.Address
	ContentURI string
}

// Validate checks all fields and collects all errors.
func (i CreateExclusiveContentInput) Validate() error {
	var errs []domain.FieldError
	errs = requireAddress(errs, "collection", i.Collection)
	errs = checkText(errs, "content_uri", i.ContentURI, domain.MaxURILen, true)
	return fieldErrors(errs)
}

// VerifyAccessInput names the gated content and the chapter NFT presented
// for it.
type VerifyAccessInput struct {
	ExclusiveContent address.Address
	ChapterMint      address.Address
}

// Validate checks all fields and collects all errors.
func (i VerifyAccessInput) Validate() error {
	var errs []domain.FieldError
	errs = requireAddress(errs, "exclusive_content", i.ExclusiveContent)
	errs = requireAddress(errs, "chapter_mint", i.ChapterMint)
	return fieldErrors(errs)
}

// SubmitReviewInput holds the parameters for reviewing a chapter.
type SubmitReviewInput struct {
	ChapterMint address.Address
	Content     string
	Rating      uint8
}

// Validate checks the rating first so an out-of-range rating is always
// reported as domain.ErrInvalidRating.
func (i SubmitReviewInput) Validate() error {
	if i.Rating < domain.MinRating || i.Rating > domain.MaxRating {
		return fmt.Errorf("rating %d: %w", i.Rating, domain.ErrInvalidRating)
	}
	var errs []domain.FieldError
	errs = requireAddress(errs, "chapter_mint", i.ChapterMint)
	errs = checkText(errs, "content", i.Content, domain.MaxReviewLen, false)
	return fieldErrors(errs)
}

// TipWriterInput holds the parameters for tipping a writer.
type TipWriterInput struct {
	Writer        address.Address
	WriterAccount address.Address
	Amount        uint64
}

// Validate checks the amount first so a zero tip is always reported as
// domain.ErrZeroTipAmount.
func (i TipWriterInput) Validate() error {
	if i.Amount == 0 {
		return domain.ErrZeroTipAmount
	}
	var errs []domain.FieldError
	errs = requireAddress(errs, "writer", i.Writer)
	errs = requireAddress(errs, "writer_account", i.WriterAccount)
	return fieldErrors(errs)
}

func requireAddress(errs []domain.FieldError, field string, a address.Address) []domain.FieldError {
	if a.IsZero() {
		errs = append(errs, domain.FieldError{Field: field, Message: "required"})
	}
	return errs
}

func checkText(errs []domain.FieldError, field, value string, max int, required bool) []domain.FieldError {
	if required && strings.TrimSpace(value) == "" {
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	}
	if len(value) > max {
		errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf("max %d bytes", max)})
	}
	return errs
}

func fieldErrors(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
