package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/service/platform"
)

// platformService defines the platform operations served over HTTP.
type platformService interface {
	InitializePlatform(ctx context.Context) (*platform.InitializeResult, error)
	CreateAccount(ctx context.Context, role domain.Role) (*platform.AccountResult, error)
	CreateBook(ctx context.Context, in platform.CreateBookInput) (*platform.BookResult, error)
	AddChapter(ctx context.Context, in platform.AddChapterInput) (*platform.ChapterResult, error)
	UploadContent(ctx context.Context, in platform.UploadContentInput) (*platform.UploadResult, error)
	CreateExclusiveContent(ctx context.Context, in platform.CreateExclusiveContentInput) (address.Address, error)
	VerifyAccess(ctx context.Context, in platform.VerifyAccessInput) (string, error)
	ChapterContent(ctx context.Context, chapterMint address.Address) (string, error)
	SubmitReview(ctx context.Context, in platform.SubmitReviewInput) (*platform.ReviewResult, error)
	TipWriter(ctx context.Context, in platform.TipWriterInput) error
	Account(ctx context.Context, addr address.Address) (*platform.AccountView, error)
}

// PlatformHandler serves the publishing platform endpoints.
type PlatformHandler struct {
	svc platformService
	log *slog.Logger
}

// NewPlatformHandler creates a PlatformHandler.
func NewPlatformHandler(svc platformService, logger *slog.Logger) *PlatformHandler {
	return &PlatformHandler{svc: svc, log: logger.With("handler", "platform")}
}

type createAccountRequest struct {
	Role domain.Role `json:"role"`
}

type createBookRequest struct {
	Collection        address.Address `json:"collection"`
	Title             string          `json:"title"`
	RoyaltyPercentage uint8           `json:"royalty_percentage"`
	Genre             string          `json:"genre"`
}

type addChapterRequest struct {
	ChapterMint address.Address `json:"chapter_mint"`
	Title       string          `json:"title"`
	ContentURI  string          `json:"content_uri"`
	Exclusive   bool            `json:"exclusive"`
}

type uploadContentRequest struct {
	ContentID          string `json:"content_id"`
	Title              string `json:"title"`
	Symbol             string `json:"symbol"`
	RoyaltyBasisPoints uint16 `json:"royalty_basis_points"`
	ContentType        string `json:"content_type"`
	URI                string `json:"uri"`
}

type exclusiveContentRequest struct {
	Collection address.Address `json:"collection"`
	ContentURI string          `json:"content_uri"`
}

type verifyAccessRequest struct {
	ChapterMint address.Address `json:"chapter_mint"`
}

type submitReviewRequest struct {
	Content string `json:"content"`
	Rating  uint8  `json:"rating"`
}

type tipRequest struct {
	Writer        address.Address `json:"writer"`
	WriterAccount address.Address `json:"writer_account"`
	Amount        uint64          `json:"amount"`
}

// Initialize handles POST /v1/platform.
func (h *PlatformHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.InitializePlatform(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// CreateAccount handles POST /v1/accounts.
func (h *PlatformHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decode(w, r, &req) {
		return
	}
	h.createAccount(w, r, req.Role)
}

// CreateWriterAccount handles POST /v1/accounts/writer.
func (h *PlatformHandler) CreateWriterAccount(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, domain.RoleWriter)
}

// CreateReaderAccount handles POST /v1/accounts/reader.
func (h *PlatformHandler) CreateReaderAccount(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, domain.RoleReader)
}

func (h *PlatformHandler) createAccount(w http.ResponseWriter, r *http.Request, role domain.Role) {
	res, err := h.svc.CreateAccount(r.Context(), role)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Account handles GET /v1/accounts/{address}.
func (h *PlatformHandler) Account(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}
	view, err := h.svc.Account(r.Context(), addr)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateBook handles POST /v1/books.
func (h *PlatformHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.CreateBook(r.Context(), platform.CreateBookInput(req))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// AddChapter handles POST /v1/books/{collection}/chapters.
func (h *PlatformHandler) AddChapter(w http.ResponseWriter, r *http.Request) {
	collection, ok := pathAddress(w, r, "collection")
	if !ok {
		return
	}
	var req addChapterRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.AddChapter(r.Context(), platform.AddChapterInput{
		Collection:  collection,
		ChapterMint: req.ChapterMint,
		Title:       req.Title,
		ContentURI:  req.ContentURI,
		Exclusive:   req.Exclusive,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UploadContent handles POST /v1/content.
func (h *PlatformHandler) UploadContent(w http.ResponseWriter, r *http.Request) {
	var req uploadContentRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.UploadContent(r.Context(), platform.UploadContentInput(req))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// CreateExclusiveContent handles POST /v1/exclusive.
func (h *PlatformHandler) CreateExclusiveContent(w http.ResponseWriter, r *http.Request) {
	var req exclusiveContentRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := h.svc.CreateExclusiveContent(r.Context(), platform.CreateExclusiveContentInput(req))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]address.Address{"address": addr})
}

// VerifyAccess handles POST /v1/exclusive/{content}/access.
func (h *PlatformHandler) VerifyAccess(w http.ResponseWriter, r *http.Request) {
	content, ok := pathAddress(w, r, "content")
	if !ok {
		return
	}
	var req verifyAccessRequest
	if !decode(w, r, &req) {
		return
	}
	uri, err := h.svc.VerifyAccess(r.Context(), platform.VerifyAccessInput{
		ExclusiveContent: content,
		ChapterMint:      req.ChapterMint,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content_uri": uri})
}

// ChapterContent handles POST /v1/chapters/{mint}/access.
func (h *PlatformHandler) ChapterContent(w http.ResponseWriter, r *http.Request) {
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	uri, err := h.svc.ChapterContent(r.Context(), mint)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content_uri": uri})
}

// SubmitReview handles POST /v1/chapters/{mint}/reviews.
func (h *PlatformHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	var req submitReviewRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SubmitReview(r.Context(), platform.SubmitReviewInput{
		ChapterMint: mint,
		Content:     req.Content,
		Rating:      req.Rating,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// TipWriter handles POST /v1/tips.
func (h *PlatformHandler) TipWriter(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.TipWriter(r.Context(), platform.TipWriterInput(req)); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
