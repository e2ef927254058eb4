package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/service/minter"
	"github.com/heartmarshall/folio/pkg/ctxutil"
)

// minterService defines the minter operations served over HTTP.
type minterService interface {
	CreateCollection(ctx context.Context, inv invoke.Context, in minter.CreateCollectionInput) (*minter.CollectionResult, error)
	MintNFT(ctx context.Context, inv invoke.Context, in minter.MintNFTInput) (*minter.NFTResult, error)
	VerifyCollection(ctx context.Context, inv invoke.Context, nftMint address.Address) error
	Transfer(ctx context.Context, inv invoke.Context, in minter.TransferInput) error
	GetCollection(ctx context.Context, mint address.Address) (*domain.Collection, error)
	GetNFT(ctx context.Context, mint address.Address) (*domain.NFT, error)
}

// MinterHandler serves collection and NFT endpoints.
type MinterHandler struct {
	svc minterService
	log *slog.Logger
}

// NewMinterHandler creates a MinterHandler.
func NewMinterHandler(svc minterService, logger *slog.Logger) *MinterHandler {
	return &MinterHandler{svc: svc, log: logger.With("handler", "minter")}
}

type createCollectionRequest struct {
	Seed   string `json:"seed"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

type mintNFTRequest struct {
	Seed               string `json:"seed"`
	Name               string `json:"name"`
	Symbol             string `json:"symbol"`
	URI                string `json:"uri"`
	RoyaltyBasisPoints uint16 `json:"royalty_basis_points"`
}

type transferRequest struct {
	To address.Address `json:"to"`
}

// walletInvocation returns the capability of the signed-in wallet.
func walletInvocation(r *http.Request) (invoke.Context, error) {
	wallet, ok := ctxutil.SignerFromCtx(r.Context())
	if !ok {
		return invoke.Context{}, domain.ErrUnauthorized
	}
	return invoke.FromWallet(wallet), nil
}

// CreateCollection handles POST /v1/collections.
func (h *MinterHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	inv, err := walletInvocation(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req createCollectionRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.CreateCollection(r.Context(), inv, minter.CreateCollectionInput(req))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetCollection handles GET /v1/collections/{mint}.
func (h *MinterHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	c, err := h.svc.GetCollection(r.Context(), mint)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// MintNFT handles POST /v1/collections/{mint}/nfts.
func (h *MinterHandler) MintNFT(w http.ResponseWriter, r *http.Request) {
	inv, err := walletInvocation(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	collection, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	var req mintNFTRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.MintNFT(r.Context(), inv, minter.MintNFTInput{
		Collection:         collection,
		Seed:               req.Seed,
		Name:               req.Name,
		Symbol:             req.Symbol,
		URI:                req.URI,
		RoyaltyBasisPoints: req.RoyaltyBasisPoints,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetNFT handles GET /v1/nfts/{mint}.
func (h *MinterHandler) GetNFT(w http.ResponseWriter, r *http.Request) {
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	n, err := h.svc.GetNFT(r.Context(), mint)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Transfer handles POST /v1/nfts/{mint}/transfer.
func (h *MinterHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	inv, err := walletInvocation(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Transfer(r.Context(), inv, minter.TransferInput{Mint: mint, To: req.To}); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VerifyCollection handles POST /v1/nfts/{mint}/verify-collection.
func (h *MinterHandler) VerifyCollection(w http.ResponseWriter, r *http.Request) {
	inv, err := walletInvocation(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	mint, ok := pathAddress(w, r, "mint")
	if !ok {
		return
	}
	if err := h.svc.VerifyCollection(r.Context(), inv, mint); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
