package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/service/marketplace"
)

// marketplaceService defines the marketplace operations served over HTTP.
type marketplaceService interface {
	Initialize(ctx context.Context, inv invoke.Context, in marketplace.InitializeInput) (*marketplace.Result, error)
	Get(ctx context.Context, name string) (*marketplace.Result, error)
}

// balanceReader reads wallet balances.
type balanceReader interface {
	Balance(ctx context.Context, owner address.Address) (uint64, error)
}

// MarketplaceHandler serves marketplace and wallet balance endpoints.
type MarketplaceHandler struct {
	svc      marketplaceService
	balances balanceReader
	log      *slog.Logger
}

// NewMarketplaceHandler creates a MarketplaceHandler.
func NewMarketplaceHandler(svc marketplaceService, balances balanceReader, logger *slog.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{svc: svc, balances: balances, log: logger.With("handler", "marketplace")}
}

type initializeMarketplaceRequest struct {
	Name string `json:"name"`
	Fee  uint16 `json:"fee"`
}

type balanceResponse struct {
	Wallet   address.Address `json:"wallet"`
	Lamports uint64          `json:"lamports"`
}

// Initialize handles POST /v1/marketplaces.
func (h *MarketplaceHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	inv, err := walletInvocation(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req initializeMarketplaceRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Initialize(r.Context(), inv, marketplace.InitializeInput(req))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Get handles GET /v1/marketplaces/{name}.
func (h *MarketplaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Balance handles GET /v1/wallets/{wallet}/balance.
func (h *MarketplaceHandler) Balance(w http.ResponseWriter, r *http.Request) {
	wallet, ok := pathAddress(w, r, "wallet")
	if !ok {
		return
	}
	lamports, err := h.balances.Balance(r.Context(), wallet)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Wallet: wallet, Lamports: lamports})
}
