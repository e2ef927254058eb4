package rest

import (
	"log/slog"
	"net/http"

	"github.com/mr-tron/base58"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/auth"
)

// sessionService defines the minimal interface needed by AuthHandler.
type sessionService interface {
	Challenge(wallet address.Address) (*auth.Challenge, error)
	Open(challenge string, signature []byte) (*auth.Session, error)
}

// AuthHandler serves the wallet login endpoints.
type AuthHandler struct {
	svc sessionService
	log *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc sessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.With("handler", "auth")}
}

type challengeRequest struct {
	Wallet address.Address `json:"wallet"`
}

type sessionRequest struct {
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
}

// Challenge handles POST /v1/auth/challenge.
func (h *AuthHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !decode(w, r, &req) {
		return
	}

	ch, err := h.svc.Challenge(req.Wallet)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ch)
}

// Session handles POST /v1/auth/session. The signature is base58 encoded.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	sig, err := base58.Decode(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature encoding", "BAD_REQUEST")
		return
	}

	sess, err := h.svc.Open(req.Challenge, sig)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "session opened", slog.String("wallet", sess.Wallet.String()))
	writeJSON(w, http.StatusOK, sess)
}
