package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// ErrInvalidSignature is returned when a challenge signature does not
// verify against the wallet key.
var ErrInvalidSignature = errors.New("invalid signature")

// Challenge is handed to a wallet that wants to log in.
type Challenge struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is the result of a successful login.
type Session struct {
	Wallet      address.Address `json:"wallet"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Sessions implements the wallet login flow on top of a JWTManager.
type Sessions struct {
	jwt *JWTManager
}

// NewSessions creates the login flow.
func NewSessions(jwt *JWTManager) *Sessions {
	return &Sessions{jwt: jwt}
}

// Challenge issues a challenge for wallet.
func (s *Sessions) Challenge(wallet address.Address) (*Challenge, error) {
	if !wallet.OnCurve() {
		return nil, domain.NewValidationError("wallet", "not a wallet key")
	}
	token, expires, err := s.jwt.GenerateChallenge(wallet)
	if err != nil {
		return nil, err
	}
	return &Challenge{Challenge: token, ExpiresAt: expires}, nil
}

// Open verifies the wallet's ed25519 signature over a challenge it was
// issued and returns an access token for it.
func (s *Sessions) Open(challenge string, signature []byte) (*Session, error) {
	wallet, err := s.jwt.ValidateChallenge(challenge)
	if err != nil {
		return nil, fmt.Errorf("%w: challenge: %v", domain.ErrUnauthorized, err)
	}
	if err := VerifySignature(wallet, []byte(challenge), signature); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	token, expires, err := s.jwt.GenerateAccessToken(wallet)
	if err != nil {
		return nil, err
	}
	return &Session{Wallet: wallet, AccessToken: token, ExpiresAt: expires}, nil
}

// VerifySignature checks that sig is wallet's signature of message.
func VerifySignature(wallet address.Address, message, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidSignature, len(sig))
	}
	if !ed25519.Verify(ed25519.PublicKey(wallet.Bytes()), message, sig) {
		return ErrInvalidSignature
	}
	return nil
}
