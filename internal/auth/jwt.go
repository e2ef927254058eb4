package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/folio/internal/address"
)

// Token audiences. A challenge can never be used as an access token and
// the other way round.
const (
	audienceAccess    = "access"
	audienceChallenge = "challenge"
)

// JWTManager issues and validates the signed tokens of the wallet login
// flow: short-lived challenges and access tokens.
type JWTManager struct {
	secret       []byte
	issuer       string
	accessTTL    time.Duration
	challengeTTL time.Duration
	now          func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL, challengeTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:       []byte(secret),
		issuer:       issuer,
		accessTTL:    accessTTL,
		challengeTTL: challengeTTL,
		now:          time.Now,
	}
}

// GenerateAccessToken creates a signed HS256 JWT with the wallet as subject.
func (m *JWTManager) GenerateAccessToken(wallet address.Address) (string, time.Time, error) {
	return m.sign(wallet, audienceAccess, m.accessTTL)
}

// ValidateAccessToken parses and validates an access token and returns the
// wallet it was issued to.
func (m *JWTManager) ValidateAccessToken(tokenString string) (address.Address, error) {
	claims, err := m.parse(tokenString, audienceAccess)
	if err != nil {
		return address.Zero, err
	}
	return subject(claims)
}

// GenerateChallenge creates a challenge for wallet. The wallet proves
// control of its key by signing the returned string.
func (m *JWTManager) GenerateChallenge(wallet address.Address) (string, time.Time, error) {
	return m.sign(wallet, audienceChallenge, m.challengeTTL)
}

// ValidateChallenge parses and validates a challenge and returns the wallet
// it was issued to.
func (m *JWTManager) ValidateChallenge(tokenString string) (address.Address, error) {
	claims, err := m.parse(tokenString, audienceChallenge)
	if err != nil {
		return address.Zero, err
	}
	return subject(claims)
}

func (m *JWTManager) sign(wallet address.Address, audience string, ttl time.Duration) (string, time.Time, error) {
	if wallet.IsZero() {
		return "", time.Time{}, errors.New("wallet is empty")
	}
	now := m.now()
	expires := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   wallet.String(),
		Issuer:    m.issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (m *JWTManager) parse(tokenString, audience string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	return claims, nil
}

func subject(claims *jwt.RegisteredClaims) (address.Address, error) {
	wallet, err := address.Parse(claims.Subject)
	if err != nil {
		return address.Zero, fmt.Errorf("invalid subject: %w", err)
	}
	return wallet, nil
}
