package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/pkg/ctxutil"
)

//go:generate moq -out token_validator_mock_test.go -pkg middleware . tokenValidator

var testWallet = address.Address{0x5a, 0x11}

func TestAuth_ValidToken(t *testing.T) {
	validator := &tokenValidatorMock{
		ValidateAccessTokenFunc: func(token string) (address.Address, error) {
			if token == "valid-token" {
				return testWallet, nil
			}
			return address.Zero, errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := ctxutil.SignerFromCtx(r.Context())
		if !ok {
			t.Error("expected signer in context")
			return
		}
		if got != testWallet {
			t.Errorf("expected signer %v, got %v", testWallet, got)
		}
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := Auth(validator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if calls := validator.ValidateAccessTokenCalls(); len(calls) != 1 || calls[0].Token != "valid-token" {
		t.Errorf("unexpected validator calls: %+v", calls)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	validator := &tokenValidatorMock{
		ValidateAccessTokenFunc: func(token string) (address.Address, error) {
			return address.Zero, errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with an invalid token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec := httptest.NewRecorder()

	Auth(validator)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuth_NoToken_Anonymous(t *testing.T) {
	validator := &tokenValidatorMock{}

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := ctxutil.SignerFromCtx(r.Context()); ok {
			t.Error("expected no signer for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []string{"", "Basic dXNlcjpwYXNz", "bearer lowercase"}
	for _, header := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		Auth(validator)(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("header %q: expected status %d, got %d", header, http.StatusOK, rec.Code)
		}
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if len(validator.ValidateAccessTokenCalls()) != 0 {
		t.Error("validator must not be called without a bearer token")
	}
}
