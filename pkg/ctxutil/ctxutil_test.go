package ctxutil

import (
	"context"
	"testing"

	"github.com/heartmarshall/folio/internal/address"
)

func TestWithSigner_And_SignerFromCtx(t *testing.T) {
	t.Parallel()

	wallet := address.Address{1, 2, 3}
	ctx := WithSigner(context.Background(), wallet)

	got, ok := SignerFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for a wallet")
	}
	if got != wallet {
		t.Fatalf("expected %s, got %s", wallet, got)
	}
}

func TestSignerFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := SignerFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if !got.IsZero() {
		t.Fatalf("expected zero address, got %s", got)
	}
}

func TestSignerFromCtx_ZeroAddress(t *testing.T) {
	t.Parallel()

	ctx := WithSigner(context.Background(), address.Zero)
	if _, ok := SignerFromCtx(ctx); ok {
		t.Fatal("expected ok=false for the zero address")
	}
}

func TestSignerFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), signerKey, "not-an-address")
	if _, ok := SignerFromCtx(ctx); ok {
		t.Fatal("expected ok=false for wrong type")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromCtx(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
}
