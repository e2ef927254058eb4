package ctxutil

import (
	"context"

	"github.com/heartmarshall/folio/internal/address"
)

type ctxKey string

const (
	signerKey    ctxKey = "signer"
	requestIDKey ctxKey = "request_id"
)

// WithSigner stores the wallet that signed the current operation.
func WithSigner(ctx context.Context, wallet address.Address) context.Context {
	return context.WithValue(ctx, signerKey, wallet)
}

// SignerFromCtx extracts the signing wallet from the context.
// Returns the zero address and false if the value is missing, zero, or wrong type.
func SignerFromCtx(ctx context.Context) (address.Address, bool) {
	wallet, ok := ctx.Value(signerKey).(address.Address)
	if !ok || wallet.IsZero() {
		return address.Zero, false
	}
	return wallet, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
