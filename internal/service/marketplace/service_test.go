package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/folio/internal/adapter/memstore"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/record"
)

//go:generate moq -out tx_manager_mock_test.go -pkg marketplace . txManager

var testWallet = address.Address{0xaa, 1}

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewService(slog.Default(), store, store), store
}

func TestInitialize_Success(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Initialize(ctx, invoke.FromWallet(testWallet), InitializeInput{Name: "platform", Fee: 10})
	require.NoError(t, err)

	want, bump, err := Address("platform")
	require.NoError(t, err)
	assert.Equal(t, want, res.Address, "re-derivation must reproduce the stored address")
	assert.Equal(t, bump, res.Marketplace.Bump)
	assert.Equal(t, uint16(10), res.Marketplace.Fee)
	assert.Equal(t, AdminAddress(), res.Marketplace.Admin)
	assert.True(t, address.Verify(address.MarketplaceProgram, res.Treasury, res.Marketplace.TreasuryBump,
		address.Seed("treasury"), res.Address.Bytes()))
	assert.Equal(t, 2, store.Len())

	acc, err := store.Get(ctx, res.Address)
	require.NoError(t, err)
	assert.Equal(t, address.MarketplaceProgram, acc.Owner)
	kind, err := record.KindOf(acc.Data)
	require.NoError(t, err)
	assert.Equal(t, domain.KindMarketplace, kind)
}

func TestInitialize_SameNameTwice(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, invoke.FromWallet(testWallet), InitializeInput{Name: "dup", Fee: 0})
	require.NoError(t, err)

	_, err = svc.Initialize(ctx, invoke.FromWallet(address.Address{0xbb}), InitializeInput{Name: "dup", Fee: 65535})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestInitialize_NameBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: domain.ErrNameTooLong},
		{name: "one byte", input: "a"},
		{name: "32 bytes", input: strings.Repeat("n", 32)},
		{name: "33 bytes", input: strings.Repeat("n", 33), wantErr: domain.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestService(t)

			_, err := svc.Initialize(context.Background(), invoke.FromWallet(testWallet), InitializeInput{Name: tt.input})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInitialize_ValidationSkipsTransaction(t *testing.T) {
	t.Parallel()
	store := memstore.New()
	txMock := &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
	svc := NewService(slog.Default(), store, txMock)

	_, err := svc.Initialize(context.Background(), invoke.FromWallet(testWallet), InitializeInput{Name: strings.Repeat("x", 40)})
	require.ErrorIs(t, err, domain.ErrNameTooLong)
	assert.Empty(t, txMock.RunInTxCalls())
}

func TestInitialize_RequiresSigner(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)

	_, err := svc.Initialize(context.Background(), invoke.Context{}, InitializeInput{Name: "nobody"})
	assert.ErrorIs(t, err, domain.ErrMissingSignature)
	assert.Zero(t, store.Len())
}

func TestInitialize_TxErrorIsReturned(t *testing.T) {
	t.Parallel()
	store := memstore.New()
	boom := errors.New("store unavailable")
	txMock := &txManagerMock{
		RunInTxFunc: func(context.Context, func(context.Context) error) error { return boom },
	}
	svc := NewService(slog.Default(), store, txMock)

	_, err := svc.Initialize(context.Background(), invoke.FromWallet(testWallet), InitializeInput{Name: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, txMock.RunInTxCalls(), 1)
}

func TestGetAndTreasury(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Initialize(ctx, invoke.FromWallet(testWallet), InitializeInput{Name: "books", Fee: 250})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	treasuryAddr, treasury, err := svc.Treasury(ctx, "books")
	require.NoError(t, err)
	assert.Equal(t, created.Treasury, treasuryAddr)
	assert.Equal(t, created.Address, treasury.Marketplace)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
