// Package platform is the publishing platform: writer and reader accounts,
// books and chapters, gated exclusive content, reviews and tips. Work that
// belongs to the marketplace and minter modules is delegated to them inside
// the same transaction.
package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/capability"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/ledger"
	"github.com/heartmarshall/folio/internal/service/marketplace"
	"github.com/heartmarshall/folio/internal/service/minter"
	"github.com/heartmarshall/folio/pkg/ctxutil"
)

type marketplaceModule interface {
	Initialize(ctx context.Context, inv invoke.Context, in marketplace.InitializeInput) (*marketplace.Result, error)
}

type minterModule interface {
	CreateCollection(ctx context.Context, inv invoke.Context, in minter.CreateCollectionInput) (*minter.CollectionResult, error)
	MintNFT(ctx context.Context, inv invoke.Context, in minter.MintNFTInput) (*minter.NFTResult, error)
	GetCollection(ctx context.Context, mint address.Address) (*domain.Collection, error)
	VerifyCollectionMembership(ctx context.Context, nftMint, collection address.Address) error
}

type holdingReader interface {
	GetHolding(ctx context.Context, owner, mint address.Address) (*domain.Holding, error)
}

type transferer interface {
	Transfer(ctx context.Context, inv invoke.Context, from, to address.Address, amount uint64) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Config holds the platform parameters.
type Config struct {
	MarketplaceName     string
	FeeBasisPoints      uint16
	ReviewPolicy        capability.Policy
	ReputationIncrement uint64
}

// Service implements the publishing platform module.
type Service struct {
	accounts *ledger.Accounts
	market   marketplaceModule
	minter   minterModule
	holdings holdingReader
	system   transferer
	tx       txManager
	cfg      Config
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new platform service.
func NewService(
	log *slog.Logger,
	store ledger.Store,
	market marketplaceModule,
	nfts minterModule,
	holdings holdingReader,
	system transferer,
	tx txManager,
	cfg Config,
) *Service {
	return &Service{
		accounts: ledger.NewAccounts(store, address.PlatformProgram),
		market:   market,
		minter:   nfts,
		holdings: holdings,
		system:   system,
		tx:       tx,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With("service", "platform"),
	}
}

// signer returns the wallet that signed the request and the capability
// the platform passes on when it calls another module.
func (s *Service) signer(ctx context.Context) (address.Address, invoke.Context, error) {
	wallet, ok := ctxutil.SignerFromCtx(ctx)
	if !ok {
		return address.Zero, invoke.Context{}, domain.ErrUnauthorized
	}
	inv, err := invoke.FromWallet(wallet).Delegate(address.PlatformProgram)
	if err != nil {
		return address.Zero, invoke.Context{}, err
	}
	return wallet, inv, nil
}

// ---------------------------------------------------------------------------
// Derivations
// ---------------------------------------------------------------------------

// PlatformAddress returns the singleton platform account.
func PlatformAddress() (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("platform"))
}

// UserAddress returns the account of wallet in role.
func UserAddress(wallet address.Address, role domain.Role) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, userSeeds(wallet, role)...)
}

func userSeeds(wallet address.Address, role domain.Role) [][]byte {
	return [][]byte{address.Seed("user"), wallet.Bytes(), role.Seed()}
}

// BookAddress returns the book backed by collection.
func BookAddress(collection address.Address) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("book"), collection.Bytes())
}

// ChapterAddress returns the chapter represented by the NFT mint.
func ChapterAddress(mint address.Address) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("chapter"), mint.Bytes())
}

// ReviewAddress returns the review of chapter written by reviewer.
func ReviewAddress(reviewer, chapter address.Address) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("review"), reviewer.Bytes(), chapter.Bytes())
}

// ExclusiveAddress returns the exclusive content of author gated by collection.
func ExclusiveAddress(author, collection address.Address) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("exclusive"), author.Bytes(), collection.Bytes())
}

// ListingAddress returns the content listing of an NFT mint.
func ListingAddress(mint address.Address) (address.Address, uint8) {
	return address.MustDerive(address.PlatformProgram, address.Seed("listing"), mint.Bytes())
}
