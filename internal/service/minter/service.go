// Package minter creates NFT collections and their member NFTs. Mints are
// controlled by a module authority derived from the minter program, so no
// user key ever signs a mint.
package minter

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/folio/internal/adapter/token"
	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/ledger"
)

type tokenProgram interface {
	CreateMint(ctx context.Context, inv invoke.Context, mint, authority address.Address) error
	MintTo(ctx context.Context, inv invoke.Context, mint, owner address.Address, amount uint64) (address.Address, error)
	AttachMetadata(ctx context.Context, inv invoke.Context, mint address.Address, in token.MetadataInput) (address.Address, error)
	AttachMasterEdition(ctx context.Context, inv invoke.Context, mint address.Address) (address.Address, error)
	TransferHolding(ctx context.Context, inv invoke.Context, mint, from, to address.Address, amount uint64) error
	VerifyCollection(ctx context.Context, inv invoke.Context, mint address.Address) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the minter module.
type Service struct {
	accounts *ledger.Accounts
	tokens   tokenProgram
	tx       txManager
	log      *slog.Logger
}

// NewService creates a new minter service.
func NewService(log *slog.Logger, store ledger.Store, tokens tokenProgram, tx txManager) *Service {
	return &Service{
		accounts: ledger.NewAccounts(store, address.MinterProgram),
		tokens:   tokens,
		tx:       tx,
		log:      log.With("service", "minter"),
	}
}

// ---------------------------------------------------------------------------
// Derivations
// ---------------------------------------------------------------------------

// AuthorityAddress returns the module authority and its proof.
func AuthorityAddress() (address.Address, uint8) {
	return address.MustDerive(address.MinterProgram, address.Seed("authority"))
}

// CollectionMintAddress returns the mint of the collection creator made
// with seed.
func CollectionMintAddress(creator address.Address, seed string) (address.Address, uint8) {
	return address.MustDerive(address.MinterProgram, collectionMintSeeds(creator, seed)...)
}

// NFTMintAddress returns the mint of the NFT made with seed in collection.
func NFTMintAddress(collection address.Address, seed string) (address.Address, uint8) {
	return address.MustDerive(address.MinterProgram, nftMintSeeds(collection, seed)...)
}

// CollectionAddress returns where the Collection record of mint lives.
func CollectionAddress(mint address.Address) (address.Address, uint8) {
	return address.MustDerive(address.MinterProgram, address.Seed("collection_record"), mint.Bytes())
}

// NFTAddress returns where the NFT record of mint lives.
func NFTAddress(mint address.Address) (address.Address, uint8) {
	return address.MustDerive(address.MinterProgram, address.Seed("nft_record"), mint.Bytes())
}

func collectionMintSeeds(creator address.Address, seed string) [][]byte {
	return [][]byte{address.Seed("collection"), creator.Bytes(), address.Seed(seed)}
}

func nftMintSeeds(collection address.Address, seed string) [][]byte {
	return [][]byte{address.Seed("nft"), collection.Bytes(), address.Seed(seed)}
}

// authorize returns the context in which the minter signs for its
// authority and for the given mint derivations.
func authorize(inv invoke.Context, mints ...invoke.SignerSeeds) (invoke.Context, error) {
	_, bump := AuthorityAddress()
	seeds := append([]invoke.SignerSeeds{{
		Program: address.MinterProgram,
		Seeds:   [][]byte{address.Seed("authority")},
		Proof:   bump,
	}}, mints...)
	return inv.Delegate(address.MinterProgram, seeds...)
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// GetCollection loads the Collection record of mint.
func (s *Service) GetCollection(ctx context.Context, mint address.Address) (*domain.Collection, error) {
	addr, _ := CollectionAddress(mint)
	var c domain.Collection
	if err := s.accounts.Load(ctx, addr, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetNFT loads the NFT record of mint.
func (s *Service) GetNFT(ctx context.Context, mint address.Address) (*domain.NFT, error) {
	addr, _ := NFTAddress(mint)
	var n domain.NFT
	if err := s.accounts.Load(ctx, addr, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
