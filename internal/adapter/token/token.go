// Package token is the in-process NFT primitive: mints, holdings, metadata
// and master editions. Every mutation must be signed by the mint authority
// (or by the holder, for transfers) through an invoke.Context.
package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
	"github.com/heartmarshall/folio/internal/invoke"
	"github.com/heartmarshall/folio/internal/ledger"
)

// Metadata limits.
const (
	MaxNameLen   = 50
	MaxSymbolLen = 10
	MaxURILen    = 200
)

// MetadataInput describes the metadata attached to a mint.
type MetadataInput struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creator              address.Address
	Collection           address.Address
}

// Validate checks all fields and collects all errors.
func (i MetadataInput) Validate() error {
	var errs []domain.FieldError
	if i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(i.Name) > MaxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: fmt.Sprintf("max %d bytes", MaxNameLen)})
	}
	if len(i.Symbol) > MaxSymbolLen {
		errs = append(errs, domain.FieldError{Field: "symbol", Message: fmt.Sprintf("max %d bytes", MaxSymbolLen)})
	}
	if len(i.URI) > MaxURILen {
		errs = append(errs, domain.FieldError{Field: "uri", Message: fmt.Sprintf("max %d bytes", MaxURILen)})
	}
	if i.SellerFeeBasisPoints > domain.MaxRoyaltyBasisPoints {
		errs = append(errs, domain.FieldError{Field: "seller_fee_basis_points", Message: "max 10000"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Program implements the NFT primitive over the account store.
type Program struct {
	tokens   *ledger.Accounts
	metadata *ledger.Accounts
}

// New creates the token program over store.
func New(store ledger.Store) *Program {
	return &Program{
		tokens:   ledger.NewAccounts(store, address.TokenProgram),
		metadata: ledger.NewAccounts(store, address.MetadataProgram),
	}
}

// HoldingAddress returns where owner's balance of mint is kept.
func HoldingAddress(owner, mint address.Address) (address.Address, uint8) {
	return address.MustDerive(address.TokenProgram, address.Seed("holding"), owner.Bytes(), mint.Bytes())
}

// MetadataAddress returns the metadata record of mint.
func MetadataAddress(mint address.Address) address.Address {
	addr, _ := address.MustDerive(address.MetadataProgram, address.Seed("metadata"), mint.Bytes())
	return addr
}

// EditionAddress returns the master edition record of mint.
func EditionAddress(mint address.Address) address.Address {
	addr, _ := address.MustDerive(address.MetadataProgram, address.Seed("metadata"), mint.Bytes(), address.Seed("edition"))
	return addr
}

// ---------------------------------------------------------------------------
// Mints and holdings
// ---------------------------------------------------------------------------

// CreateMint creates a zero-decimal mint controlled by authority. The mint
// address itself must be signed by inv.
func (p *Program) CreateMint(ctx context.Context, inv invoke.Context, mint, authority address.Address) error {
	if err := inv.RequireSigner(mint); err != nil {
		return fmt.Errorf("create mint: %w", err)
	}
	return p.tokens.Init(ctx, mint, domain.Mint{Authority: authority})
}

// GetMint loads a mint.
func (p *Program) GetMint(ctx context.Context, mint address.Address) (*domain.Mint, error) {
	var m domain.Mint
	if err := p.tokens.Load(ctx, mint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MintTo issues amount units of mint to owner and returns the holding address.
func (p *Program) MintTo(ctx context.Context, inv invoke.Context, mint, owner address.Address, amount uint64) (address.Address, error) {
	m, err := p.GetMint(ctx, mint)
	if err != nil {
		return address.Zero, err
	}
	if err := inv.RequireSigner(m.Authority); err != nil {
		return address.Zero, fmt.Errorf("mint to: %w", err)
	}

	supply, ok := domain.CheckedAdd(m.Supply, amount)
	if !ok {
		return address.Zero, fmt.Errorf("mint to: %w", domain.ErrArithmeticOverflow)
	}
	m.Supply = supply
	if err := p.tokens.Save(ctx, mint, *m); err != nil {
		return address.Zero, err
	}
	return p.credit(ctx, owner, mint, amount)
}

// GetHolding returns owner's balance record for mint.
func (p *Program) GetHolding(ctx context.Context, owner, mint address.Address) (*domain.Holding, error) {
	addr, _ := HoldingAddress(owner, mint)
	var h domain.Holding
	if err := p.tokens.Load(ctx, addr, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// TransferHolding moves amount units of mint between owners. from must be
// signed by inv.
func (p *Program) TransferHolding(ctx context.Context, inv invoke.Context, mint, from, to address.Address, amount uint64) error {
	if err := inv.RequireSigner(from); err != nil {
		return fmt.Errorf("transfer holding: %w", err)
	}

	src, err := p.GetHolding(ctx, from, mint)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("transfer holding: %w", domain.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	left, ok := domain.CheckedSub(src.Amount, amount)
	if !ok {
		return fmt.Errorf("transfer holding: %w", domain.ErrInsufficientFunds)
	}
	src.Amount = left
	srcAddr, _ := HoldingAddress(from, mint)
	if err := p.tokens.Save(ctx, srcAddr, *src); err != nil {
		return err
	}
	_, err = p.credit(ctx, to, mint, amount)
	return err
}

func (p *Program) credit(ctx context.Context, owner, mint address.Address, amount uint64) (address.Address, error) {
	addr, bump := HoldingAddress(owner, mint)
	h, err := p.GetHolding(ctx, owner, mint)
	if errors.Is(err, domain.ErrNotFound) {
		return addr, p.tokens.Init(ctx, addr, domain.Holding{Owner: owner, Mint: mint, Amount: amount, Bump: bump})
	}
	if err != nil {
		return address.Zero, err
	}
	total, ok := domain.CheckedAdd(h.Amount, amount)
	if !ok {
		return address.Zero, fmt.Errorf("credit holding: %w", domain.ErrArithmeticOverflow)
	}
	h.Amount = total
	return addr, p.tokens.Save(ctx, addr, *h)
}

// ---------------------------------------------------------------------------
// Metadata and editions
// ---------------------------------------------------------------------------

// AttachMetadata creates the metadata record of mint.
func (p *Program) AttachMetadata(ctx context.Context, inv invoke.Context, mint address.Address, in MetadataInput) (address.Address, error) {
	if err := in.Validate(); err != nil {
		return address.Zero, err
	}
	m, err := p.GetMint(ctx, mint)
	if err != nil {
		return address.Zero, err
	}
	if err := inv.RequireSigner(m.Authority); err != nil {
		return address.Zero, fmt.Errorf("attach metadata: %w", err)
	}

	addr := MetadataAddress(mint)
	err = p.metadata.Init(ctx, addr, domain.Metadata{
		Mint:                 mint,
		UpdateAuthority:      m.Authority,
		Name:                 in.Name,
		Symbol:               in.Symbol,
		URI:                  in.URI,
		SellerFeeBasisPoints: in.SellerFeeBasisPoints,
		Creator:              in.Creator,
		Collection:           in.Collection,
	})
	if err != nil {
		return address.Zero, err
	}
	return addr, nil
}

// AttachMasterEdition creates the master edition record of mint. Metadata
// must already be attached.
func (p *Program) AttachMasterEdition(ctx context.Context, inv invoke.Context, mint address.Address) (address.Address, error) {
	m, err := p.GetMint(ctx, mint)
	if err != nil {
		return address.Zero, err
	}
	if err := inv.RequireSigner(m.Authority); err != nil {
		return address.Zero, fmt.Errorf("attach master edition: %w", err)
	}
	if _, err := p.GetMetadata(ctx, mint); err != nil {
		return address.Zero, fmt.Errorf("attach master edition: %w", err)
	}

	addr := EditionAddress(mint)
	if err := p.metadata.Init(ctx, addr, domain.MasterEdition{Mint: mint, Supply: m.Supply}); err != nil {
		return address.Zero, err
	}
	return addr, nil
}

// GetMetadata loads the metadata record of mint.
func (p *Program) GetMetadata(ctx context.Context, mint address.Address) (*domain.Metadata, error) {
	var md domain.Metadata
	if err := p.metadata.Load(ctx, MetadataAddress(mint), &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// VerifyCollection marks the collection reference of mint's metadata as
// verified. It must be signed by the collection mint's authority.
func (p *Program) VerifyCollection(ctx context.Context, inv invoke.Context, mint address.Address) error {
	md, err := p.GetMetadata(ctx, mint)
	if err != nil {
		return err
	}
	if md.Collection.IsZero() {
		return domain.NewValidationError("collection", "metadata has no collection")
	}
	collectionMint, err := p.GetMint(ctx, md.Collection)
	if err != nil {
		return fmt.Errorf("verify collection: %w", err)
	}
	if err := inv.RequireSigner(collectionMint.Authority); err != nil {
		return fmt.Errorf("verify collection: %w", err)
	}

	md.CollectionVerified = true
	return p.metadata.Save(ctx, MetadataAddress(mint), *md)
}
