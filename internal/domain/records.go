package domain

import "github.com/heartmarshall/folio/internal/address"

// Hard caps enforced at creation time.
const (
	MaxMarketplaceNameLen = 32
	MaxTitleLen           = 50
	MaxGenreLen           = 20
	MaxURILen             = 100
	MaxReviewLen          = 500
	MaxSymbolLen          = 10
	MaxContentIDLen       = 32
	MaxContentTypeLen     = 32

	MaxRoyaltyPercentage  = 100
	MaxRoyaltyBasisPoints = 10000

	MinRating = 1
	MaxRating = 5
)

// ---------------------------------------------------------------------------
// Marketplace program
// ---------------------------------------------------------------------------

// Marketplace is created once per name. Both derivation proofs are kept so
// the treasury relationship can be re-validated without a search.
type Marketplace struct {
	Admin        address.Address `cbor:"1,keyasint" json:"admin"`
	Fee          uint16          `cbor:"2,keyasint" json:"fee"`
	Name         string          `cbor:"3,keyasint" json:"name"`
	Bump         uint8           `cbor:"4,keyasint" json:"bump"`
	TreasuryBump uint8           `cbor:"5,keyasint" json:"treasury_bump"`
}

func (Marketplace) Kind() Kind { return KindMarketplace }

type Treasury struct {
	Marketplace address.Address `cbor:"1,keyasint" json:"marketplace"`
	Bump        uint8           `cbor:"2,keyasint" json:"bump"`
}

func (Treasury) Kind() Kind { return KindTreasury }

// ---------------------------------------------------------------------------
// Platform program
// ---------------------------------------------------------------------------

// PlatformAccount counts listed content.
type PlatformAccount struct {
	Counter uint64 `cbor:"1,keyasint" json:"counter"`
	Bump    uint8  `cbor:"2,keyasint" json:"bump"`
}

func (PlatformAccount) Kind() Kind { return KindPlatformAccount }

// UserAccount is one per (wallet, role). Writer counters are BookCount and
// TotalRoyalties; reader counters are ReviewCount, TotalUpvotes and
// ReputationScore.
type UserAccount struct {
	Role   Role            `cbor:"1,keyasint" json:"role"`
	Wallet address.Address `cbor:"2,keyasint" json:"wallet"`
	Bump   uint8           `cbor:"3,keyasint" json:"bump"`

	BookCount      uint32 `cbor:"4,keyasint" json:"book_count"`
	TotalRoyalties uint64 `cbor:"5,keyasint" json:"total_royalties"`

	ReviewCount     uint32 `cbor:"6,keyasint" json:"review_count"`
	TotalUpvotes    uint64 `cbor:"7,keyasint" json:"total_upvotes"`
	ReputationScore uint64 `cbor:"8,keyasint" json:"reputation_score"`
}

func (UserAccount) Kind() Kind { return KindUserAccount }

type Book struct {
	Title             string          `cbor:"1,keyasint" json:"title"`
	Author            address.Address `cbor:"2,keyasint" json:"author"`
	Collection        address.Address `cbor:"3,keyasint" json:"collection"`
	ChapterCount      uint8           `cbor:"4,keyasint" json:"chapter_count"`
	Genre             string          `cbor:"5,keyasint" json:"genre"`
	RoyaltyPercentage uint8           `cbor:"6,keyasint" json:"royalty_percentage"`
	TotalSales        uint64          `cbor:"7,keyasint" json:"total_sales"`
	ReviewScore       uint8           `cbor:"8,keyasint" json:"review_score"`
	Bump              uint8           `cbor:"9,keyasint" json:"bump"`
}

func (Book) Kind() Kind { return KindBook }

// Chapter is addressed by its NFT mint. Rating is derived from RatingSum and
// ReviewCount so it stays the exact truncated mean.
type Chapter struct {
	Title          string          `cbor:"1,keyasint" json:"title"`
	ContentURI     string          `cbor:"2,keyasint" json:"content_uri,omitempty"`
	Author         address.Address `cbor:"3,keyasint" json:"author"`
	Book           address.Address `cbor:"4,keyasint" json:"book"`
	BookCollection address.Address `cbor:"5,keyasint" json:"book_collection"`
	ChapterNumber  uint8           `cbor:"6,keyasint" json:"chapter_number"`
	IsExclusive    bool            `cbor:"7,keyasint" json:"is_exclusive"`
	ReviewCount    uint32          `cbor:"8,keyasint" json:"review_count"`
	RatingSum      uint64          `cbor:"9,keyasint" json:"rating_sum"`
	Rating         uint8           `cbor:"10,keyasint" json:"rating"`
	ChapterMint    address.Address `cbor:"11,keyasint" json:"chapter_mint"`
	Bump           uint8           `cbor:"12,keyasint" json:"bump"`
}

func (Chapter) Kind() Kind { return KindChapter }

// Public returns c with the content URI removed when the chapter is
// exclusive.
func (c Chapter) Public() Chapter {
	if c.IsExclusive {
		c.ContentURI = ""
	}
	return c
}

// ExclusiveContent.ContentURI must only leave the process through access
// verification.
type ExclusiveContent struct {
	Author             address.Address `cbor:"1,keyasint" json:"author"`
	RequiredCollection address.Address `cbor:"2,keyasint" json:"required_collection"`
	ContentURI         string          `cbor:"3,keyasint" json:"content_uri,omitempty"`
	IsActive           bool            `cbor:"4,keyasint" json:"is_active"`
	CreatedAt          int64           `cbor:"5,keyasint" json:"created_at"`
	Bump               uint8           `cbor:"6,keyasint" json:"bump"`
}

func (ExclusiveContent) Kind() Kind { return KindExclusiveContent }

// Public returns e without its content URI.
func (e ExclusiveContent) Public() ExclusiveContent {
	e.ContentURI = ""
	return e
}

type Review struct {
	Reviewer       address.Address `cbor:"1,keyasint" json:"reviewer"`
	Chapter        address.Address `cbor:"2,keyasint" json:"chapter"`
	BookCollection address.Address `cbor:"3,keyasint" json:"book_collection"`
	Content        string          `cbor:"4,keyasint" json:"content"`
	Rating         uint8           `cbor:"5,keyasint" json:"rating"`
	Upvotes        uint64          `cbor:"6,keyasint" json:"upvotes"`
	CreatedAt      int64           `cbor:"7,keyasint" json:"created_at"`
	Bump           uint8           `cbor:"8,keyasint" json:"bump"`
}

func (Review) Kind() Kind { return KindReview }

// ContentListing is the local bookkeeping written by upload.
type ContentListing struct {
	Creator     address.Address `cbor:"1,keyasint" json:"creator"`
	Collection  address.Address `cbor:"2,keyasint" json:"collection"`
	Mint        address.Address `cbor:"3,keyasint" json:"mint"`
	ContentID   string          `cbor:"4,keyasint" json:"content_id"`
	Title       string          `cbor:"5,keyasint" json:"title"`
	ContentType string          `cbor:"6,keyasint" json:"content_type"`
	Sequence    uint64          `cbor:"7,keyasint" json:"sequence"`
	ListedAt    int64           `cbor:"8,keyasint" json:"listed_at"`
	Bump        uint8           `cbor:"9,keyasint" json:"bump"`
}

func (ContentListing) Kind() Kind { return KindContentListing }

// ---------------------------------------------------------------------------
// Minter program
// ---------------------------------------------------------------------------

type Collection struct {
	Mint          address.Address `cbor:"1,keyasint" json:"mint"`
	Authority     address.Address `cbor:"2,keyasint" json:"authority"`
	AuthorityBump uint8           `cbor:"3,keyasint" json:"authority_bump"`
	Creator       address.Address `cbor:"4,keyasint" json:"creator"`
	Metadata      address.Address `cbor:"5,keyasint" json:"metadata"`
	MasterEdition address.Address `cbor:"6,keyasint" json:"master_edition"`
	Destination   address.Address `cbor:"7,keyasint" json:"destination"`
	Seed          string          `cbor:"8,keyasint" json:"seed"`
	Bump          uint8           `cbor:"9,keyasint" json:"bump"`
}

func (Collection) Kind() Kind { return KindCollection }

type NFT struct {
	Mint          address.Address `cbor:"1,keyasint" json:"mint"`
	Collection    address.Address `cbor:"2,keyasint" json:"collection"`
	Creator       address.Address `cbor:"3,keyasint" json:"creator"`
	Metadata      address.Address `cbor:"4,keyasint" json:"metadata"`
	MasterEdition address.Address `cbor:"5,keyasint" json:"master_edition"`
	Destination   address.Address `cbor:"6,keyasint" json:"destination"`
	Seed          string          `cbor:"7,keyasint" json:"seed"`
	Bump          uint8           `cbor:"8,keyasint" json:"bump"`
}

func (NFT) Kind() Kind { return KindNFT }

// ---------------------------------------------------------------------------
// Ledger primitives
// ---------------------------------------------------------------------------

// Wallet holds the fungible balance of an address.
type Wallet struct {
	Lamports uint64 `cbor:"1,keyasint" json:"lamports"`
}

func (Wallet) Kind() Kind { return KindWallet }

type Mint struct {
	Authority address.Address `cbor:"1,keyasint" json:"authority"`
	Supply    uint64          `cbor:"2,keyasint" json:"supply"`
	Decimals  uint8           `cbor:"3,keyasint" json:"decimals"`
}

func (Mint) Kind() Kind { return KindMint }

// Holding is the balance of one mint held by one owner.
type Holding struct {
	Owner  address.Address `cbor:"1,keyasint" json:"owner"`
	Mint   address.Address `cbor:"2,keyasint" json:"mint"`
	Amount uint64          `cbor:"3,keyasint" json:"amount"`
	Bump   uint8           `cbor:"4,keyasint" json:"bump"`
}

func (Holding) Kind() Kind { return KindHolding }

type Metadata struct {
	Mint                 address.Address `cbor:"1,keyasint" json:"mint"`
	UpdateAuthority      address.Address `cbor:"2,keyasint" json:"update_authority"`
	Name                 string          `cbor:"3,keyasint" json:"name"`
	Symbol               string          `cbor:"4,keyasint" json:"symbol"`
	URI                  string          `cbor:"5,keyasint" json:"uri"`
	SellerFeeBasisPoints uint16          `cbor:"6,keyasint" json:"seller_fee_basis_points"`
	Creator              address.Address `cbor:"7,keyasint" json:"creator"`
	Collection           address.Address `cbor:"8,keyasint" json:"collection"`
	CollectionVerified   bool            `cbor:"9,keyasint" json:"collection_verified"`
}

func (Metadata) Kind() Kind { return KindMetadata }

type MasterEdition struct {
	Mint      address.Address `cbor:"1,keyasint" json:"mint"`
	Supply    uint64          `cbor:"2,keyasint" json:"supply"`
	MaxSupply uint64          `cbor:"3,keyasint" json:"max_supply"`
}

func (MasterEdition) Kind() Kind { return KindMasterEdition }
