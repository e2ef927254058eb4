package domain

import "fmt"

// Role is the tag carried by a UserAccount.
type Role uint8

const (
	RoleReader Role = 0
	RoleWriter Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleWriter:
		return "writer"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

func (r Role) IsValid() bool {
	switch r {
	case RoleReader, RoleWriter:
		return true
	}
	return false
}

// Seed returns the role as a derivation seed.
func (r Role) Seed() []byte { return []byte{byte(r)} }

// Kind is the variant tag of a stored record.
type Kind string

const (
	KindMarketplace      Kind = "marketplace"
	KindTreasury         Kind = "treasury"
	KindPlatformAccount  Kind = "platform_account"
	KindUserAccount      Kind = "user_account"
	KindBook             Kind = "book"
	KindChapter          Kind = "chapter"
	KindReview           Kind = "review"
	KindExclusiveContent Kind = "exclusive_content"
	KindContentListing   Kind = "content_listing"
	KindCollection       Kind = "collection"
	KindNFT              Kind = "nft"
	KindWallet           Kind = "wallet"
	KindMint             Kind = "mint"
	KindHolding          Kind = "holding"
	KindMetadata         Kind = "metadata"
	KindMasterEdition    Kind = "master_edition"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case KindMarketplace, KindTreasury, KindPlatformAccount, KindUserAccount,
		KindBook, KindChapter, KindReview, KindExclusiveContent, KindContentListing,
		KindCollection, KindNFT, KindWallet, KindMint, KindHolding, KindMetadata,
		KindMasterEdition:
		return true
	}
	return false
}
