// Package record encodes typed records into the tagged, versioned envelope
// stored in an account.
package record

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/heartmarshall/folio/internal/domain"
)

// SchemaVersion is written into every envelope.
const SchemaVersion uint16 = 1

var (
	ErrKindMismatch       = errors.New("record: kind mismatch")
	ErrUnsupportedVersion = errors.New("record: unsupported schema version")
	ErrUnknownKind        = errors.New("record: unknown kind")
)

type envelope struct {
	Kind    domain.Kind     `cbor:"1,keyasint"`
	Version uint16          `cbor:"2,keyasint"`
	Payload cbor.RawMessage `cbor:"3,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("record: build encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("record: build decoder: %v", err))
	}
}

// Marshal encodes r with its variant tag and the current schema version.
func Marshal(r domain.Record) ([]byte, error) {
	payload, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("record: encode %s: %w", r.Kind(), err)
	}
	data, err := encMode.Marshal(envelope{
		Kind:    r.Kind(),
		Version: SchemaVersion,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("record: encode envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data into r, which must be a pointer to the record
// variant named by the envelope.
func Unmarshal(data []byte, r domain.Record) error {
	env, err := open(data)
	if err != nil {
		return err
	}
	if env.Kind != r.Kind() {
		return fmt.Errorf("%w: stored %s, want %s", ErrKindMismatch, env.Kind, r.Kind())
	}
	if err := decMode.Unmarshal(env.Payload, r); err != nil {
		return fmt.Errorf("record: decode %s: %w", env.Kind, err)
	}
	return nil
}

// KindOf returns the variant tag of an encoded record.
func KindOf(data []byte) (domain.Kind, error) {
	env, err := open(data)
	if err != nil {
		return "", err
	}
	return env.Kind, nil
}

// Decode decodes a record of any known variant.
func Decode(data []byte) (domain.Record, error) {
	kind, err := KindOf(data)
	if err != nil {
		return nil, err
	}
	r, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// New returns a pointer to an empty record of the given variant.
func New(kind domain.Kind) (domain.Record, error) {
	switch kind {
	case domain.KindMarketplace:
		return &domain.Marketplace{}, nil
	case domain.KindTreasury:
		return &domain.Treasury{}, nil
	case domain.KindPlatformAccount:
		return &domain.PlatformAccount{}, nil
	case domain.KindUserAccount:
		return &domain.UserAccount{}, nil
	case domain.KindBook:
		return &domain.Book{}, nil
	case domain.KindChapter:
		return &domain.Chapter{}, nil
	case domain.KindReview:
		return &domain.Review{}, nil
	case domain.KindExclusiveContent:
		return &domain.ExclusiveContent{}, nil
	case domain.KindContentListing:
		return &domain.ContentListing{}, nil
	case domain.KindCollection:
		return &domain.Collection{}, nil
	case domain.KindNFT:
		return &domain.NFT{}, nil
	case domain.KindWallet:
		return &domain.Wallet{}, nil
	case domain.KindMint:
		return &domain.Mint{}, nil
	case domain.KindHolding:
		return &domain.Holding{}, nil
	case domain.KindMetadata:
		return &domain.Metadata{}, nil
	case domain.KindMasterEdition:
		return &domain.MasterEdition{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func open(data []byte) (envelope, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("record: decode envelope: %w", err)
	}
	if env.Version != SchemaVersion {
		return env, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env, nil
}
