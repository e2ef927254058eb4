// Package address implements the deterministic address scheme every record
// in the system is keyed by.
//
// An address is derived from an owning program and a list of seeds. The first
// seed is a namespace tag, so two derivations with distinct tags never
// collide. A derived address is never a valid ed25519 public key: no private
// key can sign for it, which lets the owning program alone authorize writes.
package address

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Size is the length of an address in bytes.
const Size = 32

const (
	// MaxSeeds is the largest number of seeds a derivation accepts.
	MaxSeeds = 16
	// MaxSeedLen is the largest seed length in bytes.
	MaxSeedLen = 32
)

const derivationMarker = "ProgramDerivedAddress"

var (
	ErrTooManySeeds        = errors.New("address: too many seeds")
	ErrSeedTooLong         = errors.New("address: seed too long")
	ErrOnCurve             = errors.New("address: candidate lies on the curve")
	ErrDerivationExhausted = errors.New("address: no off-curve address for seeds")
	ErrInvalidLength       = errors.New("address: invalid length")
)

// Address identifies a record, a program or a wallet.
type Address [Size]byte

// Zero is the empty address.
var Zero Address

// FromBytes copies b into an Address.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Parse decodes the base58 text form of an address.
func Parse(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("address: decode %q: %w", s, err)
	}
	return FromBytes(b)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string { return base58.Encode(a[:]) }

// Bytes returns a copy of the address bytes, suitable as a seed.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

func (a Address) IsZero() bool { return a == Zero }

// Equal reports whether a and b are the same address.
func (a Address) Equal(b Address) bool { return bytes.Equal(a[:], b[:]) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OnCurve reports whether a decodes to a point on the ed25519 curve, i.e.
// whether a private key could exist for it.
func (a Address) OnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// ProgramID returns the fixed identity of a named program.
func ProgramID(name string) Address {
	return Address(sha256.Sum256([]byte("folio/program/" + name)))
}

// Derive returns the address for seeds under program and its proof: the
// smallest nonce for which the candidate is off the curve. The result is
// fully determined by the inputs.
func Derive(program Address, seeds ...[]byte) (Address, uint8, error) {
	if err := checkSeeds(seeds); err != nil {
		return Zero, 0, err
	}
	for nonce := 0; nonce <= 255; nonce++ {
		addr, err := CreateWithProof(program, uint8(nonce), seeds...)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return Zero, 0, err
		}
		return addr, uint8(nonce), nil
	}
	return Zero, 0, ErrDerivationExhausted
}

// MustDerive is Derive for seed sets known to be valid. It panics on error,
// which for valid seeds means the derivation space was exhausted.
func MustDerive(program Address, seeds ...[]byte) (Address, uint8) {
	addr, proof, err := Derive(program, seeds...)
	if err != nil {
		panic(err)
	}
	return addr, proof
}

// CreateWithProof re-derives an address from a known proof. It fails with
// ErrOnCurve when the candidate is a valid public key.
func CreateWithProof(program Address, proof uint8, seeds ...[]byte) (Address, error) {
	if err := checkSeeds(seeds); err != nil {
		return Zero, err
	}

	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{proof})
	h.Write(program[:])
	h.Write([]byte(derivationMarker))

	var addr Address
	copy(addr[:], h.Sum(nil))
	if addr.OnCurve() {
		return Zero, ErrOnCurve
	}
	return addr, nil
}

// Verify reports whether addr is the derivation of seeds under program with
// the given proof.
func Verify(program, addr Address, proof uint8, seeds ...[]byte) bool {
	got, err := CreateWithProof(program, proof, seeds...)
	return err == nil && got == addr
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return fmt.Errorf("%w: %d", ErrTooManySeeds, len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return fmt.Errorf("%w: seed %d is %d bytes", ErrSeedTooLong, i, len(s))
		}
	}
	return nil
}

// IsCanonical reports whether addr and proof are exactly what Derive returns
// for seeds under program. Verify accepts any off-curve proof; this does not.
func IsCanonical(program, addr Address, proof uint8, seeds ...[]byte) bool {
	want, wantProof, err := Derive(program, seeds...)
	return err == nil && want == addr && wantProof == proof
}

// FromPublicKey returns the wallet address of an ed25519 public key.
func FromPublicKey(pub ed25519.PublicKey) (Address, error) {
	return FromBytes(pub)
}
