// Package invoke carries signing authority across module boundaries.
//
// A Context is passed by value into every module entry point. It attests the
// wallet that signed the outer operation, the program making the call, and
// the derived addresses that program signs for. A callee trusts nothing else
// about its caller.
package invoke

import (
	"fmt"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/internal/domain"
)

// SignerSeeds is a derivation the calling program signs for.
type SignerSeeds struct {
	Program address.Address
	Seeds   [][]byte
	Proof   uint8
}

// Address re-derives the address the seeds stand for.
func (s SignerSeeds) Address() (address.Address, error) {
	return address.CreateWithProof(s.Program, s.Proof, s.Seeds...)
}

// Context is the capability handed to a callee.
type Context struct {
	Signer address.Address
	Caller address.Address

	signed []address.Address
}

// FromWallet returns the context of an operation signed by wallet.
func FromWallet(wallet address.Address) Context {
	return Context{Signer: wallet}
}

// Delegate returns the context for a call made by caller. Every seed set must
// belong to caller and re-derive, so a program can only sign for its own
// derived addresses.
func (c Context) Delegate(caller address.Address, seeds ...SignerSeeds) (Context, error) {
	next := Context{Signer: c.Signer, Caller: caller}
	for _, s := range seeds {
		if s.Program != caller {
			return Context{}, fmt.Errorf("sign as %s: %w", s.Program, domain.ErrInvalidDerivation)
		}
		addr, err := s.Address()
		if err != nil {
			return Context{}, fmt.Errorf("sign for seeds: %w", domain.ErrInvalidDerivation)
		}
		next.signed = append(next.signed, addr)
	}
	return next, nil
}

// Signs reports whether the context carries a signature for a.
func (c Context) Signs(a address.Address) bool {
	if a.IsZero() {
		return false
	}
	if a == c.Signer {
		return true
	}
	for _, s := range c.signed {
		if s == a {
			return true
		}
	}
	return false
}

// RequireSigner fails with domain.ErrMissingSignature unless the context
// signs for a.
func (c Context) RequireSigner(a address.Address) error {
	if !c.Signs(a) {
		return fmt.Errorf("%s: %w", a, domain.ErrMissingSignature)
	}
	return nil
}

// HasSigner reports whether a wallet signed the operation.
func (c Context) HasSigner() bool { return !c.Signer.IsZero() }
