package token

import (
	"agoradeals/crypto"
)

// ID identifies one unique token minted by the authority.
type ID [32]byte

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == (ID{})
}

// Authority is the external token-minting collaborator. Coupons and badges
// are each tied 1:1 to a unique owned token; the ledger calls the authority
// synchronously inside the state transition that needs it, so a failed call
// aborts the whole step.
type Authority interface {
	// MintUnique creates a fresh one-of-one token owned by owner.
	MintUnique(owner crypto.Address) (ID, error)
	// Transfer reassigns token ownership.
	Transfer(id ID, newOwner crypto.Address) error
	// Burn destroys the token permanently.
	Burn(id ID) error
	// AttachMetadata records display metadata for the token.
	AttachMetadata(id ID, name, uri string) error
}
