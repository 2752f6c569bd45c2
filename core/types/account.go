package types

import "math/big"

// Account holds the spendable balance backing marketplace settlements.
type Account struct {
	Balance *big.Int
	Nonce   uint64
}

// EnsureAccount normalises a possibly-nil account into a usable value.
func EnsureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}
