package state

import (
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"agoradeals/core/types"
	"agoradeals/crypto"
	"agoradeals/storage"
)

// Manager provides keyed record storage for the ledger. Records are RLP
// encoded under keccak-hashed keys in the backing database.
//
// Writes issued between Begin and Commit are staged in an overlay and become
// visible to reads immediately, but reach the database only when Commit is
// called. Rollback drops the overlay. The node serialises state transitions,
// so at most one overlay is ever active; together with the overlay this gives
// every operation all-or-nothing semantics over the records it touches.
type Manager struct {
	db      storage.Database
	overlay map[string][]byte
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// Begin opens a staged write overlay. Panics if a transition is already open;
// that indicates a serialisation bug in the caller.
func (m *Manager) Begin() {
	if m.overlay != nil {
		panic("state: transition already in progress")
	}
	m.overlay = make(map[string][]byte)
}

// Commit flushes the staged writes to the database and closes the overlay.
// When the backing store rejects a write the remaining staged entries are
// still attempted so the error surfaces after maximal effort; callers treat
// any error here as fatal.
func (m *Manager) Commit() error {
	if m.overlay == nil {
		return fmt.Errorf("state: no transition in progress")
	}
	var firstErr error
	for key, value := range m.overlay {
		if err := m.db.Put([]byte(key), value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.overlay = nil
	return firstErr
}

// Rollback discards the staged writes and closes the overlay.
func (m *Manager) Rollback() {
	m.overlay = nil
}

// KVPut encodes the value with RLP and stages (or directly writes, outside a
// transition) it under the hashed key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	hashed := kvKey(key)
	if m.overlay != nil {
		m.overlay[string(hashed)] = encoded
		return nil
	}
	return m.db.Put(hashed, encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the
// key existed in state. Staged writes shadow committed values.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	hashed := kvKey(key)
	data, ok := m.overlay[string(hashed)]
	if !ok {
		var err error
		data, err = m.db.Get(hashed)
		if err != nil {
			return false, err
		}
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVHas reports whether a record exists under the supplied key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	return m.KVGet(key, nil)
}

var accountPrefix = []byte("account/")

func accountKey(addr crypto.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// GetAccount loads the account record for addr. Addresses without a stored
// record resolve to a fresh zero-balance account.
func (m *Manager) GetAccount(addr crypto.Address) (*types.Account, error) {
	account := new(types.Account)
	ok, err := m.KVGet(accountKey(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.EnsureAccount(nil), nil
	}
	return types.EnsureAccount(account), nil
}

// PutAccount persists the account record for addr.
func (m *Manager) PutAccount(addr crypto.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: account required")
	}
	return m.KVPut(accountKey(addr), types.EnsureAccount(account))
}
