package token

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"agoradeals/crypto"
)

var (
	ErrTokenNotFound = errors.New("token: token not found")
	ErrTokenBurned   = errors.New("token: token burned")
	ErrNameTooLong   = errors.New("token: name too long")
	ErrURITooLong    = errors.New("token: uri too long")
)

const (
	maxNameLength = 64
	maxURILength  = 200
)

// KV is the subset of state manager functionality the registry needs.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	tokenPrefix   = []byte("token/record/")
	tokenSeqKey   = []byte("token/sequence")
	tokenSeedSalt = "token"
)

func tokenKey(id ID) []byte {
	return []byte(fmt.Sprintf("%s%x", tokenPrefix, id[:]))
}

type storedToken struct {
	Owner  crypto.Address
	Seq    uint64
	Burned bool
	Name   string
	URI    string
}

type storedSequence struct {
	Next uint64
}

// Registry is a state-backed token authority. It satisfies the Authority
// interface so a node runs self-contained; a deployment fronting a real
// token service swaps the implementation at wiring time.
type Registry struct {
	store KV
}

// NewRegistry constructs a registry over the provided storage backend.
func NewRegistry(store KV) *Registry {
	return &Registry{store: store}
}

func (r *Registry) nextSeq() (uint64, error) {
	var seq storedSequence
	if _, err := r.store.KVGet(tokenSeqKey, &seq); err != nil {
		return 0, err
	}
	next := seq.Next
	seq.Next++
	if err := r.store.KVPut(tokenSeqKey, &seq); err != nil {
		return 0, err
	}
	return next, nil
}

// MintUnique creates a fresh token owned by owner. The identifier derives
// from a global mint sequence, so every mint yields a distinct token.
func (r *Registry) MintUnique(owner crypto.Address) (ID, error) {
	if r == nil || r.store == nil {
		return ID{}, errors.New("token: registry not initialised")
	}
	seq, err := r.nextSeq()
	if err != nil {
		return ID{}, err
	}
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	id := ID(crypto.DeriveAddress(tokenSeedSalt, seqBytes[:]))
	stored := storedToken{Owner: owner, Seq: seq}
	if err := r.store.KVPut(tokenKey(id), &stored); err != nil {
		return ID{}, err
	}
	return id, nil
}

func (r *Registry) load(id ID) (*storedToken, error) {
	if r == nil || r.store == nil {
		return nil, errors.New("token: registry not initialised")
	}
	var stored storedToken
	ok, err := r.store.KVGet(tokenKey(id), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &stored, nil
}

// Transfer reassigns ownership of a live token.
func (r *Registry) Transfer(id ID, newOwner crypto.Address) error {
	stored, err := r.load(id)
	if err != nil {
		return err
	}
	if stored.Burned {
		return ErrTokenBurned
	}
	stored.Owner = newOwner
	return r.store.KVPut(tokenKey(id), stored)
}

// Burn permanently destroys the token. Burning twice fails.
func (r *Registry) Burn(id ID) error {
	stored, err := r.load(id)
	if err != nil {
		return err
	}
	if stored.Burned {
		return ErrTokenBurned
	}
	stored.Burned = true
	return r.store.KVPut(tokenKey(id), stored)
}

// AttachMetadata records display metadata on a live token.
func (r *Registry) AttachMetadata(id ID, name, uri string) error {
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if len(uri) > maxURILength {
		return ErrURITooLong
	}
	stored, err := r.load(id)
	if err != nil {
		return err
	}
	if stored.Burned {
		return ErrTokenBurned
	}
	stored.Name = strings.TrimSpace(name)
	stored.URI = strings.TrimSpace(uri)
	return r.store.KVPut(tokenKey(id), stored)
}

// Owner returns the current owner of a live token.
func (r *Registry) Owner(id ID) (crypto.Address, error) {
	stored, err := r.load(id)
	if err != nil {
		return crypto.Address{}, err
	}
	if stored.Burned {
		return crypto.Address{}, ErrTokenBurned
	}
	return stored.Owner, nil
}
