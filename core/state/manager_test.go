package state

import (
	"math/big"
	"testing"

	"agoradeals/crypto"
	"agoradeals/storage"
)

type record struct {
	Name  string
	Count uint64
}

func TestManagerKVRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	if err := m.KVPut([]byte("records/a"), &record{Name: "a", Count: 7}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got record
	ok, err := m.KVGet([]byte("records/a"), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected record to exist")
	}
	if got.Name != "a" || got.Count != 7 {
		t.Fatalf("unexpected record: %+v", got)
	}

	ok, err = m.KVGet([]byte("records/missing"), &got)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatalf("missing key reported as present")
	}
}

func TestManagerCommitMakesWritesDurable(t *testing.T) {
	db := storage.NewMemDB()
	m := NewManager(db)

	m.Begin()
	if err := m.KVPut([]byte("records/a"), &record{Name: "staged", Count: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Staged write is visible through the manager but not yet in the db.
	other := NewManager(db)
	if ok, _ := other.KVGet([]byte("records/a"), nil); ok {
		t.Fatalf("staged write leaked to database before commit")
	}
	if ok, _ := m.KVGet([]byte("records/a"), nil); !ok {
		t.Fatalf("staged write not visible to reads")
	}

	if err := m.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	var got record
	if ok, _ := other.KVGet([]byte("records/a"), &got); !ok || got.Name != "staged" {
		t.Fatalf("committed record missing: %+v", got)
	}
}

func TestManagerRollbackDiscardsWrites(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	m.Begin()
	if err := m.KVPut([]byte("records/a"), &record{Name: "a", Count: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	m.Rollback()

	if ok, _ := m.KVGet([]byte("records/a"), nil); ok {
		t.Fatalf("rolled-back write still visible")
	}
}

func TestManagerAccounts(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	var addr crypto.Address
	addr[0] = 0xAA

	account, err := m.GetAccount(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.Balance.Sign() != 0 {
		t.Fatalf("fresh account should be empty: %+v", account)
	}

	account.Balance = big.NewInt(1_000_000)
	account.Nonce = 3
	if err := m.PutAccount(addr, account); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := m.GetAccount(addr)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Balance.Cmp(big.NewInt(1_000_000)) != 0 || got.Nonce != 3 {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestManagerOverlayShadowsCommitted(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	if err := m.KVPut([]byte("records/a"), &record{Name: "old", Count: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}

	m.Begin()
	if err := m.KVPut([]byte("records/a"), &record{Name: "new", Count: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got record
	if ok, _ := m.KVGet([]byte("records/a"), &got); !ok || got.Name != "new" {
		t.Fatalf("overlay did not shadow committed value: %+v", got)
	}
	m.Rollback()

	if ok, _ := m.KVGet([]byte("records/a"), &got); !ok || got.Name != "old" {
		t.Fatalf("committed value lost after rollback: %+v", got)
	}
}
