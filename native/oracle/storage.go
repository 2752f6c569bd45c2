package oracle

import (
	"fmt"

	"agoradeals/crypto"
)

// KV abstracts the subset of state manager functionality required here.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	configKey  = []byte("oracle/config")
	dealPrefix = []byte("oracle/deal/")
)

func dealKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", dealPrefix, addr.Bytes()))
}

type storedConfig struct {
	Authority            crypto.Address
	AllowedSources       []byte
	MinVerificationCount uint32
	UpdateInterval       uint64
	TotalDealsImported   uint64
}

type storedDeal struct {
	OracleAuthority    crypto.Address
	Source             uint8
	ExternalID         string
	Title              string
	Description        string
	Category           string
	ImageURL           string
	AffiliateURL       string
	OriginalPrice      uint64
	DiscountedPrice    uint64
	DiscountPercentage uint8
	ExpiryTimestamp    uint64
	LastUpdated        uint64
	IsVerified         bool
	VerificationCount  uint32
}

// GetConfig loads the oracle policy singleton.
func GetConfig(store KV) (*Config, bool, error) {
	var stored storedConfig
	ok, err := store.KVGet(configKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	sources := make([]DealSource, len(stored.AllowedSources))
	for i, s := range stored.AllowedSources {
		sources[i] = DealSource(s)
	}
	return &Config{
		Authority:            stored.Authority,
		AllowedSources:       sources,
		MinVerificationCount: stored.MinVerificationCount,
		UpdateInterval:       int64(stored.UpdateInterval),
		TotalDealsImported:   stored.TotalDealsImported,
	}, true, nil
}

// PutConfig persists the oracle policy singleton.
func PutConfig(store KV, c *Config) error {
	if c == nil {
		return fmt.Errorf("oracle: record required")
	}
	sources := make([]byte, len(c.AllowedSources))
	for i, s := range c.AllowedSources {
		sources[i] = byte(s)
	}
	stored := storedConfig{
		Authority:            c.Authority,
		AllowedSources:       sources,
		MinVerificationCount: c.MinVerificationCount,
		UpdateInterval:       uint64(c.UpdateInterval),
		TotalDealsImported:   c.TotalDealsImported,
	}
	return store.KVPut(configKey, &stored)
}

// GetDeal loads the deal stored under addr.
func GetDeal(store KV, addr crypto.Address) (*ExternalDeal, bool, error) {
	var stored storedDeal
	ok, err := store.KVGet(dealKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &ExternalDeal{
		OracleAuthority:    stored.OracleAuthority,
		Source:             DealSource(stored.Source),
		ExternalID:         stored.ExternalID,
		Title:              stored.Title,
		Description:        stored.Description,
		Category:           stored.Category,
		ImageURL:           stored.ImageURL,
		AffiliateURL:       stored.AffiliateURL,
		OriginalPrice:      stored.OriginalPrice,
		DiscountedPrice:    stored.DiscountedPrice,
		DiscountPercentage: stored.DiscountPercentage,
		ExpiryTimestamp:    int64(stored.ExpiryTimestamp),
		LastUpdated:        int64(stored.LastUpdated),
		IsVerified:         stored.IsVerified,
		VerificationCount:  stored.VerificationCount,
	}, true, nil
}

// PutDeal persists the deal under addr.
func PutDeal(store KV, addr crypto.Address, d *ExternalDeal) error {
	if d == nil {
		return fmt.Errorf("oracle: record required")
	}
	stored := storedDeal{
		OracleAuthority:    d.OracleAuthority,
		Source:             uint8(d.Source),
		ExternalID:         d.ExternalID,
		Title:              d.Title,
		Description:        d.Description,
		Category:           d.Category,
		ImageURL:           d.ImageURL,
		AffiliateURL:       d.AffiliateURL,
		OriginalPrice:      d.OriginalPrice,
		DiscountedPrice:    d.DiscountedPrice,
		DiscountPercentage: d.DiscountPercentage,
		ExpiryTimestamp:    uint64(d.ExpiryTimestamp),
		LastUpdated:        uint64(d.LastUpdated),
		IsVerified:         d.IsVerified,
		VerificationCount:  d.VerificationCount,
	}
	return store.KVPut(dealKey(addr), &stored)
}
