package reputation

import (
	"fmt"

	"agoradeals/crypto"
	"agoradeals/native/token"
)

// KV abstracts the subset of state manager functionality required by the
// reputation engine.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	reputationPrefix = []byte("reputation/user/")
	badgePrefix      = []byte("reputation/badge/")
)

func reputationKey(user crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", reputationPrefix, user.Bytes()))
}

func badgeKey(addr crypto.Address) []byte {
	return []byte(fmt.Sprintf("%s%x", badgePrefix, addr.Bytes()))
}

type storedReputation struct {
	User              crypto.Address
	TotalPurchases    uint32
	TotalRedemptions  uint32
	TotalRatingsGiven uint32
	TotalComments     uint32
	ReputationScore   uint64
	Tier              uint8
	BadgesEarned      []uint8
	JoinedAt          uint64
}

type storedBadge struct {
	User        crypto.Address
	BadgeType   uint8
	Token       [32]byte
	MetadataURI string
	EarnedAt    uint64
}

// GetReputation loads the reputation record for user.
func GetReputation(store KV, user crypto.Address) (*UserReputation, bool, error) {
	var stored storedReputation
	ok, err := store.KVGet(reputationKey(user), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	rep := &UserReputation{
		User:              stored.User,
		TotalPurchases:    stored.TotalPurchases,
		TotalRedemptions:  stored.TotalRedemptions,
		TotalRatingsGiven: stored.TotalRatingsGiven,
		TotalComments:     stored.TotalComments,
		ReputationScore:   stored.ReputationScore,
		Tier:              Tier(stored.Tier),
		JoinedAt:          int64(stored.JoinedAt),
	}
	for _, b := range stored.BadgesEarned {
		rep.BadgesEarned = append(rep.BadgesEarned, BadgeType(b))
	}
	return rep, true, nil
}

// PutReputation persists the reputation record.
func PutReputation(store KV, rep *UserReputation) error {
	if rep == nil {
		return fmt.Errorf("reputation: record required")
	}
	stored := storedReputation{
		User:              rep.User,
		TotalPurchases:    rep.TotalPurchases,
		TotalRedemptions:  rep.TotalRedemptions,
		TotalRatingsGiven: rep.TotalRatingsGiven,
		TotalComments:     rep.TotalComments,
		ReputationScore:   rep.ReputationScore,
		Tier:              uint8(rep.Tier),
		JoinedAt:          uint64(rep.JoinedAt),
	}
	for _, b := range rep.BadgesEarned {
		stored.BadgesEarned = append(stored.BadgesEarned, uint8(b))
	}
	return store.KVPut(reputationKey(rep.User), &stored)
}

// GetBadge loads a badge record by derived address.
func GetBadge(store KV, addr crypto.Address) (*BadgeNFT, bool, error) {
	var stored storedBadge
	ok, err := store.KVGet(badgeKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &BadgeNFT{
		User:        stored.User,
		BadgeType:   BadgeType(stored.BadgeType),
		Token:       token.ID(stored.Token),
		MetadataURI: stored.MetadataURI,
		EarnedAt:    int64(stored.EarnedAt),
	}, true, nil
}

// PutBadge persists a badge record under its derived address.
func PutBadge(store KV, badge *BadgeNFT) error {
	if badge == nil {
		return fmt.Errorf("reputation: badge required")
	}
	stored := storedBadge{
		User:        badge.User,
		BadgeType:   uint8(badge.BadgeType),
		Token:       badge.Token,
		MetadataURI: badge.MetadataURI,
		EarnedAt:    uint64(badge.EarnedAt),
	}
	return store.KVPut(badgeKey(BadgeAddress(badge.User, badge.BadgeType)), &stored)
}
