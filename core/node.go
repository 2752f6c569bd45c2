package core

import (
	"math/big"
	"sync"

	"agoradeals/core/events"
	"agoradeals/core/state"
	"agoradeals/core/types"
	"agoradeals/crypto"
	"agoradeals/native/coupon"
	"agoradeals/native/exchange"
	"agoradeals/native/geo"
	"agoradeals/native/marketplace"
	"agoradeals/native/oracle"
	"agoradeals/native/promotion"
	"agoradeals/native/reputation"
	"agoradeals/native/social"
	"agoradeals/native/token"
	"agoradeals/storage"
)

// Node wires the marketplace engines over one state manager and serialises
// every state transition behind a single mutex. Each operation runs against a
// staged overlay that commits only on success, so a failed operation leaves
// no partial writes behind and emits no events.
type Node struct {
	mu      sync.Mutex
	state   *state.Manager
	buffer  *events.Buffer
	emitter events.Emitter

	marketplace *marketplace.Engine
	promotions  *promotion.Engine
	coupons     *coupon.Engine
	listings    *exchange.Engine
	social      *social.Engine
	oracle      *oracle.Engine
	reputation  *reputation.Engine
	tokens      *token.Registry
}

// NewNode constructs a node over the provided database.
func NewNode(db storage.Database) *Node {
	mgr := state.NewManager(db)
	buffer := &events.Buffer{}
	tokens := token.NewRegistry(mgr)
	rep := reputation.NewEngine(mgr, tokens)
	coupons := coupon.NewEngine(mgr, tokens, rep)
	n := &Node{
		state:       mgr,
		buffer:      buffer,
		emitter:     events.NoopEmitter{},
		marketplace: marketplace.NewEngine(mgr),
		promotions:  promotion.NewEngine(mgr),
		coupons:     coupons,
		listings:    exchange.NewEngine(mgr, mgr, tokens),
		social:      social.NewEngine(mgr, rep),
		oracle:      oracle.NewEngine(mgr),
		reputation:  rep,
		tokens:      tokens,
	}
	n.marketplace.SetEmitter(buffer)
	n.promotions.SetEmitter(buffer)
	n.coupons.SetEmitter(buffer)
	n.listings.SetEmitter(buffer)
	n.social.SetEmitter(buffer)
	n.oracle.SetEmitter(buffer)
	n.reputation.SetEmitter(buffer)
	return n
}

// SetEmitter configures the sink that receives events from committed
// operations. Passing nil discards them.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if emitter == nil {
		n.emitter = events.NoopEmitter{}
		return
	}
	n.emitter = emitter
}

// SetNowFunc overrides the wall clock of every engine, primarily for tests.
func (n *Node) SetNowFunc(now func() int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.marketplace.SetNowFunc(now)
	n.promotions.SetNowFunc(now)
	n.coupons.SetNowFunc(now)
	n.listings.SetNowFunc(now)
	n.social.SetNowFunc(now)
	n.oracle.SetNowFunc(now)
	n.reputation.SetNowFunc(now)
}

// withState runs fn inside a serialised state transition. The overlay commits
// and buffered events flush only when fn succeeds.
func (n *Node) withState(fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.Begin()
	n.buffer.Reset()
	if err := fn(); err != nil {
		n.state.Rollback()
		n.buffer.Reset()
		return err
	}
	if err := n.state.Commit(); err != nil {
		n.buffer.Reset()
		return err
	}
	n.buffer.Flush(n.emitter)
	return nil
}

// InitializeMarketplace creates the marketplace registry singleton.
func (n *Node) InitializeMarketplace(authority crypto.Address, feeBasisPoints uint32) (*marketplace.Registry, error) {
	var reg *marketplace.Registry
	err := n.withState(func() error {
		var err error
		reg, err = n.marketplace.Initialize(authority, feeBasisPoints)
		return err
	})
	return reg, err
}

// SetFeeBasisPoints updates the marketplace fee. Authority only.
func (n *Node) SetFeeBasisPoints(caller crypto.Address, feeBasisPoints uint32) (*marketplace.Registry, error) {
	var reg *marketplace.Registry
	err := n.withState(func() error {
		var err error
		reg, err = n.marketplace.SetFeeBasisPoints(caller, feeBasisPoints)
		return err
	})
	return reg, err
}

// RegisterMerchant enrols the authority as a merchant, optionally with a
// physical location.
func (n *Node) RegisterMerchant(authority crypto.Address, name, category string, latitude, longitude *float64) (*marketplace.Merchant, error) {
	var merchant *marketplace.Merchant
	err := n.withState(func() error {
		var err error
		merchant, err = n.marketplace.RegisterMerchant(authority, name, category, latitude, longitude)
		return err
	})
	return merchant, err
}

// CreatePromotion publishes a promotion for the caller's merchant record.
func (n *Node) CreatePromotion(authority crypto.Address, params promotion.CreateParams) (crypto.Address, *promotion.Promotion, error) {
	var (
		addr  crypto.Address
		promo *promotion.Promotion
	)
	err := n.withState(func() error {
		var err error
		addr, promo, err = n.promotions.Create(authority, marketplace.MerchantAddress(authority), params)
		return err
	})
	return addr, promo, err
}

// MintCoupon mints a coupon from a promotion to the recipient.
func (n *Node) MintCoupon(promotionAddr, recipient crypto.Address) (crypto.Address, *coupon.Coupon, error) {
	var (
		addr crypto.Address
		c    *coupon.Coupon
	)
	err := n.withState(func() error {
		var err error
		addr, c, err = n.coupons.Mint(promotionAddr, recipient)
		return err
	})
	return addr, c, err
}

// TransferCoupon reassigns coupon ownership.
func (n *Node) TransferCoupon(couponAddr, caller, newOwner crypto.Address) (*coupon.Coupon, error) {
	var c *coupon.Coupon
	err := n.withState(func() error {
		var err error
		c, err = n.coupons.Transfer(couponAddr, caller, newOwner)
		return err
	})
	return c, err
}

// RedeemCoupon redeems a coupon with owner and merchant consent.
func (n *Node) RedeemCoupon(couponAddr, redeemer, merchantAuthority crypto.Address) (*coupon.Coupon, error) {
	var c *coupon.Coupon
	err := n.withState(func() error {
		var err error
		c, err = n.coupons.Redeem(couponAddr, redeemer, merchantAuthority)
		return err
	})
	return c, err
}

// ListForSale offers a coupon on the secondary market.
func (n *Node) ListForSale(couponAddr, seller crypto.Address, price uint64) (crypto.Address, *exchange.Listing, error) {
	var (
		addr    crypto.Address
		listing *exchange.Listing
	)
	err := n.withState(func() error {
		var err error
		addr, listing, err = n.listings.List(couponAddr, seller, price)
		return err
	})
	return addr, listing, err
}

// CancelListing withdraws an active listing.
func (n *Node) CancelListing(listingAddr, caller crypto.Address) (*exchange.Listing, error) {
	var listing *exchange.Listing
	err := n.withState(func() error {
		var err error
		listing, err = n.listings.Cancel(listingAddr, caller)
		return err
	})
	return listing, err
}

// BuyListing settles an active listing for the buyer.
func (n *Node) BuyListing(listingAddr, buyer crypto.Address) (*exchange.Listing, *coupon.Coupon, error) {
	var (
		listing *exchange.Listing
		c       *coupon.Coupon
	)
	err := n.withState(func() error {
		var err error
		listing, c, err = n.listings.Buy(listingAddr, buyer)
		return err
	})
	return listing, c, err
}

// AddComment appends a comment to a promotion's thread.
func (n *Node) AddComment(promotionAddr, author crypto.Address, content string, parent crypto.Address) (crypto.Address, *social.Comment, error) {
	var (
		addr crypto.Address
		c    *social.Comment
	)
	err := n.withState(func() error {
		var err error
		addr, c, err = n.social.AddComment(promotionAddr, author, content, parent)
		return err
	})
	return addr, c, err
}

// LikeComment increments a comment's like counter.
func (n *Node) LikeComment(commentAddr, liker crypto.Address) (*social.Comment, error) {
	var c *social.Comment
	err := n.withState(func() error {
		var err error
		c, err = n.social.LikeComment(commentAddr, liker)
		return err
	})
	return c, err
}

// RatePromotion records or updates the user's star rating of a promotion.
func (n *Node) RatePromotion(promotionAddr, user crypto.Address, stars uint8) (*social.Rating, *social.RatingStats, error) {
	var (
		rating *social.Rating
		stats  *social.RatingStats
	)
	err := n.withState(func() error {
		var err error
		rating, stats, err = n.social.Rate(promotionAddr, user, stars)
		return err
	})
	return rating, stats, err
}

// MintBadge issues an earned badge to the user.
func (n *Node) MintBadge(user crypto.Address, badgeType reputation.BadgeType) (*reputation.BadgeNFT, error) {
	var badge *reputation.BadgeNFT
	err := n.withState(func() error {
		var err error
		badge, err = n.reputation.MintBadge(user, badgeType)
		return err
	})
	return badge, err
}

// InitializeOracle creates the oracle policy singleton.
func (n *Node) InitializeOracle(authority crypto.Address, allowedSources []oracle.DealSource, minVerificationCount uint32, updateInterval int64) (*oracle.Config, error) {
	var cfg *oracle.Config
	err := n.withState(func() error {
		var err error
		cfg, err = n.oracle.InitializeConfig(authority, allowedSources, minVerificationCount, updateInterval)
		return err
	})
	return cfg, err
}

// UpdateExternalDeal writes a third-party deal record.
func (n *Node) UpdateExternalDeal(caller crypto.Address, params oracle.DealParams) (*oracle.ExternalDeal, error) {
	var deal *oracle.ExternalDeal
	err := n.withState(func() error {
		var err error
		deal, err = n.oracle.UpdateDeal(caller, params)
		return err
	})
	return deal, err
}

// FundAccount credits an account balance. This backs faucet-style funding on
// development deployments; production deposits arrive through settlement.
func (n *Node) FundAccount(addr crypto.Address, amount *big.Int) (*types.Account, error) {
	var account *types.Account
	err := n.withState(func() error {
		var err error
		account, err = n.state.GetAccount(addr)
		if err != nil {
			return err
		}
		if amount != nil {
			account.Balance = new(big.Int).Add(account.Balance, amount)
		}
		return n.state.PutAccount(addr, account)
	})
	return account, err
}

// Registry returns the marketplace registry singleton, if initialised.
func (n *Node) Registry() (*marketplace.Registry, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketplace.Registry()
}

// Merchant returns the merchant registered by the authority, if any.
func (n *Node) Merchant(authority crypto.Address) (*marketplace.Merchant, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marketplace.Merchant(authority)
}

// Promotion returns the promotion stored under addr.
func (n *Node) Promotion(addr crypto.Address) (*promotion.Promotion, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.promotions.Promotion(addr)
}

// Cell returns the geo index cell with the given identifier.
func (n *Node) Cell(cellID uint64) (*geo.Cell, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.promotions.Cell(cellID)
}

// Coupon returns the coupon stored under addr.
func (n *Node) Coupon(addr crypto.Address) (*coupon.Coupon, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.coupons.Coupon(addr)
}

// Listing returns the listing stored under addr.
func (n *Node) Listing(addr crypto.Address) (*exchange.Listing, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.listings.Listing(addr)
}

// Reputation returns the user's reputation record, if any.
func (n *Node) Reputation(user crypto.Address) (*reputation.UserReputation, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reputation.Reputation(user)
}

// Badge returns the user's badge of the given type, if earned.
func (n *Node) Badge(user crypto.Address, badgeType reputation.BadgeType) (*reputation.BadgeNFT, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reputation.Badge(user, badgeType)
}

// Comment returns the comment stored under addr.
func (n *Node) Comment(addr crypto.Address) (*social.Comment, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.social.Comment(addr)
}

// Rating returns the user's rating of a promotion, if any.
func (n *Node) Rating(promotionAddr, user crypto.Address) (*social.Rating, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.social.Rating(promotionAddr, user)
}

// RatingStats returns the promotion's rating aggregate, if any.
func (n *Node) RatingStats(promotionAddr crypto.Address) (*social.RatingStats, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.social.Stats(promotionAddr)
}

// OracleConfig returns the oracle policy singleton, if initialised.
func (n *Node) OracleConfig() (*oracle.Config, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.oracle.Config()
}

// Deal returns the external deal keyed by externalID, if any.
func (n *Node) Deal(externalID string) (*oracle.ExternalDeal, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.oracle.Deal(externalID)
}

// Balance returns the spendable balance of an account.
func (n *Node) Balance(addr crypto.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, err := n.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}
