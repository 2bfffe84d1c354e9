// Package state holds the storage records shared by the marketplace stores.
// Amounts are kept as decimal strings so that no backend needs a 256-bit
// number type.
package state

import (
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
)

// ConfigKey is the id of the single configuration record
const ConfigKey = "marketplace"

// ListingCountKey is the id of the listing counter
const ListingCountKey = "listings"

type ListingRecord struct {
	Key        string         `json:"-" bson:"_id"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Price      string         `json:"price" bson:"price"`
	Seller     domain.Address `json:"seller" bson:"seller"`
}

func FromListing(l *listing.Listing) *ListingRecord {
	return &ListingRecord{
		Key:        l.Id.Key(),
		Collection: l.Collection,
		TokenId:    l.TokenId,
		Price:      domain.AmountString(l.Price),
		Seller:     l.Seller,
	}
}

func (r *ListingRecord) ToListing() (*listing.Listing, error) {
	price, err := domain.ParseAmount(r.Price)
	if err != nil {
		return nil, xerrors.Errorf("corrupt listing %s: %w", r.Key, err)
	}
	return &listing.Listing{
		Id:     listing.Id{Collection: r.Collection, TokenId: r.TokenId},
		Price:  price,
		Seller: r.Seller,
	}, nil
}

type BalanceRecord struct {
	Payee    domain.Address `json:"payee" bson:"_id"`
	Pending  string         `json:"pending" bson:"pending"`
	// nanoseconds since epoch, zero when never locked
	UnlockAt int64          `json:"unlockAt" bson:"unlockAt"`
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(s int64) time.Time {
	if s == 0 {
		return time.Time{}
	}
	return time.Unix(0, s)
}

func FromBalance(b *escrow.Balance) *BalanceRecord {
	return &BalanceRecord{
		Payee:    b.Payee.ToLower(),
		Pending:  domain.AmountString(b.Pending),
		UnlockAt: unixNano(b.UnlockAt),
	}
}

func (r *BalanceRecord) ToBalance() (*escrow.Balance, error) {
	pending, err := domain.ParseAmount(r.Pending)
	if err != nil {
		return nil, xerrors.Errorf("corrupt balance of %s: %w", r.Payee, err)
	}
	return &escrow.Balance{
		Payee:    r.Payee,
		Pending:  pending,
		UnlockAt: fromUnixNano(r.UnlockAt),
	}, nil
}

type ConfigRecord struct {
	Key              string         `json:"-" bson:"_id"`
	Owner            domain.Address `json:"owner" bson:"owner"`
	ListingFee       string         `json:"listingFee" bson:"listingFee"`
	WithdrawalPeriod int64          `json:"withdrawalPeriod" bson:"withdrawalPeriod"`
	Paused           bool           `json:"paused" bson:"paused"`
}

func FromConfig(cfg *gate.Config) *ConfigRecord {
	return &ConfigRecord{
		Key:              ConfigKey,
		Owner:            cfg.Owner,
		ListingFee:       domain.AmountString(cfg.ListingFee),
		WithdrawalPeriod: int64(cfg.WithdrawalPeriod),
		Paused:           cfg.Paused,
	}
}

func (r *ConfigRecord) ToConfig() (*gate.Config, error) {
	fee, err := domain.ParseAmount(r.ListingFee)
	if err != nil {
		return nil, xerrors.Errorf("corrupt config: %w", err)
	}
	return &gate.Config{
		Owner:            r.Owner,
		ListingFee:       fee,
		WithdrawalPeriod: time.Duration(r.WithdrawalPeriod),
		Paused:           r.Paused,
	}, nil
}

type CollectionRecord struct {
	Collection domain.Address `json:"collection" bson:"_id"`
}

type TokenRecord struct {
	Key        string         `json:"-" bson:"_id"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Owner      domain.Address `json:"owner" bson:"owner"`
	Approved   domain.Address `json:"approved,omitempty" bson:"approved,omitempty"`
}

// TokenKey is the id of the token record of collection/tokenId
func TokenKey(collection domain.Address, tokenId domain.TokenId) string {
	return collection.ToLowerStr() + ":" + string(tokenId)
}

func FromToken(t *asset.Token) *TokenRecord {
	return &TokenRecord{
		Key:        TokenKey(t.Collection, t.TokenId),
		Collection: t.Collection.ToLower(),
		TokenId:    t.TokenId,
		Owner:      t.Owner.ToLower(),
		Approved:   t.Approved.ToLower(),
	}
}

func (r *TokenRecord) ToToken() *asset.Token {
	return &asset.Token{
		Collection: r.Collection,
		TokenId:    r.TokenId,
		Owner:      r.Owner,
		Approved:   r.Approved,
	}
}

// OperatorKey is the id of the approval of operator over every token
// owner holds in collection
func OperatorKey(collection, owner, operator domain.Address) string {
	return collection.ToLowerStr() + ":" + owner.ToLowerStr() + ":" + operator.ToLowerStr()
}

type OperatorRecord struct {
	Key string `json:"-" bson:"_id"`
}

type WalletRecord struct {
	Account domain.Address `json:"account" bson:"_id"`
	Balance string         `json:"balance" bson:"balance"`
}

func (r *WalletRecord) ToBalance() (*uint256.Int, error) {
	b, err := domain.ParseAmount(r.Balance)
	if err != nil {
		return nil, xerrors.Errorf("corrupt wallet of %s: %w", r.Account, err)
	}
	return b, nil
}
