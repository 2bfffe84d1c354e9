package marketplace

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
	"github.com/x-xyz/marketledger/domain/payment"
)

// Tx describes who sends a call and how much value is attached to it
type Tx struct {
	From  domain.Address
	Value *uint256.Int
}

// StateTx exposes the repositories bound to one store transaction
type StateTx interface {
	Listings() listing.Repo
	Escrow() escrow.Repo
	Config() gate.Repo
	Assets() asset.Repo
	Wallet() payment.Repo
}

// TxFunc is the body of a store transaction. Returning an error discards
// every write made through tx.
type TxFunc func(c ctx.Ctx, tx StateTx) error

// Store owns the durable marketplace state. Update bodies are applied one at
// a time and either fully commit or leave no trace.
type Store interface {
	Update(c ctx.Ctx, fn TxFunc) error
	View(c ctx.Ctx, fn TxFunc) error
	Close() error
}

// Call is a generic invocation routed by method name
type Call struct {
	Tx
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

// Result is the outcome of a routed call, Output is empty for calls
// which return nothing
type Result struct {
	Method string      `json:"method"`
	Output interface{} `json:"output,omitempty"`
}

// Invoke method names
const (
	MethodListToken            = "listToken"
	MethodDelistToken          = "delistToken"
	MethodUpdateListing        = "updateListing"
	MethodBuyToken             = "buyToken"
	MethodWithdrawPayments     = "withdrawPayments"
	MethodPause                = "pause"
	MethodUnpause              = "unpause"
	MethodTransferOwnership    = "transferOwnership"
	MethodRenounceOwnership    = "renounceOwnership"
	MethodSetListingFee        = "setListingFee"
	MethodSetWithdrawalPeriod  = "setWithdrawalWaitPeriod"
	MethodGetListing           = "getListing"
	MethodListingCount         = "listingCount"
	MethodPayments             = "payments"
	MethodPaymentDates         = "paymentDates"
	MethodOwner                = "owner"
	MethodPaused               = "paused"
	MethodListingFee           = "listingFee"
	MethodWithdrawalWaitPeriod = "withdrawalWaitPeriod"
)

// UseCase is the public surface of the marketplace
type UseCase interface {
	// Address is the identity the marketplace acts as, both as asset
	// operator and as the holder of escrowed funds
	Address() domain.Address

	ListToken(c ctx.Ctx, tx Tx, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) error
	DelistToken(c ctx.Ctx, tx Tx, collection domain.Address, tokenId domain.TokenId) error
	UpdateListing(c ctx.Ctx, tx Tx, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) error
	BuyToken(c ctx.Ctx, tx Tx, collection domain.Address, tokenId domain.TokenId) error
	WithdrawPayments(c ctx.Ctx, tx Tx, payee domain.Address) (*uint256.Int, error)

	Pause(c ctx.Ctx, tx Tx) error
	Unpause(c ctx.Ctx, tx Tx) error
	TransferOwnership(c ctx.Ctx, tx Tx, newOwner domain.Address) error
	RenounceOwnership(c ctx.Ctx, tx Tx) error
	SetListingFee(c ctx.Ctx, tx Tx, fee *uint256.Int) error
	SetWithdrawalPeriod(c ctx.Ctx, tx Tx, period time.Duration) error

	// Fallback rejects a call that matches no operation
	Fallback(c ctx.Ctx, tx Tx) error
	Invoke(c ctx.Ctx, call Call) (*Result, error)

	GetListing(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*listing.Listing, error)
	ListingCount(c ctx.Ctx) (uint64, error)
	Payments(c ctx.Ctx, payee domain.Address) (*uint256.Int, error)
	PaymentDate(c ctx.Ctx, payee domain.Address) (time.Time, error)
	Config(c ctx.Ctx) (*gate.Config, error)
}

// ListingView is the wire form of a listing, amounts in wei
type ListingView struct {
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Price      string         `json:"price"`
	Seller     domain.Address `json:"seller"`
}

func NewListingView(l *listing.Listing) *ListingView {
	seller := l.Seller
	if seller == "" {
		seller = domain.EmptyAddress
	}
	return &ListingView{
		Collection: l.Collection,
		TokenId:    l.TokenId,
		Price:      domain.AmountString(l.Price),
		Seller:     seller,
	}
}

// ConfigView is the wire form of the marketplace configuration
type ConfigView struct {
	Owner                domain.Address `json:"owner"`
	ListingFee           string         `json:"listingFee"`
	WithdrawalWaitPeriod int64          `json:"withdrawalWaitPeriod"`
	Paused               bool           `json:"paused"`
}

func NewConfigView(cfg *gate.Config) *ConfigView {
	owner := cfg.Owner
	if owner == "" {
		owner = domain.EmptyAddress
	}
	return &ConfigView{
		Owner:                owner,
		ListingFee:           domain.AmountString(cfg.ListingFee),
		WithdrawalWaitPeriod: int64(cfg.WithdrawalPeriod / time.Second),
		Paused:               cfg.Paused,
	}
}
