package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
)

type Name string

const (
	NameTokenListed          Name = "TokenListed"
	NameTokenDelisted        Name = "TokenDelisted"
	NameTokenBought          Name = "TokenBought"
	NamePaymentsWithdrawn    Name = "PaymentsWithdrawn"
	NameListingFeeSet        Name = "ListingFeeSet"
	NameWithdrawalPeriodSet  Name = "WithdrawalPeriodSet"
	NameOwnershipTransferred Name = "OwnershipTransferred"
	NamePaused               Name = "Paused"
	NameUnpaused             Name = "Unpaused"
)

// Event is the notification record of one successful mutating call
type Event struct {
	Id   string `json:"id" bson:"_id"`
	Name Name   `json:"name" bson:"name"`

	// seller, buyer, payee, new owner or pausing account depending on Name
	Account  domain.Address `json:"account,omitempty" bson:"account,omitempty"`
	Previous domain.Address `json:"previous,omitempty" bson:"previous,omitempty"`

	Collection domain.Address `json:"collection,omitempty" bson:"collection,omitempty"`
	TokenId    domain.TokenId `json:"tokenId,omitempty" bson:"tokenId,omitempty"`

	// price, fee or withdrawn amount in wei
	Amount string `json:"amount,omitempty" bson:"amount,omitempty"`
	// withdrawal wait period in seconds
	Period *int64 `json:"period,omitempty" bson:"period,omitempty"`

	At time.Time `json:"at" bson:"at"`
}

func newEvent(name Name) Event {
	return Event{
		Id:   uuid.NewString(),
		Name: name,
	}
}

func TokenListed(seller, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) Event {
	e := newEvent(NameTokenListed)
	e.Account = seller
	e.Collection = collection
	e.TokenId = tokenId
	e.Amount = domain.AmountString(price)
	return e
}

func TokenDelisted(seller, collection domain.Address, tokenId domain.TokenId) Event {
	e := newEvent(NameTokenDelisted)
	e.Account = seller
	e.Collection = collection
	e.TokenId = tokenId
	return e
}

func TokenBought(buyer, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) Event {
	e := newEvent(NameTokenBought)
	e.Account = buyer
	e.Collection = collection
	e.TokenId = tokenId
	e.Amount = domain.AmountString(price)
	return e
}

func PaymentsWithdrawn(payee domain.Address, amount *uint256.Int) Event {
	e := newEvent(NamePaymentsWithdrawn)
	e.Account = payee
	e.Amount = domain.AmountString(amount)
	return e
}

func ListingFeeSet(fee *uint256.Int) Event {
	e := newEvent(NameListingFeeSet)
	e.Amount = domain.AmountString(fee)
	return e
}

func WithdrawalPeriodSet(period time.Duration) Event {
	e := newEvent(NameWithdrawalPeriodSet)
	secs := int64(period / time.Second)
	e.Period = &secs
	return e
}

func OwnershipTransferred(previous, next domain.Address) Event {
	e := newEvent(NameOwnershipTransferred)
	e.Previous = previous
	e.Account = next
	return e
}

func Paused(account domain.Address) Event {
	e := newEvent(NamePaused)
	e.Account = account
	return e
}

func Unpaused(account domain.Address) Event {
	e := newEvent(NameUnpaused)
	e.Account = account
	return e
}

// Publisher delivers committed events, in order
type Publisher interface {
	Publish(ctx ctx.Ctx, events ...Event) error
}

type FindAllOptions struct {
	Name    *Name
	Account *domain.Address
	Offset  *int
	Limit   *int
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithName(name Name) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Name = &name
		return nil
	}
}

func WithAccount(account domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Account = &account
		return nil
	}
}

func WithPagination(offset, limit int) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

// Journal keeps published events for reads
type Journal interface {
	Publisher
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]Event, error)
}
