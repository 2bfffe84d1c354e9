package listing

import (
	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
)

// Id keys a listing
type Id struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

// Key is the storage key of the id
func (id Id) Key() string {
	return id.Collection.ToLowerStr() + "/" + id.TokenId.String()
}

// Listing is an active sale offer. An absent listing reads as a zero price
// and the zero seller, a stored listing always has a positive price.
type Listing struct {
	Id     `bson:"inline"`
	Price  *uint256.Int   `json:"price" bson:"-"`
	Seller domain.Address `json:"seller" bson:"seller"`
}

// Empty returns the sentinel of an absent listing
func Empty(id Id) *Listing {
	return &Listing{
		Id:     id,
		Price:  domain.Zero(),
		Seller: domain.EmptyAddress,
	}
}

// IsActive reports whether the listing exists
func (l *Listing) IsActive() bool {
	return l != nil && !domain.IsZeroAmount(l.Price)
}

// Repo stores active listings. FindOne returns domain.ErrNotFound for an
// absent key and Remove does the same when there is nothing to remove.
type Repo interface {
	FindOne(ctx ctx.Ctx, id Id) (*Listing, error)
	Insert(ctx ctx.Ctx, l *Listing) error
	Update(ctx ctx.Ctx, l *Listing) error
	Remove(ctx ctx.Ctx, id Id) error
	Count(ctx ctx.Ctx) (uint64, error)
}

// Registry maintains the listing invariants on top of a Repo
type Registry interface {
	List(ctx ctx.Ctx, id Id, seller domain.Address, price *uint256.Int) (event.Event, error)
	Delist(ctx ctx.Ctx, id Id, caller domain.Address) (event.Event, error)
	Update(ctx ctx.Ctx, id Id, price *uint256.Int) (event.Event, error)
	// Remove clears a listing after a sale and returns what was removed
	Remove(ctx ctx.Ctx, id Id) (*Listing, error)
	Get(ctx ctx.Ctx, id Id) (*Listing, error)
	Count(ctx ctx.Ctx) (uint64, error)
}
