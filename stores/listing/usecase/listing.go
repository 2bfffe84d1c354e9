package usecase

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/listing"
)

type impl struct {
	repo listing.Repo
}

// New binds a registry to a repo, usually the one of the current store transaction
func New(repo listing.Repo) listing.Registry {
	return &impl{repo}
}

func (im *impl) find(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	l, err := im.repo.FindOne(c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return listing.Empty(id), nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.FindOne failed")
		return nil, err
	}
	return l, nil
}

func (im *impl) List(c ctx.Ctx, id listing.Id, seller domain.Address, price *uint256.Int) (event.Event, error) {
	cur, err := im.find(c, id)
	if err != nil {
		return event.Event{}, err
	}
	if cur.IsActive() {
		return event.Event{}, domain.NewError(domain.CodeAlreadyListed).WithKey(id.Collection, id.TokenId)
	}
	if domain.IsZeroAmount(price) {
		return event.Event{}, domain.NewError(domain.CodePriceNotPositive).WithKey(id.Collection, id.TokenId).WithValue(domain.Zero())
	}

	l := &listing.Listing{
		Id:     id,
		Price:  new(uint256.Int).Set(price),
		Seller: seller.ToLower(),
	}
	if err := im.repo.Insert(c, l); err != nil {
		c.WithFields(log.Fields{"err": err, "listing": l}).Error("repo.Insert failed")
		return event.Event{}, err
	}
	return event.TokenListed(l.Seller, id.Collection, id.TokenId, l.Price), nil
}

func (im *impl) Delist(c ctx.Ctx, id listing.Id, caller domain.Address) (event.Event, error) {
	if _, err := im.Remove(c, id); err != nil {
		return event.Event{}, err
	}
	return event.TokenDelisted(caller.ToLower(), id.Collection, id.TokenId), nil
}

func (im *impl) Update(c ctx.Ctx, id listing.Id, price *uint256.Int) (event.Event, error) {
	cur, err := im.find(c, id)
	if err != nil {
		return event.Event{}, err
	}
	if !cur.IsActive() {
		return event.Event{}, domain.NewError(domain.CodeNotListed).WithKey(id.Collection, id.TokenId)
	}
	if domain.IsZeroAmount(price) {
		return event.Event{}, domain.NewError(domain.CodePriceNotPositive).WithKey(id.Collection, id.TokenId).WithValue(domain.Zero())
	}

	cur.Price = new(uint256.Int).Set(price)
	if err := im.repo.Update(c, cur); err != nil {
		c.WithFields(log.Fields{"err": err, "listing": cur}).Error("repo.Update failed")
		return event.Event{}, err
	}
	return event.TokenListed(cur.Seller, id.Collection, id.TokenId, cur.Price), nil
}

func (im *impl) Remove(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	cur, err := im.find(c, id)
	if err != nil {
		return nil, err
	}
	if !cur.IsActive() {
		return nil, domain.NewError(domain.CodeNotListed).WithKey(id.Collection, id.TokenId)
	}
	if err := im.repo.Remove(c, id); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("repo.Remove failed")
		return nil, err
	}
	return cur, nil
}

func (im *impl) Get(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	return im.find(c, id)
}

func (im *impl) Count(c ctx.Ctx) (uint64, error) {
	n, err := im.repo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("repo.Count failed")
		return 0, err
	}
	return n, nil
}
