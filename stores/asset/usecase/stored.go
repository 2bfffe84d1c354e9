package usecase

import (
	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/marketplace"
)

type stored struct {
	store marketplace.Store
}

// NewStored returns a registry running every call in its own transaction of
// store. It must not be used from inside another transaction of the same
// store.
func NewStored(store marketplace.Store) asset.Registry {
	return &stored{store}
}

func (s *stored) update(c ctx.Ctx, fn func(c ctx.Ctx, r asset.Registry) error) error {
	return s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return fn(c, New(tx.Assets()))
	})
}

func (s *stored) view(c ctx.Ctx, fn func(c ctx.Ctx, r asset.Registry) error) error {
	return s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return fn(c, New(tx.Assets()))
	})
}

func (s *stored) Mint(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, to domain.Address) error {
	return s.update(c, func(c ctx.Ctx, r asset.Registry) error {
		return r.Mint(c, collection, tokenId, to)
	})
}

func (s *stored) OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	var owner domain.Address
	err := s.view(c, func(c ctx.Ctx, r asset.Registry) (err error) {
		owner, err = r.OwnerOf(c, collection, tokenId)
		return err
	})
	return owner, err
}

func (s *stored) IsApprovedOperator(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error) {
	var ok bool
	err := s.view(c, func(c ctx.Ctx, r asset.Registry) (err error) {
		ok, err = r.IsApprovedOperator(c, collection, tokenId, operator)
		return err
	})
	return ok, err
}

func (s *stored) GetApproved(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	var approved domain.Address
	err := s.view(c, func(c ctx.Ctx, r asset.Registry) (err error) {
		approved, err = r.GetApproved(c, collection, tokenId)
		return err
	})
	return approved, err
}

func (s *stored) Approve(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, caller, approved domain.Address) error {
	return s.update(c, func(c ctx.Ctx, r asset.Registry) error {
		return r.Approve(c, collection, tokenId, caller, approved)
	})
}

func (s *stored) SetApprovalForAll(c ctx.Ctx, collection domain.Address, caller, operator domain.Address, approved bool) error {
	return s.update(c, func(c ctx.Ctx, r asset.Registry) error {
		return r.SetApprovalForAll(c, collection, caller, operator, approved)
	})
}

func (s *stored) Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator, from, to domain.Address) error {
	return s.update(c, func(c ctx.Ctx, r asset.Registry) error {
		return r.Transfer(c, collection, tokenId, operator, from, to)
	})
}
