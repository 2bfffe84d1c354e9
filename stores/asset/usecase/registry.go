package usecase

import (
	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
)

type impl struct {
	repo asset.Repo
}

// New returns the asset registry over repo. A collection comes to exist with
// its first minted token.
func New(repo asset.Repo) asset.Registry {
	return &impl{repo}
}

func (im *impl) token(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*asset.Token, error) {
	ok, err := im.repo.HasCollection(c, collection)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, asset.ErrUnknownCollection
	}
	t, err := im.repo.FindToken(c, collection, tokenId)
	if err == domain.ErrNotFound {
		return nil, asset.ErrUnknownToken
	} else if err != nil {
		return nil, err
	}
	return t, nil
}

func (im *impl) isApprovedForAll(c ctx.Ctx, collection, owner, operator domain.Address) (bool, error) {
	return im.repo.IsOperator(c, collection, owner, operator)
}

func (im *impl) Mint(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, to domain.Address) error {
	if to.IsEmpty() {
		return asset.ErrZeroReceiver
	}
	if _, err := im.repo.FindToken(c, collection, tokenId); err == nil {
		return asset.ErrTokenExists
	} else if err != domain.ErrNotFound {
		return err
	}
	if err := im.repo.AddCollection(c, collection); err != nil {
		return err
	}
	return im.repo.UpsertToken(c, &asset.Token{
		Collection: collection.ToLower(),
		TokenId:    tokenId,
		Owner:      to.ToLower(),
	})
}

func (im *impl) OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	t, err := im.token(c, collection, tokenId)
	if err != nil {
		return "", err
	}
	return t.Owner, nil
}

func (im *impl) IsApprovedOperator(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error) {
	t, err := im.token(c, collection, tokenId)
	if err != nil {
		return false, err
	}
	if t.Approved.Equals(operator) && !operator.IsEmpty() {
		return true, nil
	}
	return im.isApprovedForAll(c, collection, t.Owner, operator)
}

func (im *impl) GetApproved(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	t, err := im.token(c, collection, tokenId)
	if err != nil {
		return "", err
	}
	if t.Approved.IsEmpty() {
		return domain.EmptyAddress, nil
	}
	return t.Approved, nil
}

func (im *impl) Approve(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, caller, approved domain.Address) error {
	t, err := im.token(c, collection, tokenId)
	if err != nil {
		return err
	}
	if !t.Owner.Equals(caller) {
		ok, err := im.isApprovedForAll(c, collection, t.Owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return asset.ErrNotAuthorized
		}
	}
	t.Approved = ""
	if !approved.IsEmpty() {
		t.Approved = approved.ToLower()
	}
	return im.repo.UpsertToken(c, t)
}

func (im *impl) SetApprovalForAll(c ctx.Ctx, collection domain.Address, caller, operator domain.Address, approved bool) error {
	ok, err := im.repo.HasCollection(c, collection)
	if err != nil {
		return err
	}
	if !ok {
		return asset.ErrUnknownCollection
	}
	return im.repo.SetOperator(c, collection, caller, operator, approved)
}

func (im *impl) Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator, from, to domain.Address) error {
	t, err := im.token(c, collection, tokenId)
	if err != nil {
		return err
	}
	allowed := t.Owner.Equals(operator) || (!t.Approved.IsEmpty() && t.Approved.Equals(operator))
	if !allowed {
		if allowed, err = im.isApprovedForAll(c, collection, t.Owner, operator); err != nil {
			return err
		}
	}
	if !allowed {
		return asset.ErrNotAuthorized
	}
	if !t.Owner.Equals(from) {
		return asset.ErrWrongFrom
	}
	if to.IsEmpty() {
		return asset.ErrZeroReceiver
	}

	// the single token approval does not survive a transfer
	t.Approved = ""
	t.Owner = to.ToLower()
	return im.repo.UpsertToken(c, t)
}
