package asset

import (
	"fmt"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
)

var (
	// ErrUnknownCollection is returned for a collection which is not an asset contract
	ErrUnknownCollection = fmt.Errorf("unknown collection: %w", domain.ErrUnrecognized)
	ErrUnknownToken      = fmt.Errorf("unknown token: %w", domain.ErrNotFound)
	ErrTokenExists       = fmt.Errorf("token already minted: %w", domain.ErrConflict)
	ErrNotAuthorized     = fmt.Errorf("caller is not token owner nor approved: %w", domain.ErrAuthorization)
	ErrWrongFrom         = fmt.Errorf("transfer from incorrect owner: %w", domain.ErrAuthorization)
	ErrZeroReceiver      = fmt.Errorf("transfer to the zero address: %w", domain.ErrValidation)
)

// Oracle answers custody questions. Answers are never cached by callers.
type Oracle interface {
	OwnerOf(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
	IsApprovedOperator(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error)
}

// Custodian moves an asset on behalf of an approved operator
type Custodian interface {
	Transfer(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator, from, to domain.Address) error
}

// Registry is an ERC-721 style book of assets
type Registry interface {
	Oracle
	Custodian

	Mint(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId, to domain.Address) error
	Approve(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId, caller, approved domain.Address) error
	SetApprovalForAll(ctx ctx.Ctx, collection domain.Address, caller, operator domain.Address, approved bool) error
	GetApproved(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
}

// Token is the stored custody state of one asset
type Token struct {
	Collection domain.Address
	TokenId    domain.TokenId
	Owner      domain.Address
	// Approved is the single token operator, empty when none
	Approved domain.Address
}

// Repo persists the asset book. Methods join the transaction of the store
// which handed the repo out.
type Repo interface {
	HasCollection(ctx ctx.Ctx, collection domain.Address) (bool, error)
	AddCollection(ctx ctx.Ctx, collection domain.Address) error
	// FindToken returns domain.ErrNotFound for a token never minted
	FindToken(ctx ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*Token, error)
	UpsertToken(ctx ctx.Ctx, token *Token) error
	IsOperator(ctx ctx.Ctx, collection domain.Address, owner, operator domain.Address) (bool, error)
	SetOperator(ctx ctx.Ctx, collection domain.Address, owner, operator domain.Address, approved bool) error
}
