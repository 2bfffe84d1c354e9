package payment

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
)

var ErrInsufficientFunds = fmt.Errorf("insufficient funds: %w", domain.ErrValidation)

// Transferrer moves value between accounts
type Transferrer interface {
	Transfer(ctx ctx.Ctx, from, to domain.Address, amount *uint256.Int) error
}

// Wallet is a book of account balances
type Wallet interface {
	Transferrer

	Deposit(ctx ctx.Ctx, account domain.Address, amount *uint256.Int) error
	BalanceOf(ctx ctx.Ctx, account domain.Address) (*uint256.Int, error)
}

// Repo persists account balances. An account never written has a zero
// balance.
type Repo interface {
	BalanceOf(ctx ctx.Ctx, account domain.Address) (*uint256.Int, error)
	Put(ctx ctx.Ctx, account domain.Address, balance *uint256.Int) error
}
