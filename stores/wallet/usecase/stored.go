package usecase

import (
	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/domain/payment"
)

type stored struct {
	store marketplace.Store
}

// NewStored returns a wallet running every call in its own transaction of
// store
func NewStored(store marketplace.Store) payment.Wallet {
	return &stored{store}
}

func (s *stored) Deposit(c ctx.Ctx, account domain.Address, amount *uint256.Int) error {
	return s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return New(tx.Wallet()).Deposit(c, account, amount)
	})
}

func (s *stored) BalanceOf(c ctx.Ctx, account domain.Address) (*uint256.Int, error) {
	var balance *uint256.Int
	err := s.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) (err error) {
		balance, err = New(tx.Wallet()).BalanceOf(c, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *stored) Transfer(c ctx.Ctx, from, to domain.Address, amount *uint256.Int) error {
	return s.store.Update(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		return New(tx.Wallet()).Transfer(c, from, to, amount)
	})
}
