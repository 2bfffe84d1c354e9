package usecase

import (
	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/payment"
)

type impl struct {
	repo payment.Repo
}

// New returns the wallet over repo
func New(repo payment.Repo) payment.Wallet {
	return &impl{repo}
}

func (im *impl) Deposit(c ctx.Ctx, account domain.Address, amount *uint256.Int) error {
	cur, err := im.repo.BalanceOf(c, account)
	if err != nil {
		return err
	}
	sum, err := domain.AddAmount(cur, amount)
	if err != nil {
		return err
	}
	return im.repo.Put(c, account, sum)
}

func (im *impl) BalanceOf(c ctx.Ctx, account domain.Address) (*uint256.Int, error) {
	return im.repo.BalanceOf(c, account)
}

func (im *impl) Transfer(c ctx.Ctx, from, to domain.Address, amount *uint256.Int) error {
	if domain.IsZeroAmount(amount) {
		return nil
	}

	balance, err := im.repo.BalanceOf(c, from)
	if err != nil {
		return err
	}
	left, underflow := new(uint256.Int).SubOverflow(balance, amount)
	if underflow {
		c.WithFields(log.Fields{"from": from, "amount": amount}).Info("insufficient funds")
		return payment.ErrInsufficientFunds
	}
	if from.Equals(to) {
		return nil
	}
	dest, err := im.repo.BalanceOf(c, to)
	if err != nil {
		return err
	}
	sum, err := domain.AddAmount(dest, amount)
	if err != nil {
		return err
	}

	if err := im.repo.Put(c, from, left); err != nil {
		return err
	}
	return im.repo.Put(c, to, sum)
}
