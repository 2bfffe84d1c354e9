package usecase

import (
	"errors"
	"time"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/payment"
)

type impl struct {
	repo   escrow.Repo
	wallet payment.Transferrer
	vault  domain.Address
}

// New returns a ledger paying withdrawals out of vault through wallet
func New(repo escrow.Repo, wallet payment.Transferrer, vault domain.Address) escrow.Ledger {
	return &impl{
		repo:   repo,
		wallet: wallet,
		vault:  vault.ToLower(),
	}
}

func (im *impl) find(c ctx.Ctx, payee domain.Address) (*escrow.Balance, error) {
	b, err := im.repo.FindOne(c, payee)
	if errors.Is(err, domain.ErrNotFound) {
		return escrow.Empty(payee), nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "payee": payee}).Error("repo.FindOne failed")
		return nil, err
	}
	return b, nil
}

func (im *impl) add(c ctx.Ctx, payee domain.Address, amount *uint256.Int, unlockAt *time.Time) error {
	payee = payee.ToLower()
	b, err := im.find(c, payee)
	if err != nil {
		return err
	}

	sum, err := domain.AddAmount(b.Pending, amount)
	if err != nil {
		c.WithFields(log.Fields{"payee": payee, "pending": b.Pending, "amount": amount}).Warn("escrow balance overflow")
		return domain.NewError(domain.CodeOverflow).WithAccount(payee).WithValue(amount)
	}

	b.Pending = sum
	if unlockAt != nil {
		b.UnlockAt = *unlockAt
	}
	if err := im.repo.Upsert(c, b); err != nil {
		c.WithFields(log.Fields{"err": err, "payee": payee}).Error("repo.Upsert failed")
		return err
	}
	return nil
}

func (im *impl) Credit(c ctx.Ctx, payee domain.Address, amount *uint256.Int, waitPeriod time.Duration, now time.Time) error {
	unlockAt := now.Add(waitPeriod)
	return im.add(c, payee, amount, &unlockAt)
}

func (im *impl) Deposit(c ctx.Ctx, payee domain.Address, amount *uint256.Int) error {
	return im.add(c, payee, amount, nil)
}

func (im *impl) Withdraw(c ctx.Ctx, payee domain.Address, now time.Time) (*uint256.Int, *event.Event, error) {
	payee = payee.ToLower()
	b, err := im.find(c, payee)
	if err != nil {
		return nil, nil, err
	}

	if domain.IsZeroAmount(b.Pending) {
		return domain.Zero(), nil, nil
	}
	if now.Before(b.UnlockAt) {
		return nil, nil, domain.NewError(domain.CodeWithdrawalTooEarly).WithAccount(payee).WithTimes(now, b.UnlockAt)
	}

	amount := b.Pending
	b.Pending = domain.Zero()
	if err := im.repo.Upsert(c, b); err != nil {
		c.WithFields(log.Fields{"err": err, "payee": payee}).Error("repo.Upsert failed")
		return nil, nil, err
	}

	if err := im.wallet.Transfer(c, im.vault, payee, amount); err != nil {
		c.WithFields(log.Fields{"err": err, "payee": payee, "amount": amount}).Error("wallet.Transfer failed")
		return nil, nil, err
	}

	ev := event.PaymentsWithdrawn(payee, amount)
	return amount, &ev, nil
}

func (im *impl) BalanceOf(c ctx.Ctx, payee domain.Address) (*uint256.Int, error) {
	b, err := im.find(c, payee.ToLower())
	if err != nil {
		return nil, err
	}
	return domain.AmountOrZero(b.Pending), nil
}

func (im *impl) UnlockAt(c ctx.Ctx, payee domain.Address) (time.Time, error) {
	b, err := im.find(c, payee.ToLower())
	if err != nil {
		return time.Time{}, err
	}
	return b.UnlockAt, nil
}
