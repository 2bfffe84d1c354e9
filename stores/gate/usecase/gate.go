package usecase

import (
	"errors"
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/gate"
)

type impl struct {
	repo gate.Repo
}

func New(repo gate.Repo) gate.Gate {
	return &impl{repo}
}

func (im *impl) Init(c ctx.Ctx, cfg gate.Config) (bool, error) {
	if _, err := im.repo.Get(c); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithField("err", err).Error("repo.Get failed")
		return false, err
	}

	if cfg.Owner.IsEmpty() {
		return false, domain.NewError(domain.CodeZeroAddressOwner)
	}
	if cfg.WithdrawalPeriod < 0 {
		return false, xerrors.Errorf("negative withdrawal period %s: %w", cfg.WithdrawalPeriod, domain.ErrBadParamInput)
	}

	init := &gate.Config{
		Owner:            cfg.Owner.ToLower(),
		ListingFee:       new(uint256.Int).Set(domain.AmountOrZero(cfg.ListingFee)),
		WithdrawalPeriod: cfg.WithdrawalPeriod,
	}
	if err := im.repo.Put(c, init); err != nil {
		c.WithField("err", err).Error("repo.Put failed")
		return false, err
	}
	return true, nil
}

func (im *impl) Config(c ctx.Ctx) (*gate.Config, error) {
	cfg, err := im.repo.Get(c)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.WithField("err", err).Error("repo.Get failed")
		}
		return nil, err
	}
	cfg.ListingFee = domain.AmountOrZero(cfg.ListingFee)
	return cfg, nil
}

func (im *impl) RequireActive(c ctx.Ctx) error {
	cfg, err := im.Config(c)
	if err != nil {
		return err
	}
	if cfg.Paused {
		return domain.NewError(domain.CodePaused)
	}
	return nil
}

func checkOwner(cfg *gate.Config, caller domain.Address) error {
	if !cfg.HasOwner() || !cfg.Owner.Equals(caller) {
		return domain.NewError(domain.CodeCallerNotOwner).WithAccount(caller.ToLower())
	}
	return nil
}

func (im *impl) RequireOwner(c ctx.Ctx, caller domain.Address) error {
	cfg, err := im.Config(c)
	if err != nil {
		return err
	}
	return checkOwner(cfg, caller)
}

// mutate runs fn on the configuration after the owner check and saves the result
func (im *impl) mutate(c ctx.Ctx, caller domain.Address, fn func(cfg *gate.Config) (event.Event, error)) (event.Event, error) {
	cfg, err := im.Config(c)
	if err != nil {
		return event.Event{}, err
	}
	if err := checkOwner(cfg, caller); err != nil {
		return event.Event{}, err
	}

	ev, err := fn(cfg)
	if err != nil {
		return event.Event{}, err
	}
	if err := im.repo.Put(c, cfg); err != nil {
		c.WithFields(log.Fields{"err": err, "event": ev.Name}).Error("repo.Put failed")
		return event.Event{}, err
	}
	return ev, nil
}

func (im *impl) Pause(c ctx.Ctx, caller domain.Address) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		if cfg.Paused {
			return event.Event{}, domain.NewError(domain.CodePaused)
		}
		cfg.Paused = true
		return event.Paused(caller.ToLower()), nil
	})
}

func (im *impl) Unpause(c ctx.Ctx, caller domain.Address) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		if !cfg.Paused {
			return event.Event{}, domain.NewError(domain.CodeNotPaused)
		}
		cfg.Paused = false
		return event.Unpaused(caller.ToLower()), nil
	})
}

func (im *impl) TransferOwnership(c ctx.Ctx, caller, newOwner domain.Address) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		if newOwner.IsEmpty() {
			return event.Event{}, domain.NewError(domain.CodeZeroAddressOwner)
		}
		prev := cfg.Owner
		cfg.Owner = newOwner.ToLower()
		return event.OwnershipTransferred(prev, cfg.Owner), nil
	})
}

func (im *impl) RenounceOwnership(c ctx.Ctx, caller domain.Address) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		prev := cfg.Owner
		cfg.Owner = domain.EmptyAddress
		return event.OwnershipTransferred(prev, domain.EmptyAddress), nil
	})
}

func (im *impl) SetListingFee(c ctx.Ctx, caller domain.Address, fee *uint256.Int) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		cfg.ListingFee = new(uint256.Int).Set(domain.AmountOrZero(fee))
		return event.ListingFeeSet(cfg.ListingFee), nil
	})
}

func (im *impl) SetWithdrawalPeriod(c ctx.Ctx, caller domain.Address, period time.Duration) (event.Event, error) {
	return im.mutate(c, caller, func(cfg *gate.Config) (event.Event, error) {
		if period < 0 {
			return event.Event{}, xerrors.Errorf("negative withdrawal period %s: %w", period, domain.ErrUnrecognized)
		}
		cfg.WithdrawalPeriod = period
		return event.WithdrawalPeriodSet(period), nil
	})
}
