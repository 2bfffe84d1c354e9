package usecase

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/base/metrics"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/asset"
	"github.com/x-xyz/marketledger/domain/escrow"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/domain/gate"
	"github.com/x-xyz/marketledger/domain/listing"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/domain/payment"
	assetUC "github.com/x-xyz/marketledger/stores/asset/usecase"
	escrowUC "github.com/x-xyz/marketledger/stores/escrow/usecase"
	gateUC "github.com/x-xyz/marketledger/stores/gate/usecase"
	listingUC "github.com/x-xyz/marketledger/stores/listing/usecase"
	walletUC "github.com/x-xyz/marketledger/stores/wallet/usecase"
)

// opKey marks a ctx which is already inside a marketplace operation
const opKey = "marketplace.op"

type Config struct {
	// Address is the marketplace identity: asset operator and holder of
	// escrowed funds
	Address domain.Address
	// Store holds listings, escrow, configuration, assets and wallets. One
	// operation is one transaction of it.
	Store marketplace.Store
	// Assets binds the asset registry to a transaction, nil means the
	// stored asset book
	Assets    func(repo asset.Repo) asset.Registry
	Publisher event.Publisher
	Clock     clock.Clock
	Metrics   metrics.Service
}

type impl struct {
	// sem serialises every mutating operation, it is a channel so that a
	// waiting caller can give up with its ctx
	sem chan struct{}

	address   domain.Address
	store     marketplace.Store
	assets    func(repo asset.Repo) asset.Registry
	publisher event.Publisher
	clock     clock.Clock
	metrics   metrics.Service
}

func New(cfg *Config) marketplace.UseCase {
	im := &impl{
		sem:       make(chan struct{}, 1),
		address:   cfg.Address.ToLower(),
		store:     cfg.Store,
		assets:    cfg.Assets,
		publisher: cfg.Publisher,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
	}
	if im.assets == nil {
		im.assets = assetUC.New
	}
	if im.clock == nil {
		im.clock = clock.New()
	}
	if im.metrics == nil {
		im.metrics = metrics.Nop()
	}
	return im
}

func (im *impl) Address() domain.Address {
	return im.address
}

// session is the state of one operation attempt inside a store transaction
type session struct {
	now      time.Time
	listings listing.Registry
	ledger   escrow.Ledger
	gate     gate.Gate
	assets   asset.Registry
	wallet   payment.Wallet
	events   []event.Event
}

func (s *session) emit(ev event.Event) {
	s.events = append(s.events, ev)
}

// run executes fn as one atomic marketplace operation
func (im *impl) run(c ctx.Ctx, op string, tx marketplace.Tx, payable bool, fn func(c ctx.Ctx, s *session) error) error {
	if cur := c.Value(opKey); cur != nil {
		c.WithFields(log.Fields{"op": op, "running": cur}).Warn("reentrant call rejected")
		im.metrics.BumpSum(op+".err", 1)
		return domain.NewError(domain.CodeReentrantCall).WithAccount(tx.From.ToLower())
	}
	c = ctx.WithValue(c, opKey, op)
	c = ctx.WithFields(c, log.Fields{"caller": tx.From, "value": domain.AmountString(tx.Value)})
	defer im.metrics.BumpTime(op + ".time").End()

	if !payable && !domain.IsZeroAmount(tx.Value) {
		return im.fail(c, op, xerrors.Errorf("%s does not accept value: %w", op, domain.ErrUnrecognized))
	}

	// a caller which dropped the marker and waits on the running
	// operation is only released by its own deadline
	select {
	case im.sem <- struct{}{}:
	case <-c.Done():
		return im.fail(c, op, xerrors.Errorf("%s waiting for a running operation: %w", op, c.Err()))
	}
	defer func() { <-im.sem }()

	now := im.clock.Now()
	var s *session
	err := im.store.Update(c, func(c ctx.Ctx, stx marketplace.StateTx) error {
		wallet := walletUC.New(stx.Wallet())
		s = &session{
			now:      now,
			listings: listingUC.New(stx.Listings()),
			ledger:   escrowUC.New(stx.Escrow(), wallet, im.address),
			gate:     gateUC.New(stx.Config()),
			assets:   im.assets(stx.Assets()),
			wallet:   wallet,
		}
		return fn(c, s)
	})
	if err != nil {
		return im.fail(c, op, err)
	}

	for i := range s.events {
		s.events[i].At = now
	}
	if len(s.events) > 0 && im.publisher != nil {
		if err := im.publisher.Publish(c, s.events...); err != nil {
			// state is committed, a lost notification does not fail the call
			c.WithField("err", err).Error("publisher.Publish failed")
		}
	}
	im.metrics.BumpSum(op+".ok", 1)
	return nil
}

func (im *impl) fail(c ctx.Ctx, op string, err error) error {
	im.metrics.BumpSum(op+".err", 1)
	if errors.Is(err, domain.ErrUnrecognized) {
		c.WithFields(log.Fields{"op": op, "err": err}).Info("call reverted")
		return domain.ErrUnrecognized
	}
	var e *domain.Error
	if errors.As(err, &e) {
		c.WithFields(log.Fields{"op": op, "err": err}).Info("call rejected")
	} else {
		c.WithFields(log.Fields{"op": op, "err": err}).Error("call failed")
	}
	return err
}

// activeConfig returns the configuration of an unpaused marketplace
func (im *impl) activeConfig(c ctx.Ctx, s *session) (*gate.Config, error) {
	cfg, err := s.gate.Config(c)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, domain.NewError(domain.CodePaused)
	}
	return cfg, nil
}

func (im *impl) ownerOf(c ctx.Ctx, s *session, id listing.Id) (domain.Address, error) {
	owner, err := s.assets.OwnerOf(c, id.Collection, id.TokenId)
	if errors.Is(err, asset.ErrUnknownToken) {
		return domain.EmptyAddress, nil
	} else if err != nil {
		return "", err
	}
	return owner, nil
}

func (im *impl) requireOwnerOf(c ctx.Ctx, s *session, id listing.Id, caller domain.Address) error {
	owner, err := im.ownerOf(c, s, id)
	if err != nil {
		return err
	}
	if owner.IsEmpty() || !owner.Equals(caller) {
		return domain.NewError(domain.CodeNotOwner).WithAccount(caller.ToLower())
	}
	return nil
}

func (im *impl) requireApproved(c ctx.Ctx, s *session, id listing.Id) error {
	ok, err := s.assets.IsApprovedOperator(c, id.Collection, id.TokenId, im.address)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewError(domain.CodeNotApprovedOperator).WithKey(id.Collection, id.TokenId)
	}
	return nil
}

func newId(collection domain.Address, tokenId domain.TokenId) listing.Id {
	return listing.Id{Collection: collection.ToLower(), TokenId: tokenId}
}

func (im *impl) ListToken(c ctx.Ctx, tx marketplace.Tx, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) error {
	id := newId(collection, tokenId)
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId, "price": domain.AmountString(price)})
	return im.run(c, marketplace.MethodListToken, tx, true, func(c ctx.Ctx, s *session) error {
		cfg, err := im.activeConfig(c, s)
		if err != nil {
			return err
		}
		if err := im.requireOwnerOf(c, s, id, tx.From); err != nil {
			return err
		}
		if err := im.requireApproved(c, s, id); err != nil {
			return err
		}

		ev, err := s.listings.List(c, id, tx.From, price)
		if err != nil {
			return err
		}

		value := domain.AmountOrZero(tx.Value)
		if !value.Eq(domain.AmountOrZero(cfg.ListingFee)) {
			return domain.NewError(domain.CodeInvalidListingFee).WithKey(id.Collection, id.TokenId).WithValue(value)
		}
		if !value.IsZero() {
			if err := s.wallet.Transfer(c, tx.From.ToLower(), im.address, value); err != nil {
				return err
			}
			feeTo := cfg.Owner
			if !cfg.HasOwner() {
				feeTo = domain.EmptyAddress
			}
			if err := s.ledger.Deposit(c, feeTo, value); err != nil {
				return err
			}
		}

		s.emit(ev)
		return nil
	})
}

func (im *impl) DelistToken(c ctx.Ctx, tx marketplace.Tx, collection domain.Address, tokenId domain.TokenId) error {
	id := newId(collection, tokenId)
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId})
	return im.run(c, marketplace.MethodDelistToken, tx, false, func(c ctx.Ctx, s *session) error {
		if _, err := im.activeConfig(c, s); err != nil {
			return err
		}
		if err := im.requireOwnerOf(c, s, id, tx.From); err != nil {
			return err
		}

		ev, err := s.listings.Delist(c, id, tx.From)
		if err != nil {
			return err
		}
		s.emit(ev)
		return nil
	})
}

func (im *impl) UpdateListing(c ctx.Ctx, tx marketplace.Tx, collection domain.Address, tokenId domain.TokenId, price *uint256.Int) error {
	id := newId(collection, tokenId)
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId, "price": domain.AmountString(price)})
	return im.run(c, marketplace.MethodUpdateListing, tx, false, func(c ctx.Ctx, s *session) error {
		if _, err := im.activeConfig(c, s); err != nil {
			return err
		}
		if err := im.requireOwnerOf(c, s, id, tx.From); err != nil {
			return err
		}

		ev, err := s.listings.Update(c, id, price)
		if err != nil {
			return err
		}
		s.emit(ev)
		return nil
	})
}

func (im *impl) BuyToken(c ctx.Ctx, tx marketplace.Tx, collection domain.Address, tokenId domain.TokenId) error {
	id := newId(collection, tokenId)
	buyer := tx.From.ToLower()
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId})
	return im.run(c, marketplace.MethodBuyToken, tx, true, func(c ctx.Ctx, s *session) error {
		cfg, err := im.activeConfig(c, s)
		if err != nil {
			return err
		}

		cur, err := s.listings.Get(c, id)
		if err != nil {
			return err
		}
		if !cur.IsActive() {
			return domain.NewError(domain.CodeNotListed).WithKey(id.Collection, id.TokenId)
		}

		owner, err := im.ownerOf(c, s, id)
		if err != nil {
			return err
		}
		if owner.Equals(buyer) {
			return domain.NewError(domain.CodePurchaseForbidden).WithAccount(buyer)
		}
		// a listing whose seller gave the asset away is stale
		if !owner.Equals(cur.Seller) {
			return domain.NewError(domain.CodeNotApprovedOperator).WithKey(id.Collection, id.TokenId)
		}
		if err := im.requireApproved(c, s, id); err != nil {
			return err
		}

		value := domain.AmountOrZero(tx.Value)
		if !value.Eq(cur.Price) {
			return domain.NewError(domain.CodePriceMismatched).WithKey(id.Collection, id.TokenId).WithValue(value)
		}

		sold, err := s.listings.Remove(c, id)
		if err != nil {
			return err
		}
		if err := s.ledger.Credit(c, sold.Seller, sold.Price, cfg.WithdrawalPeriod, s.now); err != nil {
			return err
		}
		if err := s.wallet.Transfer(c, buyer, im.address, value); err != nil {
			return err
		}

		if err := s.assets.Transfer(c, id.Collection, id.TokenId, im.address, sold.Seller, buyer); err != nil {
			c.WithFields(log.Fields{"err": err, "seller": sold.Seller, "buyer": buyer}).Warn("assets.Transfer failed")
			return err
		}

		s.emit(event.TokenBought(buyer, id.Collection, id.TokenId, sold.Price))
		return nil
	})
}

func (im *impl) WithdrawPayments(c ctx.Ctx, tx marketplace.Tx, payee domain.Address) (*uint256.Int, error) {
	payee = payee.ToLower()
	c = ctx.WithFields(c, log.Fields{"payee": payee})
	var amount *uint256.Int
	err := im.run(c, marketplace.MethodWithdrawPayments, tx, false, func(c ctx.Ctx, s *session) error {
		cfg, err := im.activeConfig(c, s)
		if err != nil {
			return err
		}
		if !tx.From.Equals(payee) && !(cfg.HasOwner() && cfg.Owner.Equals(tx.From)) {
			return domain.NewError(domain.CodeWithdrawalForbidden).WithAccount(payee)
		}

		paid, ev, err := s.ledger.Withdraw(c, payee, s.now)
		if err != nil {
			return err
		}
		if ev != nil {
			s.emit(*ev)
		}
		amount = paid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// admin runs a configuration change of the gate as one operation
func (im *impl) admin(c ctx.Ctx, op string, tx marketplace.Tx, fn func(c ctx.Ctx, g gate.Gate) (event.Event, error)) error {
	return im.run(c, op, tx, false, func(c ctx.Ctx, s *session) error {
		ev, err := fn(c, s.gate)
		if err != nil {
			return err
		}
		s.emit(ev)
		return nil
	})
}

func (im *impl) Pause(c ctx.Ctx, tx marketplace.Tx) error {
	return im.admin(c, marketplace.MethodPause, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.Pause(c, tx.From)
	})
}

func (im *impl) Unpause(c ctx.Ctx, tx marketplace.Tx) error {
	return im.admin(c, marketplace.MethodUnpause, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.Unpause(c, tx.From)
	})
}

func (im *impl) TransferOwnership(c ctx.Ctx, tx marketplace.Tx, newOwner domain.Address) error {
	return im.admin(c, marketplace.MethodTransferOwnership, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.TransferOwnership(c, tx.From, newOwner)
	})
}

func (im *impl) RenounceOwnership(c ctx.Ctx, tx marketplace.Tx) error {
	return im.admin(c, marketplace.MethodRenounceOwnership, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.RenounceOwnership(c, tx.From)
	})
}

func (im *impl) SetListingFee(c ctx.Ctx, tx marketplace.Tx, fee *uint256.Int) error {
	return im.admin(c, marketplace.MethodSetListingFee, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.SetListingFee(c, tx.From, fee)
	})
}

func (im *impl) SetWithdrawalPeriod(c ctx.Ctx, tx marketplace.Tx, period time.Duration) error {
	return im.admin(c, marketplace.MethodSetWithdrawalPeriod, tx, func(c ctx.Ctx, g gate.Gate) (event.Event, error) {
		return g.SetWithdrawalPeriod(c, tx.From, period)
	})
}

func (im *impl) Fallback(c ctx.Ctx, tx marketplace.Tx) error {
	im.metrics.BumpSum("fallback.err", 1)
	c.WithFields(log.Fields{"caller": tx.From, "value": domain.AmountString(tx.Value)}).Info("call reverted")
	return domain.ErrUnrecognized
}

// view runs fn on a read only transaction, queries take no lock
func (im *impl) view(c ctx.Ctx, fn func(c ctx.Ctx, s *session) error) error {
	return im.store.View(c, func(c ctx.Ctx, stx marketplace.StateTx) error {
		return fn(c, &session{
			listings: listingUC.New(stx.Listings()),
			ledger:   escrowUC.New(stx.Escrow(), nil, im.address),
			gate:     gateUC.New(stx.Config()),
		})
	})
}

func (im *impl) GetListing(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (*listing.Listing, error) {
	var res *listing.Listing
	err := im.view(c, func(c ctx.Ctx, s *session) error {
		l, err := s.listings.Get(c, newId(collection, tokenId))
		res = l
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) ListingCount(c ctx.Ctx) (uint64, error) {
	var n uint64
	err := im.view(c, func(c ctx.Ctx, s *session) error {
		count, err := s.listings.Count(c)
		n = count
		return err
	})
	return n, err
}

func (im *impl) Payments(c ctx.Ctx, payee domain.Address) (*uint256.Int, error) {
	var res *uint256.Int
	err := im.view(c, func(c ctx.Ctx, s *session) error {
		v, err := s.ledger.BalanceOf(c, payee)
		res = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *impl) PaymentDate(c ctx.Ctx, payee domain.Address) (time.Time, error) {
	var res time.Time
	err := im.view(c, func(c ctx.Ctx, s *session) error {
		t, err := s.ledger.UnlockAt(c, payee)
		res = t
		return err
	})
	return res, err
}

func (im *impl) Config(c ctx.Ctx) (*gate.Config, error) {
	var res *gate.Config
	err := im.view(c, func(c ctx.Ctx, s *session) error {
		cfg, err := s.gate.Config(c)
		res = cfg
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
