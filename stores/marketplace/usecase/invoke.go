package usecase

import (
	"strconv"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/marketplace"
)

// handler serves one routed method, args are already counted
type handler struct {
	nargs int
	fn    func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error)
}

var handlers = map[string]handler{
	marketplace.MethodListToken: {3, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		coll, id, err := parseKey(args)
		if err != nil {
			return nil, err
		}
		price, err := domain.ParseAmount(args[2])
		if err != nil {
			return nil, err
		}
		return nil, im.ListToken(c, tx, coll, id, price)
	}},
	marketplace.MethodDelistToken: {2, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		coll, id, err := parseKey(args)
		if err != nil {
			return nil, err
		}
		return nil, im.DelistToken(c, tx, coll, id)
	}},
	marketplace.MethodUpdateListing: {3, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		coll, id, err := parseKey(args)
		if err != nil {
			return nil, err
		}
		price, err := domain.ParseAmount(args[2])
		if err != nil {
			return nil, err
		}
		return nil, im.UpdateListing(c, tx, coll, id, price)
	}},
	marketplace.MethodBuyToken: {2, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		coll, id, err := parseKey(args)
		if err != nil {
			return nil, err
		}
		return nil, im.BuyToken(c, tx, coll, id)
	}},
	marketplace.MethodWithdrawPayments: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		payee, err := domain.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		amount, err := im.WithdrawPayments(c, tx, payee)
		if err != nil {
			return nil, err
		}
		return amount.Dec(), nil
	}},
	marketplace.MethodPause: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		return nil, im.Pause(c, tx)
	}},
	marketplace.MethodUnpause: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		return nil, im.Unpause(c, tx)
	}},
	marketplace.MethodTransferOwnership: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		owner, err := domain.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		return nil, im.TransferOwnership(c, tx, owner)
	}},
	marketplace.MethodRenounceOwnership: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		return nil, im.RenounceOwnership(c, tx)
	}},
	marketplace.MethodSetListingFee: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		fee, err := domain.ParseAmount(args[0])
		if err != nil {
			return nil, err
		}
		return nil, im.SetListingFee(c, tx, fee)
	}},
	marketplace.MethodSetWithdrawalPeriod: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		period, err := ParsePeriod(args[0])
		if err != nil {
			return nil, err
		}
		return nil, im.SetWithdrawalPeriod(c, tx, period)
	}},
	marketplace.MethodGetListing: {2, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		coll, id, err := parseKey(args)
		if err != nil {
			return nil, err
		}
		l, err := im.GetListing(c, coll, id)
		if err != nil {
			return nil, err
		}
		return marketplace.NewListingView(l), nil
	}},
	marketplace.MethodListingCount: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		n, err := im.ListingCount(c)
		if err != nil {
			return nil, err
		}
		return strconv.FormatUint(n, 10), nil
	}},
	marketplace.MethodPayments: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		payee, err := domain.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		v, err := im.Payments(c, payee)
		if err != nil {
			return nil, err
		}
		return v.Dec(), nil
	}},
	marketplace.MethodPaymentDates: {1, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		payee, err := domain.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		t, err := im.PaymentDate(c, payee)
		if err != nil {
			return nil, err
		}
		return UnixSeconds(t), nil
	}},
	marketplace.MethodOwner: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		cfg, err := im.Config(c)
		if err != nil {
			return nil, err
		}
		return marketplace.NewConfigView(cfg).Owner, nil
	}},
	marketplace.MethodPaused: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		cfg, err := im.Config(c)
		if err != nil {
			return nil, err
		}
		return cfg.Paused, nil
	}},
	marketplace.MethodListingFee: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		cfg, err := im.Config(c)
		if err != nil {
			return nil, err
		}
		return domain.AmountString(cfg.ListingFee), nil
	}},
	marketplace.MethodWithdrawalWaitPeriod: {0, func(im *impl, c ctx.Ctx, tx marketplace.Tx, args []string) (interface{}, error) {
		cfg, err := im.Config(c)
		if err != nil {
			return nil, err
		}
		return marketplace.NewConfigView(cfg).WithdrawalWaitPeriod, nil
	}},
}

// mutating methods check attached value themselves
var mutating = map[string]bool{
	marketplace.MethodListToken:           true,
	marketplace.MethodDelistToken:         true,
	marketplace.MethodUpdateListing:       true,
	marketplace.MethodBuyToken:            true,
	marketplace.MethodWithdrawPayments:    true,
	marketplace.MethodPause:               true,
	marketplace.MethodUnpause:             true,
	marketplace.MethodTransferOwnership:   true,
	marketplace.MethodRenounceOwnership:   true,
	marketplace.MethodSetListingFee:       true,
	marketplace.MethodSetWithdrawalPeriod: true,
}

func parseKey(args []string) (domain.Address, domain.TokenId, error) {
	coll, err := domain.ParseAddress(args[0])
	if err != nil {
		return "", "", err
	}
	id, err := domain.ParseTokenId(args[1])
	if err != nil {
		return "", "", err
	}
	return coll, id, nil
}

const maxPeriodSecs = int64((1<<63 - 1) / time.Second)

// ParsePeriod reads a withdrawal wait period given in whole seconds
func ParsePeriod(s string) (time.Duration, error) {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs > maxPeriodSecs || secs < -maxPeriodSecs {
		return 0, xerrors.Errorf("invalid period %q: %w", s, domain.ErrBadParamInput)
	}
	return time.Duration(secs) * time.Second, nil
}

// UnixSeconds renders an unlock time, zero when the funds were never locked
func UnixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func (im *impl) Invoke(c ctx.Ctx, call marketplace.Call) (*marketplace.Result, error) {
	h, ok := handlers[call.Method]
	if !ok {
		return nil, im.Fallback(c, call.Tx)
	}
	if len(call.Args) != h.nargs {
		c.WithFields(log.Fields{"method": call.Method, "args": call.Args}).Info("call reverted: wrong argument count")
		return nil, domain.ErrUnrecognized
	}
	if !mutating[call.Method] && !domain.IsZeroAmount(call.Value) {
		return nil, im.Fallback(c, call.Tx)
	}

	out, err := h.fn(im, c, call.Tx, call.Args)
	if err != nil {
		if xerrors.Is(err, domain.ErrBadParamInput) || xerrors.Is(err, domain.ErrInvalidAddress) {
			c.WithFields(log.Fields{"method": call.Method, "err": err}).Info("call reverted: malformed argument")
			return nil, domain.ErrUnrecognized
		}
		return nil, err
	}
	return &marketplace.Result{Method: call.Method, Output: out}, nil
}
