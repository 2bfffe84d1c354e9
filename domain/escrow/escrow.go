package escrow

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
)

// Balance holds the funds owed to a payee. A zero UnlockAt means the funds
// can be withdrawn at once.
type Balance struct {
	Payee    domain.Address `json:"payee" bson:"payee"`
	Pending  *uint256.Int   `json:"pending" bson:"-"`
	UnlockAt time.Time      `json:"unlockAt" bson:"unlockAt"`
}

// Empty is the balance of a payee which was never credited
func Empty(payee domain.Address) *Balance {
	return &Balance{
		Payee:   payee,
		Pending: domain.Zero(),
	}
}

// Repo stores balances. FindOne returns domain.ErrNotFound for unknown payees.
type Repo interface {
	FindOne(ctx ctx.Ctx, payee domain.Address) (*Balance, error)
	Upsert(ctx ctx.Ctx, b *Balance) error
}

// Ledger is the pull payment book
type Ledger interface {
	// Credit adds a sale payment and re-arms the lock to now+waitPeriod
	Credit(ctx ctx.Ctx, payee domain.Address, amount *uint256.Int, waitPeriod time.Duration, now time.Time) error
	// Deposit adds funds without touching the lock
	Deposit(ctx ctx.Ctx, payee domain.Address, amount *uint256.Int) error
	// Withdraw zeroes the pending balance, then pays it out. A zero balance
	// is a successful no-op and returns a zero amount.
	Withdraw(ctx ctx.Ctx, payee domain.Address, now time.Time) (*uint256.Int, *event.Event, error)
	BalanceOf(ctx ctx.Ctx, payee domain.Address) (*uint256.Int, error)
	UnlockAt(ctx ctx.Ctx, payee domain.Address) (time.Time, error)
}
