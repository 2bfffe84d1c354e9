package gate

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
)

// Config is the marketplace configuration. An empty Owner means the
// ownership was renounced.
type Config struct {
	Owner            domain.Address `json:"owner" bson:"owner"`
	ListingFee       *uint256.Int   `json:"listingFee" bson:"-"`
	WithdrawalPeriod time.Duration  `json:"withdrawalPeriod" bson:"withdrawalPeriod"`
	Paused           bool           `json:"paused" bson:"paused"`
}

// HasOwner reports whether owner-only calls can still succeed
func (c *Config) HasOwner() bool {
	return !c.Owner.IsEmpty()
}

// Repo stores the single configuration record, Get returns
// domain.ErrNotFound before the marketplace is initialised
type Repo interface {
	Get(ctx ctx.Ctx) (*Config, error)
	Put(ctx ctx.Ctx, cfg *Config) error
}

// Gate guards configuration and the pause switch
type Gate interface {
	// Init stores the initial configuration once, it returns false when a
	// configuration already exists
	Init(ctx ctx.Ctx, cfg Config) (bool, error)
	Config(ctx ctx.Ctx) (*Config, error)

	RequireActive(ctx ctx.Ctx) error
	RequireOwner(ctx ctx.Ctx, caller domain.Address) error

	Pause(ctx ctx.Ctx, caller domain.Address) (event.Event, error)
	Unpause(ctx ctx.Ctx, caller domain.Address) (event.Event, error)
	TransferOwnership(ctx ctx.Ctx, caller, newOwner domain.Address) (event.Event, error)
	RenounceOwnership(ctx ctx.Ctx, caller domain.Address) (event.Event, error)
	SetListingFee(ctx ctx.Ctx, caller domain.Address, fee *uint256.Int) (event.Event, error)
	SetWithdrawalPeriod(ctx ctx.Ctx, caller domain.Address, period time.Duration) (event.Event, error)
}
