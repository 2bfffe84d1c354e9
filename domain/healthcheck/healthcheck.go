package healthcheck

import (
	"github.com/x-xyz/marketledger/base/ctx"
)

const (
	ComponentStore = "store"
	ComponentMongo = "mongo"
	ComponentRedis = "redis"

	StatusOK       = "ok"
	StatusDisabled = "disabled"
)

// Report maps a component to StatusOK, StatusDisabled or its ping error
type Report map[string]string

// HealthCheckRepo pings the backing services. Ping of a service that is
// not configured returns ErrDisabled.
type HealthCheckRepo interface {
	PingStore(ctx ctx.Ctx) error
	PingMongo(ctx ctx.Ctx) error
	PingRedis(ctx ctx.Ctx) error
}

type HealthCheckUsecase interface {
	Check(ctx ctx.Ctx) (Report, error)
}
