package repository

import (
	"time"

	"github.com/x-xyz/marketledger/base/ctx"
	hcdomain "github.com/x-xyz/marketledger/domain/healthcheck"
	"github.com/x-xyz/marketledger/domain/marketplace"
	"github.com/x-xyz/marketledger/service/query"
	"github.com/x-xyz/marketledger/service/redis"
)

const pingTimeout = 2 * time.Second

type impl struct {
	store marketplace.Store
	mongo query.Mongo
	redis redis.Service
}

// New creates a HealthCheckRepo. mongo and redis are optional.
func New(
	store marketplace.Store,
	mongo query.Mongo,
	redis redis.Service,
) hcdomain.HealthCheckRepo {
	return &impl{
		store: store,
		mongo: mongo,
		redis: redis,
	}
}

func (im *impl) PingStore(context ctx.Ctx) error {
	c, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	err := im.store.View(c, func(c ctx.Ctx, tx marketplace.StateTx) error {
		_, err := tx.Config().Get(c)
		return err
	})
	if err != nil {
		context.WithField("err", err).Error("ping store failed")
		return err
	}
	return nil
}

func (im *impl) PingMongo(context ctx.Ctx) error {
	if im.mongo == nil {
		return hcdomain.ErrDisabled
	}
	c, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.mongo.Ping(c); err != nil {
		context.WithField("err", err).Error("ping mongo failed")
		return err
	}
	return nil
}

func (im *impl) PingRedis(context ctx.Ctx) error {
	if im.redis == nil {
		return hcdomain.ErrDisabled
	}
	if err := im.redis.Ping(context); err != nil {
		context.WithField("err", err).Error("ping redis failed")
		return err
	}
	return nil
}
