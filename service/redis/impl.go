package redis

import (
	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/metrics"
)

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

// New redis pool
func New(name string, metrics metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   metrics,
		pools: pools,
	}
}

func (r *redImpl) getConn(command string) (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	if r.pools == nil || r.pools.Src == nil {
		return nil, ErrNoPool
	}

	conn := r.pools.Src.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "command", command)
		return nil, err
	}
	return conn, nil
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn(commandName)
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// release the connection asap, the longer it is held the more
	// connections the pool has to juggle
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) Publish(context ctx.Ctx, channel string, val []byte) (int, error) {
	tags := []string{"func", "PUBLISH", "cluster", r.name, "channel", channel}
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	n, err := redis.Int(r.connDo(context, "PUBLISH", channel, val))
	if err != nil {
		context.WithField("err", err).Error("PUBLISH redis failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) RPush(context ctx.Ctx, key string, val []byte) (int, error) {
	tags := []string{"func", "RPush", "cluster", r.name}
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	listSize, err := redis.Int(r.connDo(context, "RPUSH", key, val))
	if err != nil {
		context.WithField("err", err).Error("RPush redis failed")
		return 0, err
	}
	return listSize, nil
}

func (r *redImpl) LRange(context ctx.Ctx, key string, offset, count int) ([][]byte, error) {
	tags := []string{"func", "LRANGE", "cluster", r.name}
	defer r.met.BumpTime("time", tags...).End()

	stop := -1
	if count >= 0 {
		stop = offset + count - 1
	}
	val, err := redis.ByteSlices(r.connDo(context, "LRANGE", key, offset, stop))
	if err == redis.ErrNil {
		return [][]byte{}, nil
	} else if err != nil {
		context.WithField("err", err).Error("LRANGE redis failed")
		return nil, err
	}
	r.met.BumpHistogram("elements", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) LLen(context ctx.Ctx, key string) (int, error) {
	defer r.met.BumpTime("time", "func", "LLEN", "cluster", r.name).End()

	length, err := redis.Int(r.connDo(context, "LLEN", key))
	if err != nil {
		context.WithField("err", err).Error("LLEN redis failed")
		return 0, err
	}
	return length, nil
}

func (r *redImpl) Ping(context ctx.Ctx) error {
	_, err := r.connDo(context, "PING")
	return err
}
