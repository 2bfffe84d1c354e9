package repository

import (
	"encoding/json"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/base/backoff"
	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/service/redis"
)

const (
	redisAttempts     = 3
	redisBackoffStart = 50 * time.Millisecond
	redisBackoffLimit = time.Second
)

type redisJournal struct {
	r       redis.Service
	channel string
	key     string
}

// NewRedisJournal appends events to the list at key and fans them out on
// the pub/sub channel
func NewRedisJournal(r redis.Service, channel, key string) event.Journal {
	return &redisJournal{
		r:       r,
		channel: channel,
		key:     key,
	}
}

func (j *redisJournal) Publish(c ctx.Ctx, events ...event.Event) error {
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return xerrors.Errorf("encode event %s: %w", ev.Id, err)
		}
		err = j.retry(c, func() error {
			_, err := j.r.RPush(c, j.key, raw)
			return err
		})
		if err != nil {
			c.WithFields(log.Fields{"err": err, "event": ev.Id}).Error("redis.RPush failed")
			return err
		}
		err = j.retry(c, func() error {
			_, err := j.r.Publish(c, j.channel, raw)
			return err
		})
		if err != nil {
			c.WithFields(log.Fields{"err": err, "event": ev.Id}).Error("redis.Publish failed")
			return err
		}
	}
	return nil
}

// retry covers transient connection drops, steps already done are not redone
func (j *redisJournal) retry(c ctx.Ctx, fn func() error) error {
	return backoff.Retry(c, backoff.NewExponential(redisBackoffStart, redisBackoffLimit), redisAttempts, fn)
}

func (j *redisJournal) FindAll(c ctx.Ctx, optFns ...event.FindAllOptionsFunc) ([]event.Event, error) {
	opts, err := event.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	raws, err := j.r.LRange(c, j.key, 0, -1)
	if err != nil {
		return nil, err
	}
	evs := make([]event.Event, 0, len(raws))
	for _, raw := range raws {
		ev := event.Event{}
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.WithField("err", err).Warn("skip undecodable event")
			continue
		}
		evs = append(evs, ev)
	}
	return filter(opts, evs), nil
}
