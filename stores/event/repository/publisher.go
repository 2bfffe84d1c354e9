package repository

import (
	"sync"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
	"github.com/x-xyz/marketledger/domain/event"
)

type logPublisher struct{}

// NewLogPublisher writes every event to the logger of the publishing ctx
func NewLogPublisher() event.Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(c ctx.Ctx, events ...event.Event) error {
	for _, ev := range events {
		c.WithFields(log.Fields{
			"event":      ev.Name,
			"eventId":    ev.Id,
			"account":    ev.Account,
			"previous":   ev.Previous,
			"collection": ev.Collection,
			"tokenId":    ev.TokenId,
			"amount":     ev.Amount,
			"period":     ev.Period,
			"at":         ev.At,
		}).Info("market event")
	}
	return nil
}

type multi []event.Publisher

// NewMulti publishes to every publisher in turn, the first error wins but
// the remaining publishers still get the events
func NewMulti(publishers ...event.Publisher) event.Publisher {
	return multi(publishers)
}

func (m multi) Publish(c ctx.Ctx, events ...event.Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(c, events...); err != nil {
			c.WithField("err", err).Error("publisher.Publish failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

type memoryJournal struct {
	mu     sync.RWMutex
	limit  int
	events []event.Event
}

// NewMemoryJournal keeps the latest `limit` events in memory, zero keeps all
func NewMemoryJournal(limit int) event.Journal {
	return &memoryJournal{limit: limit}
}

func (j *memoryJournal) Publish(c ctx.Ctx, events ...event.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = append(j.events, events...)
	if j.limit > 0 && len(j.events) > j.limit {
		j.events = append([]event.Event{}, j.events[len(j.events)-j.limit:]...)
	}
	return nil
}

func (j *memoryJournal) FindAll(c ctx.Ctx, optFns ...event.FindAllOptionsFunc) ([]event.Event, error) {
	opts, err := event.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	return filter(opts, j.events), nil
}
