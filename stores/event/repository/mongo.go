package repository

import (
	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/database/mongoclient"
	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/domain/event"
	"github.com/x-xyz/marketledger/service/query"
)

type mongoJournal struct {
	q query.Mongo
}

// NewMongoJournal stores events in the events table
func NewMongoJournal(q query.Mongo) event.Journal {
	return &mongoJournal{q}
}

type eventSelector struct {
	Name    *event.Name     `bson:"name,omitempty"`
	Account *domain.Address `bson:"account,omitempty"`
}

func (j *mongoJournal) Publish(c ctx.Ctx, events ...event.Event) error {
	for _, ev := range events {
		if err := j.q.Insert(c, domain.TableEvents, ev); err != nil && err != query.ErrDuplicateKey {
			c.WithField("err", err).Error("q.Insert failed")
			return err
		}
	}
	return nil
}

func (j *mongoJournal) FindAll(c ctx.Ctx, optFns ...event.FindAllOptionsFunc) ([]event.Event, error) {
	opts, err := event.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	sel := eventSelector{Name: opts.Name}
	if opts.Account != nil {
		account := opts.Account.ToLower()
		sel.Account = &account
	}
	qry, err := mongoclient.MakeBsonM(sel)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []event.Event{}
	if err := j.q.Search(c, domain.TableEvents, offset, limit, "at", qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
