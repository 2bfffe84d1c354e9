package repository

import (
	"github.com/x-xyz/marketledger/domain/event"
)

func matches(opts event.FindAllOptions, ev *event.Event) bool {
	if opts.Name != nil && ev.Name != *opts.Name {
		return false
	}
	if opts.Account != nil && !ev.Account.Equals(*opts.Account) {
		return false
	}
	return true
}

// filter keeps the order of evs
func filter(opts event.FindAllOptions, evs []event.Event) []event.Event {
	res := []event.Event{}
	for i := range evs {
		if matches(opts, &evs[i]) {
			res = append(res, evs[i])
		}
	}
	return paginate(opts, res)
}

func paginate(opts event.FindAllOptions, evs []event.Event) []event.Event {
	if opts.Offset != nil {
		if *opts.Offset >= len(evs) {
			return []event.Event{}
		}
		if *opts.Offset > 0 {
			evs = evs[*opts.Offset:]
		}
	}
	if opts.Limit != nil && *opts.Limit > 0 && *opts.Limit < len(evs) {
		evs = evs[:*opts.Limit]
	}
	return evs
}
