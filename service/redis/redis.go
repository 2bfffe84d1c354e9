package redis

import (
	"errors"

	"github.com/x-xyz/marketledger/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis key not found")
	// ErrNoPool is returned when the Service was built without a pool
	ErrNoPool = errors.New("redis pool is not configured")
)

// Service is the subset of redis commands the ledger relies on
type Service interface {
	// Publish posts val to channel and returns the number of receivers
	Publish(context ctx.Ctx, channel string, val []byte) (int, error)

	// RPush appends val to the list at key and returns the list size
	RPush(context ctx.Ctx, key string, val []byte) (int, error)
	// LRange returns `count` elements of the list starting at `offset`,
	// a negative count reads to the end of the list
	LRange(context ctx.Ctx, key string, offset, count int) ([][]byte, error)
	LLen(context ctx.Ctx, key string) (int, error)

	Ping(context ctx.Ctx) error
}
