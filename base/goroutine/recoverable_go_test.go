package goroutine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketledger/base/ctx"
)

func TestRecoverableGoPanic(t *testing.T) {
	req := require.New(t)
	steps := []string{}

	ev := <-RecoverableGo(ctx.Background(), "server",
		func() {
			steps = append(steps, "run")
			panic("boom")
		},
		WithBeforeStart(func() {
			steps = append(steps, "before")
		}),
		WithAfterEnded(func() {
			steps = append(steps, "ended")
		}),
		WithAfterRecovered(func(ev *PanicEvent) {
			steps = append(steps, "recovered "+ev.Task)
		}),
	)

	req.NotNil(ev)
	req.Equal("server", ev.Task)
	req.Equal("boom", ev.Panic)
	req.NotEmpty(ev.Stack)
	req.Equal([]string{"before", "run", "ended", "recovered server"}, steps)
}

func TestRecoverableGoReturns(t *testing.T) {
	req := require.New(t)
	ran := false

	ev, ok := <-RecoverableGo(ctx.Background(), "job", func() {
		ran = true
	})
	req.False(ok, "channel closed")
	req.Nil(ev)
	req.True(ran)
}
