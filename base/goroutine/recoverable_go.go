package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/log"
)

// PanicEvent is what a recovered task leaves behind
type PanicEvent struct {
	Task  string
	Panic interface{}
	Stack []byte
}

type options struct {
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(*PanicEvent)
}

type Option func(*options)

// WithBeforeStart runs f inside the goroutine before the task
func WithBeforeStart(f func()) Option {
	return func(o *options) {
		o.beforeStart = f
	}
}

// WithAfterEnded runs f once the task returns or panics
func WithAfterEnded(f func()) Option {
	return func(o *options) {
		o.afterEnded = f
	}
}

// WithAfterRecovered receives the panic before it is sent on the channel
func WithAfterRecovered(f func(*PanicEvent)) Option {
	return func(o *options) {
		o.afterRecovered = f
	}
}

// RecoverableGo runs the named task in a goroutine. A panic is logged with
// the task name and sent on the returned channel; the channel is closed
// when the task returns normally.
func RecoverableGo(c ctx.Ctx, task string, f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			if o.afterEnded != nil {
				o.afterEnded()
			}

			p := recover()
			if p == nil {
				close(done)
				return
			}
			ev := &PanicEvent{Task: task, Panic: p, Stack: debug.Stack()}
			c.WithFields(log.Fields{
				"task":  task,
				"err":   p,
				"stack": string(ev.Stack),
			}).Error("task panicked")
			if o.afterRecovered != nil {
				o.afterRecovered(ev)
			}
			done <- ev
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}
		f()
	}()
	return done
}
