package iap

import (
	"context"
	"sync"
)

// inbox is an unbounded FIFO of work drained by a single goroutine. Pushing
// never blocks, so payment queue and catalog callbacks return immediately.
type inbox struct {
	mu     sync.Mutex
	items  []func(ctx context.Context)
	closed bool

	signal chan struct{}
}

func newInbox() *inbox {
	return &inbox{signal: make(chan struct{}, 1)}
}

func (in *inbox) push(f func(ctx context.Context)) bool {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return false
	}
	in.items = append(in.items, f)
	in.mu.Unlock()

	select {
	case in.signal <- struct{}{}:
	default:
	}
	return true
}

func (in *inbox) close() {
	in.mu.Lock()
	in.closed = true
	in.items = nil
	in.mu.Unlock()
}

func (in *inbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-in.signal:
		}

		for {
			in.mu.Lock()
			if len(in.items) == 0 || in.closed {
				in.mu.Unlock()
				break
			}
			f := in.items[0]
			in.items[0] = nil
			in.items = in.items[1:]
			in.mu.Unlock()

			if ctx.Err() != nil {
				return
			}
			f(ctx)
		}
	}
}
