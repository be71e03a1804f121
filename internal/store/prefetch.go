package store

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/snare/internal/types"
)

type request struct {
	channel    types.ChannelID
	index      int
	generation uint64
}

// Prefetcher decodes blocks ahead of use with a pool of workers. Requests are served most recent first, and a new
// Submit supersedes everything still pending.
type Prefetcher struct {
	store *Store

	mu         sync.Mutex
	cond       *sync.Cond
	stack      []request
	generation uint64
	closed     bool

	group *errgroup.Group
	stop  func() bool
}

// NewPrefetcher starts workers goroutines loading blocks into store. They exit on Close or when ctx is done.
func NewPrefetcher(ctx context.Context, store *Store, workers int) *Prefetcher {
	pre := newPrefetcher(store)

	group, ctx := errgroup.WithContext(ctx)
	pre.group = group

	pre.stop = context.AfterFunc(ctx, func() {
		pre.mu.Lock()
		pre.closed = true
		pre.stack = nil
		pre.mu.Unlock()
		pre.cond.Broadcast()
	})

	for range max(workers, 1) {
		group.Go(pre.work)
	}

	return pre
}

func newPrefetcher(store *Store) *Prefetcher {
	pre := &Prefetcher{store: store}
	pre.cond = sync.NewCond(&pre.mu)

	return pre
}

// Submit queues blocks of a channel, first index served first, and cancels the previous requests.
func (p *Prefetcher) Submit(channel types.ChannelID, indices ...int) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()

		return
	}

	p.generation++

	for i := len(indices) - 1; i >= 0; i-- {
		p.stack = append(p.stack, request{channel: channel, index: indices[i], generation: p.generation})
	}

	p.mu.Unlock()
	p.cond.Broadcast()
}

// next blocks until a current request is available. It returns false once the prefetcher is closed and drained.
func (p *Prefetcher) next() (request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		for len(p.stack) > 0 {
			req := p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]

			if req.generation == p.generation {
				return req, true
			}

			slog.Debug("store.Prefetcher", "channel", req.channel, "block", req.index, "stage", "superseded")
		}

		if p.closed {
			return request{}, false
		}

		p.cond.Wait()
	}
}

func (p *Prefetcher) work() error {
	for {
		req, ok := p.next()
		if !ok {
			return nil
		}

		if _, err := p.store.GetBlock(req.channel, req.index); err != nil {
			slog.Debug("store.Prefetcher", "channel", req.channel, "block", req.index, "stage", "error", "error", err)
		}
	}
}

// Close lets the workers finish the pending requests and waits for them.
func (p *Prefetcher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	if p.stop != nil {
		p.stop()
	}

	if p.group == nil {
		return nil
	}

	return p.group.Wait()
}
