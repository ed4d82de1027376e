package crawl

import (
	"context"
	"sync"
	"sync/atomic"
)

// Barrier tracks outstanding units of work grouped into generations.
//
// Work joins the currently open generation when it registers. AwaitDrain
// closes the open generation and blocks until every party of that generation
// and all earlier ones has deregistered. Parties registered after AwaitDrain
// starts land in the next generation and do not extend the wait, except for
// children registered through Party.Register, which inherit their parent's
// generation: follow-up work spawned by a task counts as part of that task.
type Barrier struct {
	mu     sync.Mutex
	gen    uint64
	counts map[uint64]int

	// drained is closed and replaced whenever a generation's count reaches zero.
	drained chan struct{}
}

// NewBarrier returns a Barrier with no outstanding parties.
func NewBarrier() *Barrier {
	return &Barrier{
		counts:  make(map[uint64]int),
		drained: make(chan struct{}),
	}
}

// Party is one registered unit of work.
type Party struct {
	b    *Barrier
	gen  uint64
	done atomic.Bool
}

// Register adds a party to the open generation.
// It must be called before the work is handed to a worker.
func (b *Barrier) Register() *Party {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.register(b.gen)
}

// Register adds a child party to p's generation.
// The parent must still be registered.
func (p *Party) Register() *Party {
	if p.done.Load() {
		panic("crawl: register on a deregistered party")
	}
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	return p.b.register(p.gen)
}

func (b *Barrier) register(gen uint64) *Party {
	b.counts[gen]++
	return &Party{b: b, gen: gen}
}

// ArriveAndDeregister retires the party. It must be called exactly once,
// on every exit path of the work the party represents.
func (p *Party) ArriveAndDeregister() {
	if !p.done.CompareAndSwap(false, true) {
		panic("crawl: party deregistered twice")
	}

	b := p.b
	b.mu.Lock()
	defer b.mu.Unlock()

	b.counts[p.gen]--
	if b.counts[p.gen] > 0 {
		return
	}
	delete(b.counts, p.gen)
	close(b.drained)
	b.drained = make(chan struct{})
}

// AwaitDrain closes the open generation and waits until it and every earlier
// generation have no registered parties. It returns ctx.Err() if the context
// is canceled first; the parties stay registered in that case.
func (b *Barrier) AwaitDrain(ctx context.Context) error {
	b.mu.Lock()
	target := b.gen
	b.gen++
	b.mu.Unlock()

	for {
		b.mu.Lock()
		n := b.outstandingThrough(target)
		drained := b.drained
		b.mu.Unlock()

		if n == 0 {
			return nil
		}

		select {
		case <-drained:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Outstanding returns the number of registered parties across all generations.
func (b *Barrier) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var n int
	for _, c := range b.counts {
		n += c
	}
	return n
}

func (b *Barrier) outstandingThrough(gen uint64) int {
	var n int
	for g, c := range b.counts {
		if g <= gen {
			n += c
		}
	}
	return n
}
