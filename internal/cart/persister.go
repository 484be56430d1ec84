package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
)

// Writer receives serialized cart records for durable storage.
type Writer interface {
	// Schedule queues data for key. It must not block on I/O.
	Schedule(key string, data []byte)
	// Pending returns data queued or in flight for key.
	Pending(key string) ([]byte, bool)
}

// PersisterStats counts completed writes.
type PersisterStats struct {
	Written int64
	Failed  int64
}

// Persister writes cart records on a single background goroutine.
// Writes for the same key coalesce so only the latest state reaches the backend.
type Persister struct {
	backend storage.Backend
	timeout time.Duration
	log     *logger.Logger

	mu           sync.Mutex
	idle         *sync.Cond
	pending      map[string][]byte
	order        []string
	inflight     string
	inflightData []byte
	busy         bool
	closed       bool

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	written atomic.Int64
	failed  atomic.Int64
}

// NewPersister starts the writer goroutine. Call Close to stop it.
func NewPersister(backend storage.Backend, timeout time.Duration) *Persister {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	p := &Persister{
		backend: backend,
		timeout: timeout,
		log:     logger.Get().Component("cart.persister"),
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mu)
	go p.run()
	return p
}

func (p *Persister) Schedule(key string, data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		// queued writes go first so this one is not overwritten by older data
		<-p.stopped
		p.write(key, data)
		return
	}
	if _, queued := p.pending[key]; !queued {
		p.order = append(p.order, key)
	}
	p.pending[key] = data
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Persister) Pending(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if data, ok := p.pending[key]; ok {
		return data, true
	}
	if p.busy && p.inflight == key {
		return p.inflightData, true
	}
	return nil, false
}

// Flush blocks until every scheduled write has completed.
func (p *Persister) Flush() {
	p.mu.Lock()
	for len(p.order) > 0 || p.busy {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close drains queued writes and stops the goroutine. Writes scheduled
// afterwards run inline on the caller.
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
		<-p.stopped
	})
}

func (p *Persister) Stats() PersisterStats {
	return PersisterStats{Written: p.written.Load(), Failed: p.failed.Load()}
}

func (p *Persister) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.done:
			p.drain()
			return
		}
	}
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if len(p.order) == 0 {
			p.busy = false
			p.inflight, p.inflightData = "", nil
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		key := p.order[0]
		p.order = p.order[1:]
		data := p.pending[key]
		delete(p.pending, key)
		p.busy = true
		p.inflight, p.inflightData = key, data
		p.mu.Unlock()

		p.write(key, data)
	}
}

func (p *Persister) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.backend.Set(ctx, key, data); err != nil {
		p.failed.Add(1)
		p.log.Error("Failed to persist cart record", err, map[string]interface{}{
			"key":     key,
			"backend": p.backend.Name(),
		})
		return
	}
	p.written.Add(1)
}
