package cart

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/kicks-storefront/internal/events"
	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
)

// Session is everything bound to one shopper scope: the cart store and the
// UI event bus its views listen on.
type Session struct {
	ScopeID string
	Store   *Store
	Events  *events.Bus
}

// idle reports whether nothing is attached to the session.
func (s *Session) idle() bool {
	return s.Store.Subscribers() == 0 && s.Events.Subscribers(events.TopicOpenCart) == 0
}

// Registry hands out one Session per scope and loads it on first use.
type Registry struct {
	backend    storage.Backend
	writer     Writer
	storageKey string
	opts       Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(backend storage.Backend, writer Writer, storageKey string, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		backend:    backend,
		writer:     writer,
		storageKey: storageKey,
		opts:       opts,
		sessions:   make(map[string]*Session),
	}
}

// Open returns the Ready session for scopeID, creating and loading it if needed.
func (r *Registry) Open(ctx context.Context, scopeID string) *Session {
	r.mu.Lock()
	sess, ok := r.sessions[scopeID]
	if !ok {
		key := storage.ScopedKey(scopeID, r.storageKey)
		sess = &Session{
			ScopeID: scopeID,
			Store:   NewStore(key, r.backend, r.writer, r.opts),
			Events:  events.NewBus(),
		}
		r.sessions[scopeID] = sess
	}
	r.mu.Unlock()

	if ok {
		sess.Store.Touch()
	}
	sess.Store.Load(ctx)
	return sess
}

// Lookup returns an already open session without loading anything.
func (r *Registry) Lookup(scopeID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[scopeID]
	return sess, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops sessions unused for longer than maxIdle that have no
// subscribers. Their records stay in storage and reload on the next Open.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.opts.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, sess := range r.sessions {
		if sess.Store.LastUsed().After(cutoff) || !sess.idle() {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	if evicted > 0 {
		r.opts.Logger.Info("Evicted idle carts", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(r.sessions),
		})
	}
	return evicted
}
