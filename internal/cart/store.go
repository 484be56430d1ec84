package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Options tunes a Store.
type Options struct {
	FallbackPrice float64
	LoadTimeout   time.Duration // bounds the first read of the durable record
	Logger        *logger.Logger
	Now           func() time.Time
}

type subscriber struct {
	id int
	fn func(State)
}

// Store owns one cart. It starts Uninitialized, becomes Ready after Load,
// and never goes back. Mutations before Load are ignored.
type Store struct {
	key         string
	backend     storage.Backend
	writer      Writer
	fallback    decimal.Decimal
	loadTimeout time.Duration
	log         *logger.Logger
	now         func() time.Time

	// opMu orders mutate-then-notify so subscribers observe states in sequence
	opMu sync.Mutex

	mu       sync.RWMutex
	items    []LineItem
	ready    bool
	lastUsed time.Time

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

// NewStore creates an Uninitialized store for the record under key.
func NewStore(key string, backend storage.Backend, writer Writer, opts Options) *Store {
	fallback := opts.FallbackPrice
	if fallback == 0 {
		fallback = DefaultFallbackPrice
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loadTimeout := opts.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 3 * time.Second
	}
	return &Store{
		key:         key,
		backend:     backend,
		writer:      writer,
		fallback:    decimal.NewFromFloat(fallback),
		loadTimeout: loadTimeout,
		log:         log.Component("cart.store").WithContext(map[string]interface{}{"key": key}),
		now:         now,
		items:       []LineItem{},
		lastUsed:    now(),
	}
}

// Load reads the durable record once and transitions to Ready.
// A missing or unreadable record yields an empty cart. The read outlives
// cancellation of ctx so an abandoned request cannot empty a stored cart.
func (s *Store) Load(ctx context.Context) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return s.Snapshot()
	}

	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	items := s.readRecord(readCtx)
	cancel()

	s.mu.Lock()
	s.items = items
	s.ready = true
	s.lastUsed = s.now()
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return st
}

func (s *Store) readRecord(ctx context.Context) []LineItem {
	data, ok := s.writer.Pending(s.key)
	if !ok {
		var err error
		data, err = s.backend.Get(ctx, s.key)
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug("No stored cart, starting empty")
			return []LineItem{}
		}
		if err != nil {
			s.log.Warn("Failed to read stored cart, starting empty", map[string]interface{}{
				"error":   err.Error(),
				"backend": s.backend.Name(),
			})
			return []LineItem{}
		}
	}

	items, err := DecodeItems(data)
	if err != nil {
		s.log.Warn("Stored cart is unreadable, starting empty", map[string]interface{}{
			"error": err.Error(),
		})
		return []LineItem{}
	}
	return items
}

// AddToCart merges into an existing line with the same product, size and color,
// or appends a new line built from p. Quantities are kept within 1..MaxQuantity.
func (s *Store) AddToCart(p Product, size, color string, quantity int) State {
	key := NewKey(p.ID, size, color)
	qty := clampQuantity(quantity)

	return s.mutate("add", func(items []LineItem) []LineItem {
		if i := indexOf(items, key); i >= 0 {
			items[i].Quantity = min(MaxQuantity, items[i].Quantity+qty)
			return items
		}
		return append(items, LineItem{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Images:    append(make([]string, 0, len(p.Images)), p.Images...),
			Size:      key.Size,
			Color:     key.Color,
			Quantity:  qty,
		})
	})
}

// RemoveFromCart deletes the matching line. Absent lines are a no-op.
func (s *Store) RemoveFromCart(productID int, size, color string) State {
	key := NewKey(productID, size, color)

	return s.mutate("remove", func(items []LineItem) []LineItem {
		out := items[:0]
		for _, item := range items {
			if item.Key() != key {
				out = append(out, item)
			}
		}
		return out
	})
}

// UpdateQuantity sets the quantity of the matching line, clamped to 1..MaxQuantity.
// Lines are only ever removed through RemoveFromCart.
func (s *Store) UpdateQuantity(productID int, size, color string, quantity int) State {
	key := NewKey(productID, size, color)
	quantity = clampQuantity(quantity)

	return s.mutate("update", func(items []LineItem) []LineItem {
		if i := indexOf(items, key); i >= 0 {
			items[i].Quantity = quantity
		}
		return items
	})
}

// Replace swaps the whole item list. Used when importing a cart.
func (s *Store) Replace(items []LineItem) State {
	return s.mutate("replace", func([]LineItem) []LineItem {
		data, err := EncodeItems(items)
		if err != nil {
			return []LineItem{}
		}
		normalized, err := DecodeItems(data)
		if err != nil {
			return []LineItem{}
		}
		return normalized
	})
}

// mutate applies fn to a private copy of the items, publishes the result,
// schedules a write and notifies subscribers.
func (s *Store) mutate(op string, fn func(items []LineItem) []LineItem) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.lastUsed = s.now()
	if !s.ready {
		st := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Warn("Cart mutation ignored before load", map[string]interface{}{"op": op})
		return st
	}

	s.items = fn(cloneItems(s.items))
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(st.Items)
	s.notify(st)
	return st
}

func (s *Store) persist(items []LineItem) {
	data, err := EncodeItems(items)
	if err != nil {
		s.log.Error("Failed to encode cart", err)
		return
	}
	s.writer.Schedule(s.key, data)
}

// Snapshot returns the current state. Callers may keep it; it is never mutated.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	return State{Items: cloneItems(s.items), Ready: s.ready}
}

func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Total is the cart total with the configured fallback price.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total(s.fallback)
}

func (s *Store) Count() int {
	return s.Snapshot().Count()
}

func (s *Store) FallbackPrice() decimal.Decimal {
	return s.fallback
}

// Key returns the durable record key.
func (s *Store) Key() string {
	return s.key
}

// Touch marks the store as used without changing it.
func (s *Store) Touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Store) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// Subscribe registers fn to receive every new state. fn runs on the
// mutating goroutine and must not call back into the store's mutators.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		s.deliver(sub, st)
	}
}

func (s *Store) deliver(sub subscriber, st State) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Cart subscriber panicked", nil, map[string]interface{}{"panic": r})
		}
	}()
	sub.fn(State{Items: cloneItems(st.Items), Ready: st.Ready})
}
