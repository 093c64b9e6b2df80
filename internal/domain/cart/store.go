package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/infrastructure/storage"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product id is required")
	ErrLimitExceeded   = errors.New("quantity limit exceeded")
)

// DefaultPersistTimeout bounds a single write to durable storage
const DefaultPersistTimeout = 2 * time.Second

// Entry is one product snapshot and how many of it the shopper holds
type Entry struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// LineTotal is the effective unit price times quantity
func (e Entry) LineTotal() decimal.Decimal {
	return e.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Snapshot is the cart as seen under a single lock
type Snapshot struct {
	Entries []Entry
	Count   int
	Total   decimal.Decimal
}

type subscription struct {
	id int
	fn Observer
}

// Store owns the shopper's cart for the session. It keeps entries in insertion order,
// writes them to durable storage after every mutation and then notifies observers.
//
// Observers run on the mutating goroutine after the store's lock is released, so an
// observer may call back into the store.
type Store struct {
	mu        sync.Mutex
	entries   []Entry
	observers []subscription
	nextID    int

	storage  storage.Storage
	key      string
	notifier notification.Notifier
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Store)

// WithKey overrides the storage key the cart is persisted under
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithNotifier(n notification.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store and loads any cart persisted under its key. Missing,
// unreadable or malformed state yields an empty cart.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		key:      storage.DefaultKey,
		notifier: notification.Nop{},
		logger:   zerolog.Nop(),
		timeout:  DefaultPersistTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "cart").Str("key", s.key).Logger()
	s.entries = s.load()
	return s
}

func (s *Store) load() []Entry {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read persisted cart, starting empty")
		return nil
	}
	if !found {
		return nil
	}

	entries, repaired, err := Decode(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Discarding malformed persisted cart")
		return nil
	}
	if repaired > 0 {
		s.logger.Warn().Int("repaired", repaired).Msg("Repaired invalid entries in persisted cart")
	}
	s.logger.Debug().Int("entries", len(entries)).Msg("Cart restored")
	return entries
}

// Add puts quantity units of product in the cart. When the product is already present
// only its quantity grows: the snapshot stored on first add is kept.
func (s *Store) Add(product catalog.Product, quantity int) error {
	return s.AddWithin(product, quantity, 0)
}

// AddWithin is Add with a cap on the resulting quantity of the product. The check and
// the add happen under one lock. A limit of zero or less means no cap.
func (s *Store) AddWithin(product catalog.Product, quantity, limit int) error {
	if product.ID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexOf(product.ID)
	held := 0
	if i >= 0 {
		held = s.entries[i].Quantity
	}
	if limit > 0 && held+quantity > limit {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d held, %d requested, limit %d", ErrLimitExceeded, held, quantity, limit)
	}
	if i >= 0 {
		s.entries[i].Quantity += quantity
	} else {
		s.entries = append(s.entries, Entry{Product: product, Quantity: quantity})
	}
	change := s.commitLocked(EventItemAdded, product.ID)
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("%s added to cart", product.Name))
	s.publish(change)
	return nil
}

// Remove deletes the entry for productID. Removing an absent product is a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	}
	change := s.commitLocked(EventItemRemoved, productID)
	s.mu.Unlock()

	s.notifier.Info("Item removed from cart")
	s.publish(change)
}

// SetQuantity sets the absolute quantity for productID. A quantity of zero or less
// removes the entry. Unknown products are ignored.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.entries[i].Quantity = quantity
	}
	change := s.commitLocked(EventQuantityUpdated, productID)
	s.mu.Unlock()

	s.publish(change)
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	change := s.commitLocked(EventCartCleared, "")
	s.mu.Unlock()

	s.notifier.Info("Cart cleared")
	s.publish(change)
}

// Items returns a copy of the entries in insertion order
func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries)
}

// Total is the sum of effective unit price times quantity, at full precision
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.entries)
}

// Count is the sum of quantities, not the number of entries
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.entries)
}

// Quantity returns how many units of productID are in the cart
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.entries[i].Quantity
	}
	return 0
}

// Snapshot returns entries, count and total read together
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Entries: cloneEntries(s.entries),
		Count:   count(s.entries),
		Total:   total(s.entries),
	}
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) == 0
}

// Subscribe registers an observer and returns a func that unregisters it
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) indexOf(productID string) int {
	for i, e := range s.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

// commitLocked persists the current entries and captures the change. Caller holds mu.
func (s *Store) commitLocked(eventType, productID string) Change {
	snapshot := cloneEntries(s.entries)
	s.persist(eventType, snapshot)

	quantity := 0
	if i := s.indexOf(productID); i >= 0 {
		quantity = s.entries[i].Quantity
	}
	return Change{
		Type:      eventType,
		ProductID: productID,
		Quantity:  quantity,
		Entries:   snapshot,
		Count:     count(snapshot),
		Total:     total(snapshot),
		At:        s.now(),
	}
}

// persist is best-effort: a failed write leaves the in-memory cart authoritative for
// the rest of the session. A cleared cart deletes its key.
func (s *Store) persist(eventType string, entries []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if eventType == EventCartCleared {
		if err := s.storage.Delete(ctx, s.key); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete persisted cart, changes will not survive a reload")
		}
		return
	}

	data, err := Encode(entries)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode cart")
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist cart, changes will not survive a reload")
	}
}

func (s *Store) publish(change Change) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		observers[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(change)
	}
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func total(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.LineTotal())
	}
	return sum
}

func count(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}
