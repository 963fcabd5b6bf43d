// Package cart holds a client's line items and the totals derived from them.
package cart

import (
	"sync"

	"ayah/internal/models"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the cart with its derived totals.
type Snapshot struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"-"`
}

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 99

// Store is the cart of one client. Items keep insertion order.
type Store struct {
	// notifyMu is held from a mutation until its subscribers have returned, so subscribers
	// observe snapshots in mutation order.
	notifyMu sync.Mutex

	mu     sync.RWMutex
	items  []models.CartItem
	locked bool

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]func(Snapshot)),
	}
}

// AddItem inserts item, or increments the quantity of the line with the same id.
// An existing line keeps its name and price. A line never exceeds MaxQuantity.
func (s *Store) AddItem(item models.CartItem) error {
	if item.ID == "" {
		return ErrInvalidItem
	}
	if item.Quantity < 1 || item.Quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	if item.Price < 0 {
		return ErrInvalidPrice
	}

	return s.mutate(func() error {
		if s.locked {
			return ErrCartLocked
		}
		i := s.indexOf(item.ID)
		if i < 0 {
			s.items = append(s.items, item)
			return nil
		}
		if s.items[i].Quantity > MaxQuantity-item.Quantity {
			return ErrInvalidQuantity
		}
		s.items[i].Quantity += item.Quantity
		return nil
	})
}

// RemoveItem deletes the line regardless of its quantity.
func (s *Store) RemoveItem(id string) error {
	return s.mutate(func() error {
		if s.locked {
			return ErrCartLocked
		}
		i := s.indexOf(id)
		if i < 0 {
			return ErrItemNotFound
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return nil
	})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes the line,
// so a stored item never holds a quantity below 1.
func (s *Store) UpdateQuantity(id string, quantity int) error {
	if quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return s.mutate(func() error {
		if s.locked {
			return ErrCartLocked
		}
		i := s.indexOf(id)
		if i < 0 {
			return ErrItemNotFound
		}
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
		return nil
	})
}

// Clear empties the cart. It is permitted while the cart is locked.
func (s *Store) Clear() {
	_ = s.mutate(func() error {
		s.items = nil
		return nil
	})
}

// LockForCheckout locks the cart and returns its contents taken in the same critical section.
// An empty cart is left unlocked and reported with ErrEmptyCart.
func (s *Store) LockForCheckout() (Snapshot, error) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return Snapshot{}, ErrEmptyCart
	}
	s.locked = true
	items := s.copyItems()
	s.mu.Unlock()

	return NewSnapshot(items), nil
}

// Restore replaces the contents with previously persisted items without notifying subscribers.
// Invalid lines are dropped.
func (s *Store) Restore(items []models.CartItem) {
	restored := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 || it.Quantity > MaxQuantity || it.Price < 0 {
			continue
		}
		restored = append(restored, it)
	}

	s.mu.Lock()
	s.items = restored
	s.mu.Unlock()
}

// Lock rejects item mutations until Unlock is called.
func (s *Store) Lock() {
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
}

func (s *Store) Unlock() {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
}

// Locked reports whether item mutations are currently rejected.
func (s *Store) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

// Items returns a copy of the lines.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItems()
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	return s.Snapshot().TotalItems
}

// TotalPrice is the sum of price times quantity over all lines.
func (s *Store) TotalPrice() decimal.Decimal {
	return s.Snapshot().TotalPrice
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// Snapshot copies the lines and computes the totals under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	items := s.copyItems()
	s.mu.RUnlock()

	return NewSnapshot(items)
}

// NewSnapshot derives the totals for items.
func NewSnapshot(items []models.CartItem) Snapshot {
	snap := Snapshot{Items: items, TotalPrice: decimal.Zero}
	for _, it := range items {
		snap.TotalItems += it.Quantity
		snap.TotalPrice = snap.TotalPrice.Add(LineTotal(it))
	}
	return snap
}

// LineTotal is price times quantity for one line.
func LineTotal(it models.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Subscribe registers fn to receive a snapshot after every mutation. Snapshots arrive in
// mutation order; fn must not mutate the cart.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// mutate runs fn under the item lock and, if it succeeds, hands the resulting snapshot to every
// subscriber before the next mutation can start.
func (s *Store) mutate(fn func() error) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := NewSnapshot(s.copyItems())
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub)
	}
	s.subMu.Unlock()

	for _, sub := range fns {
		sub(snap)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}
