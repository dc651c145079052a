package cart

import (
	"slices"
	"sync"

	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/shopspring/decimal"
)

// Subscriber receives the new cart state after every change.
// Subscribers run synchronously on the mutating goroutine; they may query the store but must not
// mutate it.
type Subscriber func(Snapshot)

type subscription struct {
	id uint64
	fn Subscriber
}

// Store is the single owner of the cart. All methods are safe for concurrent use; each one is
// applied atomically and readers always see a complete cart.
type Store struct {
	// writeMu serializes mutations together with their publication, so subscribers see versions in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	lines   []Line
	version uint64

	subMu     sync.Mutex
	subs      []subscription
	nextSubID uint64
}

// NewStore creates an empty cart.
func NewStore() *Store {
	return &Store{
		lines: make([]Line, 0),
	}
}

// Add puts one unit of product into the cart. A product already in the cart gets its quantity
// incremented; a new product is appended with quantity 1.
func (s *Store) Add(product catalog.Product) {
	s.mutate(func() bool {
		if i := indexOf(s.lines, product.ID); i >= 0 {
			s.lines[i].Quantity++
			return true
		}
		s.lines = append(s.lines, newLine(product))
		return true
	})
}

// Remove deletes the line for id. Removing an absent product is a no-op.
func (s *Store) Remove(id catalog.ProductID) {
	s.mutate(func() bool {
		return s.removeLocked(id)
	})
}

// SetQuantity replaces the quantity of an existing line. A quantity <= 0 removes the line.
// Setting the quantity of a product that is not in the cart does nothing.
func (s *Store) SetQuantity(id catalog.ProductID, quantity int) {
	s.mutate(func() bool {
		if quantity <= 0 {
			return s.removeLocked(id)
		}
		i := indexOf(s.lines, id)
		if i < 0 || s.lines[i].Quantity == quantity {
			return false
		}
		s.lines[i].Quantity = quantity
		return true
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = make([]Line, 0)
		return true
	})
}

// ClearIfVersion empties the cart only if it is still at version. It reports whether the cart
// was cleared. Checkout uses it so that items added while an order was being placed survive.
func (s *Store) ClearIfVersion(version uint64) bool {
	cleared := false
	s.mutate(func() bool {
		if s.version != version || len(s.lines) == 0 {
			return false
		}
		s.lines = make([]Line, 0)
		cleared = true
		return true
	})
	return cleared
}

// Total is the sum of price times quantity; zero for an empty cart.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.lines)
}

// ItemCount is the number of units in the cart (a line with quantity 3 counts 3).
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemCount(s.lines)
}

// Contains reports whether the product is in the cart.
func (s *Store) Contains(id catalog.ProductID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.lines, id) >= 0
}

// Lines returns a copy of the cart lines in insertion order. Never nil.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

// Snapshot returns a consistent copy of the cart and its version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called with every new cart state. The returned function
// unregisters it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
	}
}

// mutate applies change under the write lock and, if it reports a change, bumps the version and
// publishes the new snapshot before returning.
func (s *Store) mutate(change func() bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !change() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *Store) removeLocked(id catalog.ProductID) bool {
	i := indexOf(s.lines, id)
	if i < 0 {
		return false
	}
	s.lines = slices.Delete(s.lines, i, i+1)
	return true
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:   slices.Clone(s.lines),
		Version: s.version,
	}
}
