package application

import (
	"sync"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/google/uuid"
)

// CartStore holds line items pending checkout, keyed by user. Pure local
// state: no network I/O, no persistence. Consumers read a snapshot at
// checkout time.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]domain.CartItem)}
}

// Add inserts the item, or replaces an existing line with the same id.
// Items without an id get one assigned.
func (s *CartStore) Add(userID string, item domain.CartItem) domain.CartItem {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.TotalPrice = item.LineTotal()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return item
		}
	}
	s.carts[userID] = append(items, item)
	return item
}

func (s *CartStore) Remove(userID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ID == itemID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// SetQuantity updates a line's quantity. Requests below 1 (a decrement
// past the floor) are silently ignored, as is an unknown item id.
func (s *CartStore) SetQuantity(userID, itemID string, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			items[i].TotalPrice = items[i].LineTotal()
			return
		}
	}
}

func (s *CartStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// Subtotal is the sum of line totals over the user's cart. It uses the
// same LineTotal the displayed TotalPrice does, so the amount charged at
// checkout always matches what the cart shows, extras included.
func (s *CartStore) Subtotal(userID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, it := range s.carts[userID] {
		sum += it.LineTotal()
	}
	return sum
}

// Snapshot returns a copy of the user's items; later cart mutations do
// not leak into an in-flight checkout.
func (s *CartStore) Snapshot(userID string) []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[userID]
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
