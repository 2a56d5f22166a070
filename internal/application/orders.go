package application

import (
	"context"
	"sync"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/Ralet11/cocina-orders/internal/logger"
	"github.com/Ralet11/cocina-orders/internal/repository"
)

// OrderStore is the canonical in-memory representation of orders: one
// draft per user, an active set, and a historic set for orders that
// reached a terminal state. It is mutated by exactly two producers, the
// checkout commit and the event channel, and both funnel status changes
// through the monotonic transition rule, so duplicated or reordered
// events converge to the same state.
//
// A pgx repository sits behind the maps so committed orders survive a
// restart; the cache stays authoritative when a write fails.
type OrderStore struct {
	repo repository.OrderRepo

	mu       sync.RWMutex
	drafts   map[string]*domain.OrderDraft
	active   map[int64]*domain.Order
	historic map[int64]*domain.Order
}

func NewOrderStore(repo repository.OrderRepo) *OrderStore {
	return &OrderStore{
		repo:     repo,
		drafts:   make(map[string]*domain.OrderDraft),
		active:   make(map[int64]*domain.Order),
		historic: make(map[int64]*domain.Order),
	}
}

// DraftPatch carries the fields a caller wants merged into the draft.
// Nil fields are left untouched.
type DraftPatch struct {
	PartnerID       *int64
	Price           *float64
	DeliveryFee     *float64
	FinalPrice      *float64
	DeliveryAddress *string
	Items           []domain.CartItem
}

// SetDraft merges the patch into the user's draft, creating an empty
// draft on first touch, and returns a copy of the result.
func (s *OrderStore) SetDraft(userID string, patch DraftPatch) domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.drafts[userID]
	if d == nil {
		d = &domain.OrderDraft{UserID: userID, Status: domain.StatusPending}
		s.drafts[userID] = d
	}
	if patch.PartnerID != nil {
		d.PartnerID = *patch.PartnerID
	}
	if patch.Price != nil {
		d.Price = *patch.Price
	}
	if patch.DeliveryFee != nil {
		d.DeliveryFee = *patch.DeliveryFee
	}
	if patch.FinalPrice != nil {
		d.FinalPrice = *patch.FinalPrice
	}
	if patch.DeliveryAddress != nil {
		d.DeliveryAddress = *patch.DeliveryAddress
	}
	if patch.Items != nil {
		d.Items = patch.Items
	}
	return *d
}

// Draft returns a copy of the user's current draft.
func (s *OrderStore) Draft(userID string) domain.OrderDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d := s.drafts[userID]; d != nil {
		return *d
	}
	return domain.OrderDraft{UserID: userID, Status: domain.StatusPending}
}

// ClearDraft resets the user's draft to empty (explicit cancel).
func (s *OrderStore) ClearDraft(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}

// CommitDraftAsOrder moves the draft into the active set under the
// server-issued id, resets the draft, and persists the order. Items are
// the server's echo of the submitted lines.
func (s *OrderStore) CommitDraftAsOrder(ctx context.Context, userID string, serverOrder *domain.Order, serverItems []domain.CartItem) *domain.Order {
	o := *serverOrder
	if len(serverItems) > 0 {
		o.Items = serverItems
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	o.UserID = userID

	s.mu.Lock()
	s.active[o.ID] = &o
	delete(s.drafts, userID)
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveOrder(ctx, &o); err != nil {
			logger.Warn("persist committed order failed", "id", o.ID, "err", err)
		}
	}
	return &o
}

// Adopt registers an order fetched from the backend if the store has no
// copy yet, healing the race where a status event or a deep-link return
// arrives before the submission response registered the order locally.
func (s *OrderStore) Adopt(ctx context.Context, o *domain.Order) *domain.Order {
	s.mu.Lock()
	if existing, ok := s.lookup(o.ID); ok {
		s.mu.Unlock()
		return existing
	}
	cp := *o
	if cp.Status == "" {
		cp.Status = domain.StatusPending
	}
	if cp.Status.Terminal() {
		s.historic[cp.ID] = &cp
	} else {
		s.active[cp.ID] = &cp
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveOrder(ctx, &cp); err != nil {
			logger.Warn("persist adopted order failed", "id", cp.ID, "err", err)
		}
	}
	return &cp
}

// UpdateStatus applies a status change through the state machine. An
// invalid forward transition, a duplicate, or an unknown order id is a
// no-op: at-least-once delivery makes all three expected, never fatal.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID int64, newStatus domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.lookup(orderID)
	if !ok {
		logger.Warn("status update for unknown order; ignored", "id", orderID, "status", newStatus)
		return
	}
	if !domain.CanAdvance(o.Status, newStatus) {
		return
	}
	o.Status = newStatus
	if newStatus.Terminal() {
		delete(s.active, orderID)
		s.historic[orderID] = o
	}

	// persisted before the lock is released, so writes reach the
	// repository in apply order and a restart restores the same state
	if s.repo != nil {
		if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
			logger.Warn("persist status update failed", "id", orderID, "err", err)
		}
	}
}

// FindById searches the active set first, then historic.
func (s *OrderStore) FindById(orderID int64) *domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.lookup(orderID); ok {
		cp := *o
		return &cp
	}
	return nil
}

// Active returns the user's orders that have not reached a terminal state.
func (s *OrderStore) Active(userID string) []*domain.Order {
	return s.collect(s.active, userID)
}

// Historic returns the user's orders retained after a terminal state.
func (s *OrderStore) Historic(userID string) []*domain.Order {
	return s.collect(s.historic, userID)
}

// RestoreCache reloads recent orders from the repository into the
// active/historic sets after a restart.
func (s *OrderStore) RestoreCache(ctx context.Context, limit int) error {
	if s.repo == nil {
		return nil
	}
	orders, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return err
	}

	active := make(map[int64]*domain.Order, len(orders))
	historic := make(map[int64]*domain.Order, len(orders))
	for _, o := range orders {
		if o.Status.Terminal() {
			historic[o.ID] = o
		} else {
			active[o.ID] = o
		}
	}

	s.mu.Lock()
	s.active = active
	s.historic = historic
	s.mu.Unlock()
	return nil
}

// lookup must be called with the mutex held.
func (s *OrderStore) lookup(orderID int64) (*domain.Order, bool) {
	if o, ok := s.active[orderID]; ok {
		return o, true
	}
	if o, ok := s.historic[orderID]; ok {
		return o, true
	}
	return nil, false
}

func (s *OrderStore) collect(set map[int64]*domain.Order, userID string) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Order
	for _, o := range set {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}
