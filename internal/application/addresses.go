package application

import (
	"errors"
	"sync"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/google/uuid"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressBook holds each user's saved addresses and which one is
// current. Selection is a pointer; the order snapshot at submission time
// copies the street string by value.
type AddressBook struct {
	mu      sync.RWMutex
	byUser  map[string]map[string]*domain.Address
	current map[string]string
}

func NewAddressBook() *AddressBook {
	return &AddressBook{
		byUser:  make(map[string]map[string]*domain.Address),
		current: make(map[string]string),
	}
}

// Upsert saves the address and makes it the user's current one, matching
// the screens' behavior of selecting whatever was just entered.
func (b *AddressBook) Upsert(userID string, addr domain.Address) domain.Address {
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	if addr.Type == "" {
		addr.Type = domain.AddressOther
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.byUser[userID]
	if set == nil {
		set = make(map[string]*domain.Address)
		b.byUser[userID] = set
	}
	cp := addr
	set[addr.ID] = &cp
	b.current[userID] = addr.ID
	return addr
}

// SelectCurrent repoints the user's current address.
func (b *AddressBook) SelectCurrent(userID, addressID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byUser[userID][addressID]; !ok {
		return ErrAddressNotFound
	}
	b.current[userID] = addressID
	return nil
}

// Current returns a copy of the user's current address, or nil when none
// has been selected.
func (b *AddressBook) Current(userID string) *domain.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.current[userID]
	if !ok {
		return nil
	}
	a, ok := b.byUser[userID][id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}
