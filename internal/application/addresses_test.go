package application

import (
	"testing"

	"github.com/Ralet11/cocina-orders/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressBookUpsertSelectsNewAddress(t *testing.T) {
	book := NewAddressBook()
	assert.Nil(t, book.Current("u1"))

	saved := book.Upsert("u1", domain.Address{Street: "Tverskaya, 1", Type: domain.AddressHome})
	require.NotEmpty(t, saved.ID)

	cur := book.Current("u1")
	require.NotNil(t, cur)
	assert.Equal(t, "Tverskaya, 1", cur.Street)
}

func TestAddressBookDefaultsType(t *testing.T) {
	book := NewAddressBook()
	saved := book.Upsert("u1", domain.Address{Street: "Arbat, 5"})
	assert.Equal(t, domain.AddressOther, saved.Type)
}

func TestAddressBookSelectCurrent(t *testing.T) {
	book := NewAddressBook()
	home := book.Upsert("u1", domain.Address{Street: "Tverskaya, 1", Type: domain.AddressHome})
	work := book.Upsert("u1", domain.Address{Street: "Presnenskaya, 8", Type: domain.AddressWork})

	// the latest upsert is current
	assert.Equal(t, work.Street, book.Current("u1").Street)

	require.NoError(t, book.SelectCurrent("u1", home.ID))
	assert.Equal(t, home.Street, book.Current("u1").Street)

	assert.ErrorIs(t, book.SelectCurrent("u1", "missing"), ErrAddressNotFound)
	assert.ErrorIs(t, book.SelectCurrent("u2", home.ID), ErrAddressNotFound)
}

func TestAddressBookCurrentReturnsCopy(t *testing.T) {
	book := NewAddressBook()
	book.Upsert("u1", domain.Address{Street: "Tverskaya, 1"})

	cur := book.Current("u1")
	cur.Street = "mutated"

	assert.Equal(t, "Tverskaya, 1", book.Current("u1").Street)
}
