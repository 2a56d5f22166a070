package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCanAdvance verifies the transition table: strictly-later forward
// moves only, rejected reachable only from pending.
func TestCanAdvance(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusPending, StatusAccepted, true},
		{StatusAccepted, StatusSending, true},
		{StatusSending, StatusFinished, true},
		// skipping ahead is still "strictly later", hence valid
		{StatusPending, StatusSending, true},
		{StatusPending, StatusFinished, true},
		{StatusAccepted, StatusFinished, true},
		// rejection only from pending
		{StatusPending, StatusRejected, true},
		{StatusAccepted, StatusRejected, false},
		{StatusSending, StatusRejected, false},
		{StatusFinished, StatusRejected, false},
		// no backward moves
		{StatusAccepted, StatusPending, false},
		{StatusSending, StatusAccepted, false},
		{StatusFinished, StatusSending, false},
		// self-loops are no-ops
		{StatusPending, StatusPending, false},
		{StatusAccepted, StatusAccepted, false},
		{StatusFinished, StatusFinished, false},
		{StatusRejected, StatusRejected, false},
		// terminal states have no exits
		{StatusFinished, StatusAccepted, false},
		{StatusRejected, StatusAccepted, false},
		{StatusRejected, StatusFinished, false},
	}
	for _, tc := range cases {
		got := CanAdvance(tc.from, tc.to)
		assert.Equalf(t, tc.want, got, "CanAdvance(%s, %s)", tc.from, tc.to)
	}
}

func TestParseStatusNormalizesSynonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"pending", StatusPending},
		{"Pendiente", StatusPending},
		{"aceptada", StatusAccepted},
		{"ACEPTADO", StatusAccepted},
		{"enviando", StatusSending},
		{"en camino", StatusSending},
		{"  finalizada ", StatusFinished},
		{"entregada", StatusFinished},
		{"rechazada", StatusRejected},
		{"rejected", StatusRejected},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.raw)
		assert.Truef(t, ok, "ParseStatus(%q)", tc.raw)
		assert.Equalf(t, tc.want, got, "ParseStatus(%q)", tc.raw)
	}

	_, ok := ParseStatus("preparing")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusFinished.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.False(t, StatusSending.Terminal())
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{22.54, 2254},
		{20.00, 2000},
		{0, 0},
		{0.01, 1},
		{9.99, 999},
		// fractional tenths of a cent floor away
		{10.999, 1099},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, MinorUnits(tc.amount), "MinorUnits(%v)", tc.amount)
	}
}

func TestLineTotalIncludesExtras(t *testing.T) {
	item := CartItem{
		UnitPrice: 10.0,
		Quantity:  2,
		ExtraIngredients: []Ingredient{
			{Name: "bacon", Price: 1.5},
			{Name: "cheese", Price: 0.5},
		},
	}
	assert.InDelta(t, 24.0, item.LineTotal(), 1e-9)
}
