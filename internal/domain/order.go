package domain

import (
	"strings"
	"time"
)

// Status is the canonical order lifecycle state. Transport-level strings
// (including localized synonyms) are normalized into one of these five
// values before any transition logic runs.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusSending  Status = "sending"
	StatusFinished Status = "finished"
	StatusRejected Status = "rejected"
)

// FixedTaxes is the flat tax amount added to every order total at checkout.
const FixedTaxes = 0.54

// statusRank orders the forward sequence pending → accepted → sending →
// finished. StatusRejected sits outside the sequence: it is reachable
// only from pending.
var statusRank = map[Status]int{
	StatusPending:  0,
	StatusAccepted: 1,
	StatusSending:  2,
	StatusFinished: 3,
}

// CanAdvance reports whether from → to is a valid transition: `to` must
// be strictly later in the sequence, or be rejected while `from` is
// pending. Everything else, including from == to, is invalid; applying
// such an event must be a no-op.
func CanAdvance(from, to Status) bool {
	if to == StatusRejected {
		return from == StatusPending
	}
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusRejected
}

// statusAliases maps raw transport strings onto the canonical statuses.
// The backend mixes English identifiers with the Spanish display strings
// the partner dashboard emits.
var statusAliases = map[string]Status{
	"pending":    StatusPending,
	"pendiente":  StatusPending,
	"accepted":   StatusAccepted,
	"aceptada":   StatusAccepted,
	"aceptado":   StatusAccepted,
	"sending":    StatusSending,
	"enviando":   StatusSending,
	"en camino":  StatusSending,
	"finished":   StatusFinished,
	"finalizada": StatusFinished,
	"finalizado": StatusFinished,
	"entregada":  StatusFinished,
	"rejected":   StatusRejected,
	"rechazada":  StatusRejected,
	"rechazado":  StatusRejected,
}

// ParseStatus normalizes a raw transport string into a canonical Status.
func ParseStatus(raw string) (Status, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// Order is a submitted order with a server-assigned id. Status is the
// single source of truth for the lifecycle; DeliveryAddress is the
// street string snapshotted at submission time.
type Order struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	PartnerID       int64      `json:"partner_id"`
	Price           float64    `json:"price"`
	DeliveryFee     float64    `json:"delivery_fee"`
	FinalPrice      float64    `json:"final_price"`
	DeliveryAddress string     `json:"delivery_address"`
	Items           []CartItem `json:"items"`
	Status          Status     `json:"status"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// OrderDraft is the single in-progress order under assembly for a user.
// It has no id until the backend persists it.
type OrderDraft struct {
	UserID          string     `json:"user_id"`
	PartnerID       int64      `json:"partner_id"`
	Price           float64    `json:"price"`
	DeliveryFee     float64    `json:"delivery_fee"`
	FinalPrice      float64    `json:"final_price"`
	DeliveryAddress string     `json:"delivery_address"`
	Items           []CartItem `json:"items"`
	Status          Status     `json:"status"`
}
