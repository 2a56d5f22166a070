package domain

import "math"

// PaymentIntent is the payment session handed to the device's payment
// sheet. ClientSecret is opaque to this service.
type PaymentIntent struct {
	ID           string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// PaymentOutcome is the result of presenting the payment sheet. It is a
// closed set: cancellation is an outcome, not an error.
type PaymentOutcome string

const (
	PaymentConfirmed PaymentOutcome = "confirmed"
	PaymentCancelled PaymentOutcome = "cancelled"
	PaymentFailed    PaymentOutcome = "failed"
)

// OrderSubmission is the order-creation request sent to the backend.
// IdempotencyKey is the payment-intent id, so a retried submission after
// a timeout cannot create a second order for an already-charged payment.
type OrderSubmission struct {
	UserID          string     `json:"user_id"`
	PartnerID       int64      `json:"partner_id"`
	DeliveryAddress string     `json:"delivery_address"`
	Price           float64    `json:"price"`
	DeliveryFee     float64    `json:"delivery_fee"`
	FinalPrice      float64    `json:"final_price"`
	Items           []CartItem `json:"items"`
	IdempotencyKey  string     `json:"idempotency_key"`
}

// MinorUnits converts a decimal amount into integer minor currency
// units, floor-rounded. The epsilon keeps exact-cent amounts from
// landing one unit short of their true value.
func MinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 1e-6))
}
