package domain

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// Address is a deliverable destination. Exactly one address is "current"
// per user; selection is a pointer, but an order snapshots the street
// string by value at submission time, so later edits never rewrite a
// submitted order's recorded destination.
type Address struct {
	ID        string      `json:"id"`
	Street    string      `json:"street"`
	Floor     string      `json:"floor"`
	Comments  string      `json:"comments"`
	Type      AddressType `json:"type"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	ZipCode   string      `json:"zip_code"`
	Country   string      `json:"country"`
}
