package domain

// Ingredient is immutable reference data fetched per product. Included
// and extra ingredients are a fixed partition of the same type, never a
// runtime toggle on one entity.
type Ingredient struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Included bool    `json:"included"`
	Calories int     `json:"calories"`
}

// CartItem is a line item pending checkout. It lives only in the cart:
// checkout submission or an explicit clear destroys it.
type CartItem struct {
	ID                  string       `json:"id"`
	ProductID           int64        `json:"product_id"`
	Name                string       `json:"name"`
	UnitPrice           float64      `json:"unit_price"`
	Quantity            int          `json:"quantity"`
	IncludedIngredients []Ingredient `json:"included_ingredients"`
	ExtraIngredients    []Ingredient `json:"extra_ingredients"`
	TotalPrice          float64      `json:"total_price"`
}

// LineTotal is the item price with extras, multiplied by quantity.
func (i CartItem) LineTotal() float64 {
	unit := i.UnitPrice
	for _, ing := range i.ExtraIngredients {
		unit += ing.Price
	}
	return unit * float64(i.Quantity)
}
