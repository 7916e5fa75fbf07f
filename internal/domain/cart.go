package domain

import "time"

// Cart is one principal's mutable set of lines. At most one line per
// product; quantities are always >= 1.
type Cart struct {
	Principal Principal  `bson:"principal"`
	Lines     []CartLine `bson:"lines"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// CartLine holds a product reference plus quantity. Pricing is not
// captured here; the summary resolves it at read time.
type CartLine struct {
	ProductID string    `bson:"product_id"`
	Quantity  int       `bson:"quantity"`
	AddedAt   time.Time `bson:"added_at"`
}

// CartItem is a cart line with its product resolved against the live
// catalog.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartSummary is derived state, never stored: lines resolved against
// current product records, with the total recomputed on every read.
type CartSummary struct {
	Items       []CartItem `json:"items"`
	TotalAmount int64      `json:"total_amount"`
}
