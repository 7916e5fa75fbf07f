package domain

import "time"

// Product is a catalog record. Price is in minor currency units
// (cents), never negative. ImageRefs are opaque blob-store references
// in display order.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       int64     `json:"price" bson:"price"`
	ImageRefs   []string  `json:"image_refs" bson:"image_refs"`
	Featured    bool      `json:"is_featured" bson:"is_featured"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
