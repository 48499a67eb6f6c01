package domain

import "time"

// MaxPrice and MaxOrderQuantity bound order totals well inside int64.
const (
	MaxPrice         int64 = 100_000_000_000
	MaxOrderQuantity       = 1000
)

// Product is a catalogue item listed by a seller. Price is in minor currency units.
type Product struct {
	ID            int64     `json:"id"`
	SellerID      int64     `json:"seller_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	Price         int64     `json:"price"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int64     `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
