package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a purchased product.
type Review struct {
	ID        int64
	ProductID int64
	UserID    int64
	UserName  string
	Content   string
	Rating    int
	CreatedAt time.Time
}
