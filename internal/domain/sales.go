package domain

// SalesStat aggregates non-cancelled orders of one product.
type SalesStat struct {
	ProductID     int64
	ProductName   string
	TotalQuantity int64
	TotalSales    int64
	AverageRating float64
}
