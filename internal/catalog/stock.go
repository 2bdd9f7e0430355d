package catalog

// StockLevel is the presentation label derived from a quantity.
type StockLevel string

const (
	InStock    StockLevel = "in stock"
	LowStock   StockLevel = "low stock"
	OutOfStock StockLevel = "out of stock"
)

// LowStockThreshold is the largest quantity still labelled low stock.
const LowStockThreshold = 10

// StockLevelOf maps quantity to its label: >10 in stock, 1..10 low stock, 0 out of stock.
func StockLevelOf(quantity int) StockLevel {
	switch {
	case quantity > LowStockThreshold:
		return InStock
	case quantity > 0:
		return LowStock
	default:
		return OutOfStock
	}
}
