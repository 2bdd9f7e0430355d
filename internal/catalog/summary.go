package catalog

import "github.com/shopspring/decimal"

// Summary is the dashboard rollup of a product list.
type Summary struct {
	Products       int
	Units          int
	InventoryValue decimal.Decimal
	LowStock       int
	OutOfStock     int
}

// Summarize totals products.
func Summarize(products []Product) Summary {
	s := Summary{Products: len(products), InventoryValue: decimal.Zero}
	for _, p := range products {
		s.Units += p.Quantity
		s.InventoryValue = s.InventoryValue.Add(p.Value())
		switch p.Stock() {
		case LowStock:
			s.LowStock++
		case OutOfStock:
			s.OutOfStock++
		}
	}
	return s
}
