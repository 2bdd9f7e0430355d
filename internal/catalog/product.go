// Package catalog holds the product model and the client-side state machines
// that edit and list products: the form and the list controller.
package catalog

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is one catalog item as the remote API represents it.
type Product struct {
	ID          string          `json:"_id,omitempty"`
	Name        string          `json:"name"`
	Model       string          `json:"productModel"`
	Origin      string          `json:"productOrigin"`
	Brand       string          `json:"brand,omitempty"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       Image           `json:"image"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}

// MarshalJSON emits price as a JSON number and omits an absent image.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	aux := struct {
		alias
		Price json.Number `json:"price"`
		Image *Image      `json:"image,omitempty"`
	}{
		alias: alias(p),
		Price: json.Number(p.Price.String()),
	}
	if !p.Image.IsZero() {
		img := p.Image
		aux.Image = &img
	}
	return json.Marshal(aux)
}

// IsNew reports whether the product has no server-assigned identity yet.
func (p Product) IsNew() bool {
	return p.ID == ""
}

// Stock returns the presentation label for the product's quantity.
func (p Product) Stock() StockLevel {
	return StockLevelOf(p.Quantity)
}

// Value is price times quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// FindByID returns the product with id and its index, or -1.
func FindByID(products []Product, id string) (Product, int) {
	for i, p := range products {
		if p.ID == id {
			return p, i
		}
	}
	return Product{}, -1
}
