package catalog

import "context"

// Service is the remote product store. *api.Client implements it.
type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, draft Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, draft Product) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
