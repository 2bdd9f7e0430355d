package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var errNotFound = errors.New("not found")

// decimalEqual lets cmp compare prices numerically.
var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// fakeService is an in-memory Service. Deletes block on gate when set.
type fakeService struct {
	mu       sync.Mutex
	products []Product
	nextID   int
	calls    map[string]int
	fail     map[string]error
	gate     map[string]chan struct{}
	created  []Product
}

func newFakeService(products ...Product) *fakeService {
	return &fakeService{
		products: products,
		calls:    make(map[string]int),
		fail:     make(map[string]error),
		gate:     make(map[string]chan struct{}),
	}
}

func (s *fakeService) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.fail[op]
}

func (s *fakeService) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeService) ListProducts(ctx context.Context) ([]Product, error) {
	if err := s.record("list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.products...), nil
}

func (s *fakeService) GetProduct(ctx context.Context, id string) (Product, error) {
	if err := s.record("get"); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, idx := FindByID(s.products, id)
	if idx < 0 {
		return Product{}, errNotFound
	}
	return p, nil
}

func (s *fakeService) CreateProduct(ctx context.Context, draft Product) (Product, error) {
	if err := s.record("create"); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.created = append(s.created, draft)
	draft.ID = fmt.Sprintf("p-%d", s.nextID)
	s.products = append(s.products, draft)
	return draft, nil
}

func (s *fakeService) UpdateProduct(ctx context.Context, id string, draft Product) (Product, error) {
	if err := s.record("update"); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, idx := FindByID(s.products, id)
	if idx < 0 {
		return Product{}, errNotFound
	}
	draft.ID = id
	s.products[idx] = draft
	return draft, nil
}

func (s *fakeService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.record("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	gate := s.gate[id]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, idx := FindByID(s.products, id)
	if idx < 0 {
		return errNotFound
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	return nil
}

func product(id, name string, qty int, price string) Product {
	return Product{ID: id, Name: name, Model: "M-" + name, Quantity: qty, Price: decimal.RequireFromString(price)}
}
