package repositories

import (
	"context"

	"storeapi/internal/models"
)

// ProductFilter narrows product queries. Empty fields are ignored.
type ProductFilter struct {
	Name      string
	Category  string
	ExcludeID string
}

// ProductRepository defines the interface for product data access.
// FindByPK returns (nil, nil) when no row matches. Paginate orders by
// creation time and returns the page together with the filtered total.
type ProductRepository interface {
	FindByPK(ctx context.Context, id string) (*models.Product, error)
	Exists(ctx context.Context, filter ProductFilter) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Paginate(ctx context.Context, filter ProductFilter, limit, offset int) ([]models.Product, int64, error)
}
