package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storeapi/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (f ProductFilter) matches(p models.Product) bool {
	if f.Name != "" && p.Name != f.Name {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.ExcludeID != "" && p.ID == f.ExcludeID {
		return false
	}
	return true
}

// nameTaken must be called with the lock held.
func (r *MemoryProductRepository) nameTaken(name, exceptID string) bool {
	for _, p := range r.products {
		if p.Name == name && p.ID != exceptID {
			return true
		}
	}
	return false
}

// FindByPK returns a product by its ID.
func (r *MemoryProductRepository) FindByPK(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// Exists reports whether any product matches the filter.
func (r *MemoryProductRepository) Exists(_ context.Context, filter ProductFilter) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if filter.matches(p) {
			return true, nil
		}
	}
	return false, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, ok := r.products[product.ID]; ok || r.nameTaken(product.Name, "") {
		return fmt.Errorf("failed to create product %q: %w", product.Name, ErrDuplicate)
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	if r.nameTaken(product.Name, product.ID) {
		return fmt.Errorf("failed to update product %q: %w", product.Name, ErrDuplicate)
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// Count returns the number of products matching the filter.
func (r *MemoryProductRepository) Count(_ context.Context, filter ProductFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.products {
		if filter.matches(p) {
			n++
		}
	}
	return n, nil
}

// Paginate returns one page of matching products in creation order.
func (r *MemoryProductRepository) Paginate(_ context.Context, filter ProductFilter, limit, offset int) ([]models.Product, int64, error) {
	r.mu.RLock()
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.matches(p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}
