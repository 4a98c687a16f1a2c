package repositories

import (
	"context"
	"errors"
	"fmt"

	"storeapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) scoped(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ExcludeID != "" {
		q = q.Where("id <> ?", filter.ExcludeID)
	}
	return q
}

// FindByPK retrieves a single product by its ID from the database.
func (r *GORMProductRepository) FindByPK(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Exists reports whether any product matches the filter.
func (r *GORMProductRepository) Exists(ctx context.Context, filter ProductFilter) (bool, error) {
	var n int64
	if err := r.scoped(ctx, filter).Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return n > 0, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update writes every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("created_at").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of products matching the filter.
func (r *GORMProductRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	var n int64
	if err := r.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Paginate returns one page of matching products and the total match count.
func (r *GORMProductRepository) Paginate(ctx context.Context, filter ProductFilter, limit, offset int) ([]models.Product, int64, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	products := make([]models.Product, 0, limit)
	if err := r.scoped(ctx, filter).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to paginate products: %w", err)
	}
	return products, total, nil
}
