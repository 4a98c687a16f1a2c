package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/repositories"
	"storeapi/pkg/pagination"
)

// EventPublisher delivers catalog events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("products"),
	}
}

// FindAll returns one page of the whole catalog.
func (s *ProductService) FindAll(ctx context.Context, q models.PaginationQuery) (*models.PaginatedResult[models.Product], error) {
	return s.paginate(ctx, repositories.ProductFilter{}, q)
}

// FindByCategory returns one page of the products in category.
func (s *ProductService) FindByCategory(ctx context.Context, category string, q models.PaginationQuery) (*models.PaginatedResult[models.Product], error) {
	return s.paginate(ctx, repositories.ProductFilter{Category: category}, q)
}

func (s *ProductService) paginate(ctx context.Context, filter repositories.ProductFilter, q models.PaginationQuery) (*models.PaginatedResult[models.Product], error) {
	records, total, err := s.repo.Paginate(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &models.PaginatedResult[models.Product]{
		Records:    records,
		Pagination: pagination.Compute(total, q.Limit, q.Offset),
	}, nil
}

// FindByID returns the product or nil when it does not exist.
func (s *ProductService) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.FindByPK(ctx, id)
}

// Create adds a product whose name is not used yet.
func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	taken, err := s.repo.Exists(ctx, repositories.ProductFilter{Name: req.Name})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrDuplicateProductName
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrDuplicateProductName.WrapParent(err)
		}
		return nil, err
	}

	s.publish(ctx, models.EventProductCreated, product)
	return product, nil
}

// Update applies the present fields of patch to an existing product.
// The name is checked for uniqueness only when it actually changes.
func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	product, err := s.repo.FindByPK(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.ErrProductNotFound
	}

	if patch.Name != nil && *patch.Name != product.Name {
		taken, err := s.repo.Exists(ctx, repositories.ProductFilter{Name: *patch.Name, ExcludeID: id})
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.ErrDuplicateProductName
		}
	}

	patch.Apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperr.ErrDuplicateProductName.WrapParent(err)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperr.ErrProductNotFound.WrapParent(err)
		}
		return nil, err
	}

	s.publish(ctx, models.EventProductUpdated, product)
	return product, nil
}

// Delete removes an existing product.
func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	product, err := s.repo.FindByPK(ctx, id)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, apperr.ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.ErrProductNotFound.WrapParent(err)
		}
		return false, err
	}

	s.publish(ctx, models.EventProductDeleted, product)
	return true, nil
}

// GetTotalCount counts all products, or only those in category when it is not empty.
func (s *ProductService) GetTotalCount(ctx context.Context, category string) (int64, error) {
	return s.repo.Count(ctx, repositories.ProductFilter{Category: category})
}

// publish is best effort: a broker failure never fails the request.
func (s *ProductService) publish(ctx context.Context, eventType string, p *models.Product) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(models.ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		Name:       p.Name,
		Category:   p.Category,
		Price:      p.Price,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to marshal product event", zap.String("type", eventType), zap.Error(err))
		return
	}

	if err := s.publisher.Publish(ctx, eventType, body); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("published product event", zap.String("type", eventType), zap.String("product_id", p.ID))
}
