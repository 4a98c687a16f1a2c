package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/services"
	"storeapi/pkg/validator"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate validator.Validator
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, v validator.Validator, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: v,
		logger:   logger,
	}
}

// RegisterRoutes registers the product routes. Reads are public, writes go
// through guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/count", h.HandleCountProducts)
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guard, h.HandleCreateProduct)
	productRoutes.Patch("/:id", guard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guard, h.HandleDeleteProduct)
}

func (h *ProductHandler) pageQuery(c *fiber.Ctx) (models.PaginationQuery, error) {
	q := models.DefaultPaginationQuery()
	if err := c.QueryParser(&q); err != nil {
		return q, errInvalidQuery.WrapParent(err)
	}
	if err := h.validate.Validate(q); err != nil {
		return q, err
	}
	return q, nil
}

// HandleGetProducts returns one page of the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	q, err := h.pageQuery(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.service.FindAll(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}

// HandleGetProductsByCategory returns one page of a single category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	q, err := h.pageQuery(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.service.FindByCategory(c.UserContext(), c.Params("category"), q)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}

// HandleCountProducts counts products, optionally within ?category=.
func (h *ProductHandler) HandleCountProducts(c *fiber.Ctx) error {
	count, err := h.service.GetTotalCount(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if product == nil {
		return respondError(c, h.logger, apperr.ErrProductNotFound)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	product, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := bindBody(c, h.validate, &patch); err != nil {
		return respondError(c, h.logger, err)
	}

	product, err := h.service.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	deleted, err := h.service.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
