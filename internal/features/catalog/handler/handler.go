package handler

import (
	"net/http"

	"microshop/internal/core/apperr"
	"microshop/internal/features/catalog/domain"
	"microshop/internal/features/catalog/ports"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// Register mounts the catalog routes on r. Reads are public, writes go through auth.
func (h *ProductHandler) Register(r fiber.Router, auth fiber.Handler) {
	r.Get("/", h.ListProducts)
	r.Get("/:id", h.GetProduct)
	r.Post("/", auth, h.CreateProduct)
	r.Put("/:id", auth, h.UpdateProduct)
	r.Delete("/:id", auth, h.DeleteProduct)
}

// ProductResponse is the success envelope for a single product.
type ProductResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Product `json:"data"`
}

// ProductListResponse is the success envelope for a product list.
type ProductListResponse struct {
	Success bool             `json:"success"`
	Data    []domain.Product `json:"data"`
}

// ListProducts handles GET /.
// @Summary List products
// @Description Returns every product, newest first.
// @Tags Catalog
// @Produce json
// @Success 200 {object} ProductListResponse
// @Failure 500 {object} map[string]string
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch products")
	}

	return c.Status(http.StatusOK).JSON(ProductListResponse{Success: true, Data: products})
}

// GetProduct handles GET /:id.
// @Summary Get a product
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch product")
	}

	return c.Status(http.StatusOK).JSON(ProductResponse{Success: true, Data: product})
}

// CreateProduct handles POST /.
// @Summary Create a product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductInput true "Product details"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create product")
	}

	return c.Status(http.StatusCreated).JSON(ProductResponse{Success: true, Data: product})
}

// UpdateProduct handles PUT /:id.
// @Summary Update a product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product body domain.ProductInput true "Product details"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update product")
	}

	return c.Status(http.StatusOK).JSON(ProductResponse{Success: true, Data: product})
}

// DeleteProduct handles DELETE /:id.
// @Summary Delete a product
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return apperr.Respond(c, err, "")
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err, "Failed to delete product")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func productID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, apperr.NewValidation("Invalid product id")
	}
	return int64(id), nil
}
