package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"katalog/internal/models"
	"katalog/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Fixed
// paths are registered before the :id parameter so it does not capture
// them.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/total-value", h.HandleGetTotalValue)
	productRoutes.Get("/active", h.HandleGetActiveProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its id.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be an integer",
			"error":   err.Error(),
		})
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.respondServiceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := h.service.CreateProduct(&product)
	if err != nil {
		return h.respondServiceError(c, err, "Could not create product")
	}

	c.Set(fiber.HeaderLocation, fmt.Sprintf("%s/%d", c.Path(), created.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct overwrites an existing product. The id in the path
// wins over any id in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be an integer",
			"error":   err.Error(),
		})
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	updated, err := h.service.UpdateProduct(id, &product)
	if err != nil {
		return h.respondServiceError(c, err, "Could not update product")
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its id.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product ID must be an integer",
			"error":   err.Error(),
		})
	}

	deleted, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.respondServiceError(c, err, "Could not delete product")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearchProducts searches products by the searchTerm query
// parameter. A blank term returns the full catalog.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	term := c.Query("searchTerm")

	products, err := h.service.SearchProducts(term)
	if err != nil {
		log.Printf("Error searching products for %q: %v", term, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetTotalValue returns the summed price of all active products.
func (h *ProductHandler) HandleGetTotalValue(c *fiber.Ctx) error {
	total, err := h.service.CalculateTotalValue()
	if err != nil {
		log.Printf("Error calculating total value: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not calculate total value",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"totalValue": total})
}

// HandleGetActiveProducts returns only active products.
func (h *ProductHandler) HandleGetActiveProducts(c *fiber.Ctx) error {
	products, err := h.service.GetActiveProducts()
	if err != nil {
		log.Printf("Error getting active products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve active products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// respondServiceError maps the service's sentinel conditions to HTTP
// statuses: invalid input to 400, not found to 404, anything else to 500.
func (h *ProductHandler) respondServiceError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	default:
		log.Printf("%s: %v", message, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}

func parseProductID(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("id"))
}
