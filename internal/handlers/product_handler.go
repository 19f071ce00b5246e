package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"inventario/internal/models"
	"inventario/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
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

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/productos", h.HandleCreateProduct)
	router.Get("/productos", h.HandleListProducts)
	router.Put("/productos/:id<int>/stock", h.HandleUpdateStock)
	router.Delete("/productos/:id<int>", h.HandleDeleteProduct)
}

// createProductRequest holds the strictly typed create fields. stock is
// coerced separately, with the same rules as the stock update.
type createProductRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// HandleCreateProduct handles POST /productos.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	body, ok := jsonObject(c.Body())
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "JSON data required")
	}

	var req createProductRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid field types", describeDecodeError(err))
	}
	fields := models.ProductFields{Name: req.Name, Price: req.Price}

	// An omitted stock means an empty shelf; an explicit null is still missing.
	switch rawStock, present := body["stock"]; {
	case !present:
		zero := 0
		fields.Stock = &zero
	case string(rawStock) != "null":
		stock, err := coerceInt(rawStock)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid field types", "stock must be an integer")
		}
		fields.Stock = &stock
	}

	product, err := h.service.CreateProduct(c.UserContext(), fields)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return errorJSON(c, fiber.StatusBadRequest, "Validation failed", verr.Details...)
		}
		return internalError(c, err, "failed to create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": toProductResponse(product),
	})
}

// HandleListProducts handles GET /productos?page=&page_size=.
// Unparseable values fall back to the defaults.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", defaultPage)
	pageSize := c.QueryInt("page_size", defaultPageSize)

	if page < 1 {
		return errorJSON(c, fiber.StatusBadRequest, "page must be greater than 0")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("page_size must be between 1 and %d", maxPageSize))
	}

	result, err := h.service.ListProducts(c.UserContext(), page, pageSize)
	if err != nil {
		return internalError(c, err, "failed to list products")
	}
	return c.JSON(toProductListResponse(result))
}

// HandleUpdateStock handles PUT /productos/:id/stock.
func (h *ProductHandler) HandleUpdateStock(c *fiber.Ctx) error {
	body, ok := jsonObject(c.Body())
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "stock field required")
	}
	rawStock, present := body["stock"]
	if !present {
		return errorJSON(c, fiber.StatusBadRequest, "stock field required")
	}
	stock, err := coerceInt(rawStock)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "stock must be an integer")
	}

	id, ok := productID(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, models.ErrProductNotFound.Error())
	}

	product, err := h.service.UpdateStock(c.UserContext(), id, stock)
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNegativeStock):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return internalError(c, err, "failed to update stock")
	}

	return c.JSON(fiber.Map{
		"message": "Stock updated successfully",
		"product": toProductResponse(product),
	})
}

// HandleDeleteProduct handles DELETE /productos/:id.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, models.ErrProductNotFound.Error())
	}

	err := h.service.DeleteProduct(c.UserContext(), id)
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case err != nil:
		return internalError(c, err, "failed to delete product")
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// jsonObject decodes body as a non-empty JSON object.
func jsonObject(body []byte) (map[string]json.RawMessage, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

// productID reads the :id path segment. Ids are positive.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// coerceInt accepts JSON numbers (fractions truncated) and base-10 integer
// strings such as "50" or " 010 ".
func coerceInt(raw json.RawMessage) (int, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case string:
		// cast would honour 0x/0o/0b prefixes and read "010" as octal.
		return strconv.Atoi(strings.TrimSpace(n))
	case float64:
		if math.IsNaN(n) || n <= math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%s is out of range", raw)
		}
	case nil, bool:
		return 0, fmt.Errorf("%s is not an integer", raw)
	}
	return cast.ToIntE(v)
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must not be a JSON %s", typeErr.Field, typeErr.Value)
	}
	return err.Error()
}
