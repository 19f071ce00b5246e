package handlers

import (
	"time"

	"inventario/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductResponse is the wire form of a product.
type ProductResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	CreatedAt *string `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

// ProductListResponse is the body of GET /api/productos.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		CreatedAt: isoTime(p.CreatedAt),
		UpdatedAt: isoTime(p.UpdatedAt),
	}
}

func toProductListResponse(page *models.Page) ProductListResponse {
	products := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		products = append(products, toProductResponse(&page.Items[i]))
	}
	return ProductListResponse{
		Products:   products,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// isoTime renders t as RFC 3339 in UTC, or nil when t was never set.
func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func errorJSON(c *fiber.Ctx, status int, message string, details ...string) error {
	return c.Status(status).JSON(ErrorResponse{Error: message, Details: details})
}

// internalError logs err against the request and hides it from the client.
func internalError(c *fiber.Ctx, err error, msg string) error {
	zerolog.Ctx(c.UserContext()).Error().Err(err).Msg(msg)
	return errorJSON(c, fiber.StatusInternalServerError, "internal server error")
}
