package loadtest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Client issues inventory API calls against one host.
type Client struct {
	base    string
	timeout time.Duration
}

// NewClient returns a client for host, e.g. http://localhost:5000.
func NewClient(host string, timeout time.Duration) *Client {
	return &Client{base: strings.TrimRight(host, "/"), timeout: timeout}
}

type productBody struct {
	Product struct {
		ID uint `json:"id"`
	} `json:"product"`
}

// Health calls GET /api/health.
func (c *Client) Health() error {
	return c.expect(http.StatusOK, fiber.Get(c.url("/api/health")))
}

// List calls GET /api/productos with the given page.
func (c *Client) List(page, pageSize int) error {
	return c.expect(http.StatusOK, fiber.Get(c.url(fmt.Sprintf("/api/productos?page=%d&page_size=%d", page, pageSize))))
}

// Create calls POST /api/productos and returns the new product id.
func (c *Client) Create(name string, price float64, stock int) (uint, error) {
	agent := fiber.Post(c.url("/api/productos")).
		JSON(fiber.Map{"name": name, "price": price, "stock": stock}).
		Timeout(c.timeout)

	var body productBody
	code, _, errs := agent.Struct(&body)
	if len(errs) > 0 {
		return 0, errs[0]
	}
	if code != http.StatusCreated {
		return 0, fmt.Errorf("POST /api/productos: unexpected status %d", code)
	}
	return body.Product.ID, nil
}

// UpdateStock calls PUT /api/productos/:id/stock.
func (c *Client) UpdateStock(id uint, stock int) error {
	agent := fiber.Put(c.url(fmt.Sprintf("/api/productos/%d/stock", id))).JSON(fiber.Map{"stock": stock})
	return c.expect(http.StatusOK, agent)
}

// Delete calls DELETE /api/productos/:id.
func (c *Client) Delete(id uint) error {
	return c.expect(http.StatusOK, fiber.Delete(c.url(fmt.Sprintf("/api/productos/%d", id))))
}

func (c *Client) url(path string) string {
	return c.base + path
}

func (c *Client) expect(status int, agent *fiber.Agent) error {
	req := agent.Request()
	method, uri := string(req.Header.Method()), string(req.RequestURI())

	code, _, errs := agent.Timeout(c.timeout).Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if code != status {
		return fmt.Errorf("%s %s: unexpected status %d", method, uri, code)
	}
	return nil
}
