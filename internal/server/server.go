package server

import (
	"errors"

	"inventario/internal/handlers"
	"inventario/internal/middleware"
	"inventario/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Options configures the HTTP application.
type Options struct {
	AppName     string
	CORSEnabled bool
	Logger      zerolog.Logger
	Service     *services.ProductService
}

// New builds the Fiber app with every route mounted under /api.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// The request logger wraps recover so panics still get an access line.
	app.Use(middleware.RequestLogger(opts.Logger))
	app.Use(recover.New())
	if opts.CORSEnabled {
		app.Use(cors.New())
	}

	api := app.Group("/api")
	handlers.NewProductHandler(opts.Service).RegisterRoutes(api)
	handlers.NewHealthHandler().RegisterRoutes(api)

	return app
}

// errorHandler keeps framework errors (unknown routes, panics) in the same
// JSON shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("unhandled error")
		message = "internal server error"
	}
	return c.Status(code).JSON(handlers.ErrorResponse{Error: message})
}
