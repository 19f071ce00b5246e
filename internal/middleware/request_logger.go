package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id, exposes a request-scoped
// logger through the user context and writes one access line when the
// request completes.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		log := base.With().Str("request_id", requestID).Logger()
		c.SetUserContext(log.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		event := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")

		return err
	}
}
