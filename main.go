package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventario/internal/config"
	"inventario/internal/logger"
	"inventario/internal/models"
	"inventario/internal/server"
	"inventario/internal/services"
	"inventario/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server gracefully stopped")
}

// run serves the API until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := server.OpenStore(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()
	log.Info().Str("driver", cfg.DB.Driver).Msg("product store ready")

	// Left as a nil interface when events are disabled.
	var events services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			log.Warn().Err(err).Msg("inventory events disabled")
		} else {
			defer mq.Close()
			events = mq
			if err := mq.Consume(eventLogger(log)); err != nil {
				log.Warn().Err(err).Msg("failed to start event consumer")
			}
		}
	}

	app := server.New(server.Options{
		AppName:     cfg.App.Name,
		CORSEnabled: cfg.HTTP.CORSEnabled,
		Logger:      log,
		Service:     services.NewProductService(store.Products, events),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("starting server")
		errCh <- app.Listen(cfg.HTTP.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// eventLogger records every inventory event seen on the events queue.
func eventLogger(log zerolog.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event models.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Error().Err(err).Str("message_id", msg.MessageId).Msg("malformed inventory event")
			return err
		}
		log.Info().
			Str("message_id", msg.MessageId).
			Str("event", event.Type).
			Uint("product_id", event.ProductID).
			Msg("inventory event received")
		return nil
	}
}
