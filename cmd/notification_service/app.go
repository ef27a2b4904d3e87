package notificationservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/observability"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/general/websocket"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const consumerTag = "notification-service"

// Run consumes the notifications queue and pushes every message to the recipient's open
// sockets. It blocks until ctx is cancelled.
func Run(ctx context.Context, configPath string) error {
	boot := logger.New("notification-service")
	ctx = boot.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		boot.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}
	log := logger.NewWithWriter("notification-service", os.Stdout, cfg.Log.Level)

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	hub := websocket.NewHub(log, jwtManager)

	go consume(ctx, log, rmq, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/notifications", hub.Connect)
	mux.HandleFunc("GET /health", httpx.Health("notification-service"))
	mux.Handle("GET /metrics", promhttp.Handler())

	port := cfg.Services.NotificationServicePort
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           httpx.RequestID(log, observability.InstrumentHTTP(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Notification Service started on port %d", port),
		map[string]any{"port": port},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		hub.CloseAll()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": port})
		}
		return err
	}
}

// consume keeps a consumer attached to the notifications queue, re-attaching after
// channel failures until ctx is done.
func consume(ctx context.Context, log *logger.Logger, rmq *rabbitmq.Client, hub *websocket.Hub) {
	const retryDelay = 2 * time.Second
	for {
		err := rmq.ConsumeNotifications(ctx, consumerTag, hub.Deliver)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Error(ctx, "notification_consumer_failed", "Notification consumer stopped; retrying", err, nil)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}
