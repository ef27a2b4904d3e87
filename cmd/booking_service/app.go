package bookingservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/estimator"
	"ride-share/internal/general/httpx"
	"ride-share/internal/general/jwt"
	"ride-share/internal/general/kafka"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/memstore"
	"ride-share/internal/general/observability"
	"ride-share/internal/general/postgres"
	"ride-share/internal/general/rabbitmq"
	"ride-share/internal/ports"
	adminhandler "ride-share/internal/software/adminboard/handler"
	adminservice "ride-share/internal/software/adminboard/service"
	bookinghandler "ride-share/internal/software/booking/handler"
	bookingservice "ride-share/internal/software/booking/service"
	"ride-share/internal/software/effects"
	"ride-share/internal/software/ledger"
	ratinghandler "ride-share/internal/software/rating/handler"
	ratingservice "ride-share/internal/software/rating/service"
	ridehandler "ride-share/internal/software/ride/handler"
	rideservice "ride-share/internal/software/ride/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Options are the command line knobs of the booking service.
type Options struct {
	ConfigPath    string
	Store         string
	MaxConcurrent int
	DevTokens     bool
}

type repositories struct {
	uow       ports.UnitOfWork
	rides     ports.RideRepository
	bookings  ports.BookingRepository
	ratings   ports.RatingRepository
	userStats ports.UserStatsRepository
	events    ports.EventRepository
}

// Run wires the booking service and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	boot := logger.New("booking-service")
	ctx = boot.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile(opts.ConfigPath)
	if err != nil {
		boot.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}
	log := logger.NewWithWriter("booking-service", os.Stdout, cfg.Log.Level)

	// storage
	var repos repositories
	switch opts.Store {
	case StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Error(ctx, "db_migration_failed", "Failed to apply migrations", err, nil)
			return err
		}
		repos = repositories{
			uow:       postgres.NewUnitOfWork(pool),
			rides:     postgres.NewRideRepo(),
			bookings:  postgres.NewBookingRepo(),
			ratings:   postgres.NewRatingRepo(),
			userStats: postgres.NewUserStatsRepo(),
			events:    postgres.NewEventRepo(),
		}
	case StoreMemory:
		mem := memstore.New().Repositories()
		repos = repositories{
			uow:       mem.UnitOfWork,
			rides:     mem.Rides,
			bookings:  mem.Bookings,
			ratings:   mem.Ratings,
			userStats: mem.UserStats,
			events:    mem.Events,
		}
		log.Info(ctx, "memory_store_selected", "Using the in-memory store; data is lost on exit", nil)
	default:
		return fmt.Errorf("unknown store %q", opts.Store)
	}

	// travel time estimation: OSRM when configured, haversine otherwise, cached in Redis
	var est ports.TravelEstimator = estimator.NewHaversine(cfg.Estimator.AvgSpeedKMH)
	if cfg.Estimator.OSRMURL != "" {
		est = estimator.NewFallback(estimator.NewOSRM(cfg.Estimator.OSRMURL, cfg.Estimator.Timeout), est, log)
	}
	if cfg.Redis.Addr != "" {
		rdb := estimator.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		est = estimator.NewRedisCache(rdb, est, cfg.Redis.TTL, log)
	}

	// notification sinks
	sinks := effects.Fanout{effects.LogSink{Logger: log}}
	if opts.Store == StorePostgres {
		rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
			return err
		}
		defer rmq.Close()
		sinks = append(sinks, rabbitmq.NewNotificationSink(rmq))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		ks := kafka.NewSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer ks.Close()
		sinks = append(sinks, ks)
	}
	dispatcher := effects.NewDispatcher(sinks, log)

	// services
	seats := ledger.New(repos.rides)
	rides := rideservice.NewRideService(log, repos.uow, repos.rides, repos.bookings, repos.events, seats, est, dispatcher)
	bookings := bookingservice.NewBookingService(log, repos.uow, repos.rides, repos.bookings, repos.events, seats, dispatcher)
	ratings := ratingservice.NewRatingService(log, repos.uow, repos.bookings, repos.ratings, repos.userStats, repos.events, dispatcher)
	admin := adminservice.NewAdminService(repos.uow, repos.rides, repos.bookings)

	// HTTP
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	mux := http.NewServeMux()
	ridehandler.NewRideHTTPHandler(rides, log, jwtManager).RegisterRoutes(mux)
	bookinghandler.NewBookingHTTPHandler(bookings, log, jwtManager).RegisterRoutes(mux)
	ratinghandler.NewRatingHTTPHandler(ratings, log, jwtManager).RegisterRoutes(mux)
	adminhandler.NewAdminHTTPHandler(admin, log, jwtManager).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", httpx.Health("booking-service"))
	mux.Handle("GET /metrics", promhttp.Handler())
	if opts.DevTokens {
		mux.HandleFunc("POST /tokens", jwt.TokenHandler(jwtManager, log))
	}

	handler := withConcurrencyLimit(opts.MaxConcurrent, httpx.RequestID(log, observability.InstrumentHTTP(mux)))

	port := cfg.Services.BookingServicePort
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Booking Service started on port %d", port),
		map[string]any{"port": port, "store": opts.Store, "max_concurrent": opts.MaxConcurrent, "sinks": len(sinks)},
	)

	return serve(ctx, log, srv)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, log *logger.Logger, srv *http.Server) error {
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
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info(ctx, "shutdown_started", "Starting graceful shutdown", nil)
		if err := srv.Shutdown(shCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"addr": srv.Addr})
		}
		return err
	}
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
