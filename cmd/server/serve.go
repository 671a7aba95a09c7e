package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/cache"
	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/router"
	"github.com/iliyamo/tour-booking/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; using in-process cache and rate limiter")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))

	router.Register(e, buildHandlers(cfg, db, rdb, log), cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, log))

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildHandlers wires repositories into services and services into
// handlers.
func buildHandlers(cfg config.Config, db *sql.DB, rdb *redis.Client, log *zap.Logger) router.Handlers {
	tx := repository.NewTxManager(db)
	tours := repository.NewTourRepo(db)
	bookings := repository.NewBookingRepo(db)
	history := repository.NewHistoryRepo(db)
	publisher := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.QueueName, log)

	var tagCache *cache.TagCache
	if cfg.Cache.Enabled {
		var store cache.Store = cache.NewMemoryStore()
		if rdb != nil {
			store = cache.NewRedisStore(rdb, cfg.Cache.Prefix)
		}
		tagCache = cache.New(store, cfg.Cache.TTL, log)
	}
	invalidator := service.NewTourCacheInvalidator(tagCache)

	tourSvc := service.NewTourService(tours, tagCache, log, invalidator)
	bookingSvc := service.NewBookingService(service.BookingDeps{
		Tx:       tx,
		Bookings: bookings,
		Tours:    tours,
		History:  history,
		Notifier: publisher,
		Observer: invalidator,
		Log:      log,
	})
	paymentSvc := service.NewPaymentService(service.PaymentDeps{
		Tx:        tx,
		Bookings:  bookings,
		Checkouts: repository.NewCheckoutRepo(db),
		Invoices:  repository.NewInvoiceRepo(db),
		History:   history,
		Notifier:  publisher,
		Config:    cfg.Payment,
		Log:       log,
	})
	authSvc := service.NewAuthService(
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		service.AuthSettings{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
		}, log)

	return router.Handlers{
		Health:   handler.Health(db),
		Auth:     handler.NewAuthHandler(authSvc),
		Tours:    handler.NewTourHandler(tourSvc),
		Bookings: handler.NewBookingHandler(bookingSvc),
		Payments: handler.NewPaymentHandler(paymentSvc),
		Reviews: handler.NewReviewHandler(
			service.NewReviewService(repository.NewReviewRepo(db), bookings, tours),
			service.NewWishlistService(repository.NewWishlistRepo(db), tours),
		),
		Promotions: handler.NewPromotionHandler(
			service.NewPromotionService(repository.NewPromotionRepo(db), nil)),
	}
}
