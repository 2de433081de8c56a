// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"realestate-marketplace/internal/config"
	"realestate-marketplace/internal/domain/ports/adapter"
	pg "realestate-marketplace/internal/infra/db/postgres"
	"realestate-marketplace/internal/infra/logging"
	"realestate-marketplace/internal/infra/metrics"
	"realestate-marketplace/internal/infra/notify"
	pay "realestate-marketplace/internal/infra/payment"
	red "realestate-marketplace/internal/infra/redis"
	"realestate-marketplace/internal/infra/sched"
	"realestate-marketplace/internal/infra/web"
	"realestate-marketplace/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.PoolSize))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	propRepo := pg.NewPropertyRepo(pool)
	promoRepo := pg.NewPromotionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	codeRepo := pg.NewPromoCodeRepo(pool)
	tierRepo := pg.NewTierRepoCacheDecorator(pg.NewTierRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = pay.NewNoopGateway()
		logger.Warn().Msg("payment gateway: noop")
	} else {
		gateway = pay.NewPaystackGateway(cfg.Payment.Paystack.SecretKey, cfg.Payment.Paystack.BaseURL)
	}

	// ---- Notifier ----
	var notifier adapter.Notifier
	switch cfg.Notify.Mode {
	case "telegram":
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, *logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
	case "none":
		notifier = notify.NewNoopNotifier()
	default:
		notifier = notify.NewLogNotifier(*logger)
	}
	logger.Info().Str("notifier", notifier.Name()).Str("gateway", gateway.Name()).Msg("adapters ready")

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(tierRepo, codeRepo, logger)
	propertyUC := usecase.NewPropertyUseCase(propRepo, userRepo, txManager, logger)
	promotionUC := usecase.NewPromotionUseCase(
		payRepo, promoRepo, propRepo, tierRepo, codeRepo, userRepo,
		txManager, gateway, notifier,
		cfg.Payment.Paystack.CallbackURL, cfg.Payment.Currency,
		logger,
	)

	// ---- HTTP server ----
	metrics.MustRegister()
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(promotionUC, pricingUC, propertyUC, auth, rateLimiter, logger)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// ---- Background workers ----
	reconciler := sched.NewPaymentReconciler(promotionUC, payRepo, locker, cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileStaleAfter, logger)
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpirySweepInterval, promotionUC, locker, logger)
	g.Go(func() error { return ignoreCanceled(reconciler.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(expiry.Run(gctx)) })

	// ---- Graceful shutdown ----
	g.Go(func() error {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gctx.Done():
			return nil
		case s := <-sigc:
			logger.Info().Str("signal", s.String()).Msg("shutdown requested")
		}
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("exited with error")
	}
	logger.Info().Msg("bye")
}

func ignoreCanceled(err error) error {
	if err == context.Canceled {
		return nil
	}
	return err
}
