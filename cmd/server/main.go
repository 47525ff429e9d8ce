package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/cashback-settlement/internal/config"
	"github.com/anyulbade/cashback-settlement/internal/database"
	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/handler"
	"github.com/anyulbade/cashback-settlement/internal/metrics"
	"github.com/anyulbade/cashback-settlement/internal/middleware"
	"github.com/anyulbade/cashback-settlement/internal/repository"
	"github.com/anyulbade/cashback-settlement/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.ZerologLevel())
	gin.SetMode(cfg.GinMode)
	database.MigrationsDir = cfg.MigrationsDir
	clock := service.SystemClock(cfg.Location())

	if err := dto.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool, clock()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	rec := metrics.New()

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(rec.Handler()))

	setupAPIRoutes(router, pool, rec, clock)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupAPIRoutes(router *gin.Engine, pool *pgxpool.Pool, rec *metrics.Recorder, clock service.Clock) {
	cardRepo := repository.NewCardRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	txnRepo := repository.NewTransactionRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)

	loader := service.NewSnapshotLoader(cardRepo, ruleRepo, summaryRepo)
	cashbackService := service.NewCashbackService(loader, cardRepo, ruleRepo, prefRepo, rec, clock)
	txnService := service.NewTransactionService(loader, txnRepo, prefRepo, rec)
	paymentService := service.NewPaymentService(cardRepo, summaryRepo, txnRepo, clock)
	settlementService := service.NewSettlementService(cardRepo, summaryRepo, redemptionRepo, rec, clock)

	cashbackHandler := handler.NewCashbackHandler(cashbackService)
	txnHandler := handler.NewTransactionHandler(txnService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	settlementHandler := handler.NewSettlementHandler(settlementService)

	api := router.Group("/api/v1")
	{
		api.GET("/cards", cashbackHandler.Cards)
		api.GET("/rules", cashbackHandler.Rules)
		api.POST("/cashback/calculate", cashbackHandler.Calculate)
		api.GET("/recommendations", cashbackHandler.Recommend)
		api.GET("/suggestions", cashbackHandler.Suggestions)
		api.GET("/cap-progress", cashbackHandler.CapProgress)
		api.GET("/transactions", txnHandler.List)
		api.POST("/transactions", txnHandler.Create)
		api.POST("/transactions/batch", txnHandler.CreateBatch)
		api.GET("/payments", paymentHandler.Payments)
		api.PATCH("/monthly-summaries/:id", paymentHandler.UpdateSummary)
		api.GET("/ledger", settlementHandler.Ledger)
		api.POST("/redemptions", settlementHandler.Redeem)
		api.GET("/redemptions/:batch_id", settlementHandler.Batch)
	}
}
