package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/stockplan/stockplan-api/internal/auth"
	"github.com/stockplan/stockplan-api/internal/cleanup"
	"github.com/stockplan/stockplan-api/internal/config"
	"github.com/stockplan/stockplan-api/internal/handler"
	"github.com/stockplan/stockplan-api/internal/mailer"
	"github.com/stockplan/stockplan-api/internal/repository"
	"github.com/stockplan/stockplan-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.MongoDatabase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	refreshRepo := repository.NewRefreshTokenMongoRepository(ctx, &logger, db)
	resetRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)
	stockRepo := repository.NewStockMongoRepository(ctx, &logger, db)
	watchlistRepo := repository.NewWatchlistMongoRepository(ctx, &logger, db)
	researchRepo := repository.NewResearchMongoRepository(ctx, &logger, db)
	targetRepo := repository.NewTargetMongoRepository(ctx, &logger, db)
	brokerRepo := repository.NewBrokerConnectionMongoRepository(ctx, &logger, db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	mail := mailer.New(cfg, &logger)

	authUC := usecase.NewAuthUsecase(userRepo, refreshRepo, jwtAuth, cfg)
	resetUC := usecase.NewPasswordResetUsecase(userRepo, resetRepo, mail, cfg, logger)
	stockUC := usecase.NewStockUsecase(stockRepo)
	watchlistUC := usecase.NewWatchlistUsecase(watchlistRepo)
	researchUC := usecase.NewResearchUsecase(researchRepo)
	targetUC := usecase.NewTargetUsecase(targetRepo)
	portfolioUC := usecase.NewPortfolioUsecase(stockRepo)
	brokerUC := usecase.NewBrokerUsecase(brokerRepo)
	importUC := usecase.NewCSVImportUsecase(stockUC, watchlistUC, brokerUC)

	router := handler.NewRouter(handler.Handlers{
		Auth:      handler.NewAuthHandler(authUC, resetUC, logger),
		Stock:     handler.NewStockHandler(stockUC, logger),
		Watchlist: handler.NewWatchlistHandler(watchlistUC, logger),
		Research:  handler.NewResearchHandler(researchUC, logger),
		Target:    handler.NewTargetHandler(targetUC, logger),
		Portfolio: handler.NewPortfolioHandler(portfolioUC, logger),
		Market:    handler.NewMarketHandler(),
		Broker:    handler.NewBrokerHandler(brokerUC, importUC, stockUC, logger),
	}, jwtAuth, logger)

	cleaner := cleanup.NewCleaner(refreshRepo, resetRepo, cfg.CleanupInterval, cfg.CleanupInitialDelay, logger)
	go cleaner.Run(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down http server")
	}
}
