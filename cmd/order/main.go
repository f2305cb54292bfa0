package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/app"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/client"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/config"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/events"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/handler"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/postgres"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/repo"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/service"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/breaker"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/trm"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	_ "github.com/Ay0u8dev/mini-ecommerce-backend/docs"
	"github.com/joho/godotenv"
)

// @title           Order Service API
// @version         1.0
// @description     Оформление заказов: сага с проверкой пользователя, товара и резервированием остатка
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	retryCfg := utils.RetryConfig{
		MaxAttempts:  conf.Retry.MaxAttempts,
		InitialDelay: conf.Retry.InitialDelay,
		MaxDelay:     conf.Retry.MaxDelay,
	}
	breakerCfg := breaker.Config{
		WindowSize:           conf.Breaker.WindowSize,
		FailureRateThreshold: conf.Breaker.FailureRateThreshold,
		MinSamples:           conf.Breaker.MinSamples,
		Cooldown:             conf.Breaker.Cooldown,
		HalfOpenMaxProbes:    conf.Breaker.HalfOpenMaxProbes,
	}

	userClient := client.NewUserClient(logger, client.Config{
		BaseURL: conf.Clients.UserServiceURL,
		Timeout: conf.Clients.Timeout,
		Retry:   retryCfg,
		Breaker: breakerCfg,
	})
	productClient := client.NewProductClient(logger, client.Config{
		BaseURL: conf.Clients.ProductServiceURL,
		Timeout: conf.Clients.Timeout,
		Retry:   retryCfg,
		Breaker: breakerCfg,
	})

	producer := events.NewProducer(logger, conf.Kafka)

	orderService := service.NewOrderService(logger, txManager, orderRepo, userClient, productClient, producer, retryCfg)

	httpHandler := handler.NewHTTPHandler(logger, orderService, userClient.Breaker(), productClient.Breaker())

	app := app.New(logger, conf)
	app.SetHTTPHandlers(httpHandler)
	app.SetClosers(producer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
