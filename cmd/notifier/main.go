package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/config"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/notifier"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	retryCfg := utils.RetryConfig{
		MaxAttempts:  conf.Retry.MaxAttempts,
		InitialDelay: conf.Retry.InitialDelay,
		MaxDelay:     conf.Retry.MaxDelay,
	}

	consumer := notifier.NewConsumer(logger, conf.Kafka, retryCfg, notifier.NewLogNotifier(logger))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Handler: mux,
		Addr:    net.JoinHostPort(conf.Http.Host, conf.Http.Port),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting kafka consumer",
			slog.String("topic", conf.Kafka.Topic),
			slog.String("group_id", conf.Kafka.GroupID),
		)
		consumer.Consume(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting metrics server", slog.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", slog.Any("error", err))
		}
		return consumer.Close()
	})

	panicIfErr("notification service stopped", g.Wait())
	logger.Info("notification service stopped")
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
