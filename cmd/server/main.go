package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-logger/glog"

	auth "github.com/goliatone/go-shop-auth"
	"github.com/goliatone/go-shop-auth/activity/amqpsink"
	"github.com/goliatone/go-shop-auth/config"
	"github.com/goliatone/go-shop-auth/server"
	"github.com/goliatone/go-shop-auth/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		auth.DefaultLogger("app").Error("config error", "error", err)
		os.Exit(1)
	}

	lgr := auth.NewLogger(
		glog.WithLevel(cfg.LoggerLevel()),
		glog.WithLoggerType(cfg.LogFormat),
	)
	logger := lgr.GetLogger("app")

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg, lgr.GetLogger("storage"))
	if err != nil {
		logger.Error("store error", "error", err)
		os.Exit(1)
	}

	opts := []server.Option{server.WithLoggerProvider(lgr)}

	var publisher *amqpsink.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = amqpsink.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("activity publisher error", "error", err)
			os.Exit(1)
		}
		opts = append(opts, server.WithActivitySink(publisher))
		logger.Info("activity publishing enabled", "exchange", cfg.AMQPExchange)
	}

	app := server.New(cfg, store, opts...)

	go func() {
		logger.Info("Application running", "addr", cfg.Addr())
		if err := app.Fiber.Listen(cfg.Addr()); err != nil {
			logger.Error("server error", "error", err)
		}
	}()

	sig := WaitExitSignal()
	logger.Info("shutting down", "signal", sig.String())

	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("activity publisher close error", "error", err)
		}
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		logger.Error("store close error", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
