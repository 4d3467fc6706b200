package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mobistay/config"
	"mobistay/pkg/logger"
	"mobistay/pkg/notify"
	"mobistay/service"
	"mobistay/storage/postgres"
	redisstore "mobistay/storage/redis"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx := context.Background()

	pgStore, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	eph, err := redisstore.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer eph.Close()

	email := notify.NewEmailGateway(cfg, log)
	sms := notify.NewSMSGateway(cfg, log)

	// The engine is consumed as a library by the API gateway; this binary
	// wires the full dependency graph and holds it open so migrations run
	// and connectivity is verified in deployment.
	service.New(cfg, pgStore, eph, email, sms, log)

	log.Info("reservation and dispatch engine is up")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down")
}
