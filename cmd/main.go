package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/adapter/store"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/infra"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

func main() {
	if err := infra.InitConfig(); err != nil {
		applog.NewAppDefaultLogger().Fatal("failed to load config", "err", err)
	}

	log := applog.NewAppDefaultLogger()
	v := validator.New()
	wg := &sync.WaitGroup{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := infra.InitBackend(log, v)
	if err != nil {
		log.Fatal("failed to init backend reader", "err", err)
	}
	if err := backend.Connect(ctx); err != nil {
		log.Fatal("failed to connect to execution backend", "err", err)
	}
	defer backend.Close()

	reports, err := infra.InitVerdictStore(log, v)
	if err != nil {
		log.Fatal("failed to init verdict store", "err", err)
	}
	if vs, ok := reports.(*store.VerdictStore); ok {
		defer vs.Close()
	}

	publisher, err := infra.InitVerdictPublisher(log, v)
	if err != nil {
		log.Fatal("failed to init verdict publisher", "err", err)
	}
	defer publisher.Close()

	svc := infra.InitConformanceService(log, backend, reports, publisher)

	server := fiber.New()
	infra.InitMetrics(server)
	infra.InitRoutes(server, log, svc)

	stopPprof := infra.StartPprof(log, wg)

	addr := viper.GetString("http.addr")
	if addr == "" {
		addr = ":8080"
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Listen(addr); err != nil {
			log.Error("http server stopped", "err", err)
			stop()
		}
	}()
	log.Info("Conformance service started", "addr", addr)

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", "err", err)
	}
	if err := stopPprof(shutdownCtx); err != nil {
		log.Warn("pprof shutdown failed", "err", err)
	}
	wg.Wait()
}
