package cmd

import (
	"context"
	"errors"
	"gold-pulse/internal/delivery/http"
	"gold-pulse/internal/repository"
	"gold-pulse/internal/service"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the monitor and the dashboard API",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	services, err := newServices(appDep)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.cfg, appDep.echo, appDep.validator, services, appDep.registry)
	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			appDep.log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	if err := services.MonitorService.Start(ctx); err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	services.MonitorService.Stop()

	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

func newServices(appDep *AppDependency) (*service.Service, error) {
	repo, err := repository.NewRepository(appDep.cfg, appDep.store, appDep.cache, appDep.log)
	if err != nil {
		return nil, err
	}
	return service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.telegram,
		appDep.recorder,
	), nil
}
