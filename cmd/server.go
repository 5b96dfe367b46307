package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"options-dashboard/internal/delivery/http"
	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/internal/service"
	"options-dashboard/pkg/common"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/utils"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the dashboard API, prediction stream and refresh scheduler",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.gormDB(), appDep.credential, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.credential,
		nil,
	)
	services.PredictionCache.Subscribe(func(result model.PredictionResult) {
		appDep.broker.Broadcast(common.EVENT_PREDICTION, http.ToPredictionView(result))
	})

	if err := services.Dashboard.LoadWatchlist(ctx); err != nil {
		log.Fatalf("Failed to load watchlist: %v", err)
	}
	if err := services.PortfolioEngine.Load(ctx); err != nil {
		appDep.log.Warn("Starting with an empty portfolio", logger.ErrorField(err))
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.cfg, appDep.echo, appDep.validator, services, appDep.broker)
	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	var wg sync.WaitGroup
	runBackground := func(fn func()) {
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			fn()
		})
	}

	runBackground(func() { appDep.broker.Run(ctx) })
	runBackground(func() { services.Recorder.Run(ctx) })
	runBackground(func() { services.Dashboard.RefreshPrices(ctx) })
	runBackground(func() {
		if err := services.SchedulerService.Start(ctx); err != nil {
			appDep.log.Error("Refresh scheduler failed", logger.ErrorField(err))
		}
	})
	runBackground(func() { superviseStream(ctx, appDep, services.PushSyncClient) })

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	if err := apiServer.Stop(); err != nil {
		log.Printf("Failed to stop HTTP server: %v", err)
	}

	wg.Wait()
	services.PullSyncClient.Wait()

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// superviseStream keeps the push connection up, retrying after every loss
// until ctx ends.
func superviseStream(ctx context.Context, appDep *AppDependency, push service.PushSyncClient) {
	if appDep.cfg.Stream.URL == "" {
		appDep.log.Info("Prediction stream disabled")
		return
	}

	retry := appDep.cfg.Stream.ReconnectInterval
	if retry <= 0 {
		retry = 10 * time.Second
	}

	for {
		err := push.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, service.ErrStreamClosedByServer) {
			appDep.log.Info("Prediction stream closed by server, reconnecting",
				logger.Field("retry_in", retry))
		} else {
			appDep.log.Warn("Prediction stream ended, reconnecting",
				logger.ErrorField(err),
				logger.Field("retry_in", retry))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}
