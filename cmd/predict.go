package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/internal/service"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict TICKER...",
	Short: "Request predictions once and print them",
	Args:  cobra.MinimumNArgs(1),
	Run:   Predict,
}

func Predict(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo, err := repository.NewRepository(appDep.cfg, nil, appDep.credential, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}
	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.cache, appDep.credential, nil)

	tickers := make([]model.Ticker, 0, len(args))
	for _, arg := range args {
		ticker, err := model.NormalizeTicker(arg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		tickers = append(tickers, ticker)
	}

	services.PullSyncClient.RefreshAll(ctx, tickers)

	out := cmd.OutOrStdout()
	for _, ticker := range tickers {
		result, ok := services.PredictionCache.Get(ticker)
		if !ok {
			continue
		}
		printPrediction(out, result)
	}
}

func printPrediction(out io.Writer, result model.PredictionResult) {
	if result.IsError() {
		fmt.Fprintf(out, "%s\terror: %s\n", result.Ticker, result.Error)
		return
	}
	fmt.Fprintf(out, "%s\tpredicted close %s\n", result.Ticker, result.Prediction.PredictedClose.StringFixed(2))
	for _, s := range result.Prediction.Strategies {
		fmt.Fprintf(out, "\t- %s (%s): %s\n", s.Name, s.Confidence, s.ExecutionSteps)
	}
}
