package cmd

import (
	"context"
	"fmt"
	"gold-pulse/internal/service"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [SYMBOL...]",
	Short: "Run one evaluation cycle now, for the given symbols or every asset",
	RunE:  runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = appDep.Close() }()

	services, err := newServices(appDep)
	if err != nil {
		return err
	}

	var evals []*service.Evaluation
	if len(args) == 0 {
		if evals, err = services.MonitorService.EvaluateAll(ctx); err != nil {
			return err
		}
	} else {
		for _, symbol := range args {
			eval, err := services.MonitorService.EvaluateSymbol(ctx, symbol)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", symbol, err)
			}
			evals = append(evals, eval)
		}
	}

	out := cmd.OutOrStdout()
	for _, eval := range evals {
		if eval == nil {
			continue
		}
		if eval.Skipped || eval.Forecast == nil {
			fmt.Fprintf(out, "%-6s skipped (no headlines or price)\n", eval.Symbol)
			continue
		}
		fmt.Fprintf(out, "%-6s %-4s %3d%%  cached=%t history=%t notified=%t source=%s\n",
			eval.Symbol,
			eval.Forecast.Recommendation,
			eval.Forecast.Confidence,
			eval.FromCache,
			eval.HistoryAppended,
			eval.Notified,
			eval.PriceSource,
		)
	}
	return nil
}
