package cmd

import (
	"context"
	"fmt"
	"gold-pulse/internal/service"
	"gold-pulse/pkg/utils"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear an asset's forecast history",
}

var historyListCmd = &cobra.Command{
	Use:   "list SYMBOL",
	Short: "Print the stored forecast history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssetService(cmd.Context(), func(ctx context.Context, assets service.AssetService) error {
			records, err := assets.History(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No history.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s  %-4s %3d%%  price=%s  target=%s\n",
					utils.PrettyDate(time.UnixMilli(r.Timestamp)),
					r.Recommendation,
					r.Confidence,
					r.PriceAtTime,
					r.TargetPriceTHB,
				)
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear SYMBOL",
	Short: "Delete the stored forecast history of one asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssetService(cmd.Context(), func(ctx context.Context, assets service.AssetService) error {
			if err := assets.ClearHistory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History of %s cleared.\n", args[0])
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// withAssetService builds the dependencies for a one-shot command and closes
// them afterwards.
func withAssetService(ctx context.Context, fn func(ctx context.Context, assets service.AssetService) error) error {
	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = appDep.Close() }()

	services, err := newServices(appDep)
	if err != nil {
		return err
	}
	return fn(ctx, services.AssetService)
}
