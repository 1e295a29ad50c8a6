package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
	"github.com/Arkiv-Network/inf-demo/internal/observability/tracing"
)

func FeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Backfills history, follows the chain head or aggregates stats",
		Example: `  ethdemo-indexer feed --history 1000
  ethdemo-indexer feed --realTime
  ethdemo-indexer feed --stats`,
		Args: cobra.NoArgs,
		RunE: feed,
	}

	cmd.Flags().Int("history", 0, "Number of historical blocks to backfill")
	cmd.Flags().Bool("realTime", false, "Poll the chain head until interrupted")
	cmd.Flags().Bool("stats", false, "Aggregate the configured lookback period")
	cmd.MarkFlagsMutuallyExclusive("history", "realTime", "stats")
	cmd.MarkFlagsOneRequired("history", "realTime", "stats")

	return cmd
}

func feed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = tracing.InjectTraceID(ctx)

	history, _ := cmd.Flags().GetInt("history")
	realTime, _ := cmd.Flags().GetBool("realTime")
	stats, _ := cmd.Flags().GetBool("stats")

	if cmd.Flags().Changed("history") && history <= 0 {
		return errors.New("--history must be a positive number of blocks")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	switch {
	case realTime:
		metrics.Init(a.cfg.Metrics.GetMetricsPort())
		poller := a.service.StartRealtimePoller(ctx)
		log.Ctx(ctx).Info().
			Dur("poll_interval", a.cfg.Poller.PollInterval).
			Dur("min_collection_interval", a.cfg.Poller.MinCollectionInterval).
			Msg("real-time feed started")
		<-ctx.Done()
		poller.Stop()
		log.Ctx(ctx).Info().Msg("real-time feed stopped")
		return nil

	case stats:
		result, err := a.service.FeedStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Hourly: %d attempted, %d stored\nDaily: %d attempted, %d stored\nFailed: %d\n",
			result.HoursAttempted, result.HoursPersisted, result.DaysAttempted, result.DaysPersisted, result.Failed)
		return nil

	default:
		stored, err := a.service.Backfill(ctx, history)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d of %d requested blocks\n", stored, history)
		return nil
	}
}
