package cli

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Arkiv-Network/inf-demo/internal/api"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
	"github.com/Arkiv-Network/inf-demo/internal/observability/tracing"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the EthDemo HTTP API",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	cmd.Flags().Bool("with-poller", false, "Also run the real-time block poller")

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// initialize metrics with the metrics port from config
	metricsPort := a.cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	withPoller, _ := cmd.Flags().GetBool("with-poller")
	if withPoller {
		poller := a.service.StartRealtimePoller(ctx)
		defer poller.Stop()
		log.Ctx(ctx).Info().Msg("real-time poller started")
	}

	return api.New(&a.cfg.Server, a.service).ListenAndServe(ctx)
}
