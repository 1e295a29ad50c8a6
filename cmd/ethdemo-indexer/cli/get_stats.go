package cli

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func GetStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-stats",
		Short: "Prints the stored hourly and daily stats and the stored block range",
		Args:  cobra.NoArgs,
		RunE:  getStats,
	}

	cmd.Flags().Bool("dump", false, "Dump the full records")

	return cmd
}

func getStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.service.GetStatsReport(ctx)
	if err != nil {
		return err
	}

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, report)
		return nil
	}

	fmt.Fprintf(out, "Blocks: %d stored, range %d..%d\n", report.BlockCount, report.OldestBlock, report.LatestBlock)

	fmt.Fprintf(out, "\nHourly stats (%d)\n", len(report.Hourly))
	for _, s := range report.Hourly {
		fmt.Fprintf(out, "  %s  tx=%d avgGasPrice=%s glmTransfers=%d glmAmount=%.4f\n",
			time.Unix(s.StatsTimestamp, 0).UTC().Format(time.RFC3339),
			s.TotalTransactionCount, s.AvgGasPrice, s.TotalGLMTransfersCount, s.TotalGLMTransfersAmount)
	}

	fmt.Fprintf(out, "\nDaily stats (%d)\n", len(report.Daily))
	for _, s := range report.Daily {
		fmt.Fprintf(out, "  %s  tx=%d avgGasPrice=%s glmTransfers=%d glmAmount=%.4f\n",
			time.Unix(s.StatsTimestamp, 0).UTC().Format(time.RFC3339),
			s.TotalTransactionCount, s.AvgGasPrice, s.TotalGLMTransfersCount, s.TotalGLMTransfersAmount)
	}
	return nil
}
