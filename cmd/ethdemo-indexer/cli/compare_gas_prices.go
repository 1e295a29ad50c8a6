package cli

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/spf13/cobra"
)

func CompareGasPricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare-gas-prices",
		Short: "Compares the gas price estimates available for the chain head",
		Args:  cobra.NoArgs,
		RunE:  compareGasPrices,
	}
}

func gwei(v *big.Int) string {
	if v == nil {
		return "n/a"
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(params.GWei)).Float64()
	return fmt.Sprintf("%.4f gwei", f)
}

func compareGasPrices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	r, err := a.service.CompareGasPrices(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Block %d\n", r.BlockNumber)
	fmt.Fprintf(out, "  eth_gasPrice:         %s (%s)\n", gwei(r.NetworkGasPrice), r.NetworkDuration)
	fmt.Fprintf(out, "  feeHistory p50:       %s (%s)\n", gwei(r.FeeHistoryPrice), r.FeeHistoryTiming)
	fmt.Fprintf(out, "  next base fee:        %s\n", gwei(r.NextBaseFee))
	if e := r.Effective; e != nil {
		fmt.Fprintf(out, "  receipts (%d txs):    median %s, average %s, min %s, max %s (%s)\n",
			e.TransactionCount, gwei(e.Median), gwei(e.Average), gwei(e.Min), gwei(e.Max), r.EffectiveTiming)
	}

	fmt.Fprintf(out, "  bulk feeHistory:      %d blocks (%s)\n", len(r.Bulk), r.BulkTiming)
	if n := len(r.Bulk); n > 0 {
		sum := new(big.Int)
		for _, b := range r.Bulk {
			if b.Suggested != nil {
				sum.Add(sum, b.Suggested)
			}
		}
		fmt.Fprintf(out, "    average suggested:  %s\n", gwei(sum.Quo(sum, big.NewInt(int64(n)))))
		last := r.Bulk[n-1]
		fmt.Fprintf(out, "    latest p25/p50/p75: %s / %s / %s\n", gwei(last.P25), gwei(last.P50), gwei(last.P75))
	}
	return nil
}
