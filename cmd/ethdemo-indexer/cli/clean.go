package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arkiv-Network/inf-demo/internal/services"
	"github.com/Arkiv-Network/inf-demo/internal/types"
	"github.com/Arkiv-Network/inf-demo/internal/utils"
)

const cleanGracePeriod = 3 * time.Second

func CleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Deletes stats and block entities newer than a timestamp or a single entity by key",
		Example: `  ethdemo-indexer clean --timestamp 1735689600 --type hourly --dry-run
  ethdemo-indexer clean --timestamp 2025-01-01T00:00:00Z --include-blocks
  ethdemo-indexer clean --entity-key 0x1234...`,
		Args: cobra.NoArgs,
		RunE: clean,
	}

	cmd.Flags().String("timestamp", "", "Delete entities with a timestamp strictly greater than this (unix seconds, RFC3339 or YYYY-MM-DD)")
	cmd.Flags().String("type", "", "Only delete stats of this type (hourly or daily)")
	cmd.Flags().Bool("include-blocks", false, "Also delete block entities newer than the timestamp")
	cmd.Flags().String("entity-key", "", "Delete a single entity by key")
	cmd.Flags().Bool("dry-run", false, "Print the selected entities without deleting them")
	cmd.MarkFlagsMutuallyExclusive("entity-key", "timestamp")
	cmd.MarkFlagsMutuallyExclusive("entity-key", "type")
	cmd.MarkFlagsOneRequired("entity-key", "timestamp")

	return cmd
}

// cleanRequestFromFlags turns the raw flag values into a validated request
func cleanRequestFromFlags(timestamp, statsType, entityKey string, includeBlocks bool) (*services.CleanRequest, error) {
	req := &services.CleanRequest{
		EntityKey:     entityKey,
		IncludeBlocks: includeBlocks,
	}
	if timestamp != "" {
		ts, err := utils.ParseTimestamp(timestamp)
		if err != nil {
			return nil, err
		}
		req.Timestamp = &ts
	}
	if statsType != "" {
		st, err := types.ParseStatsType(statsType)
		if err != nil {
			return nil, err
		}
		req.StatsType = &st
	}
	return req, req.Validate()
}

func clean(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	timestamp, _ := cmd.Flags().GetString("timestamp")
	statsType, _ := cmd.Flags().GetString("type")
	entityKey, _ := cmd.Flags().GetString("entity-key")
	includeBlocks, _ := cmd.Flags().GetBool("include-blocks")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	req, err := cleanRequestFromFlags(timestamp, statsType, entityKey, includeBlocks)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	selection, err := a.service.SelectForCleanup(ctx, req)
	if err != nil {
		return err
	}
	printSelection(out, req, selection)

	if len(selection.Entities) == 0 {
		fmt.Fprintln(out, "Nothing to delete")
		return nil
	}

	if dryRun {
		for _, e := range selection.Entities {
			fmt.Fprintf(out, "%s %s\n", e.Key, string(e.Payload))
		}
		fmt.Fprintln(out, "Dry run, nothing deleted")
		return nil
	}

	fmt.Fprintf(out, "Deleting %d entities in %s, press Ctrl+C to abort\n", len(selection.Entities), cleanGracePeriod)
	if err := sleepCtx(ctx, cleanGracePeriod); err != nil {
		return err
	}

	deleted, err := a.service.DeleteSelection(ctx, selection)
	fmt.Fprintf(out, "Deleted %d of %d entities\n", deleted, len(selection.Entities))
	return err
}

func printSelection(out io.Writer, req *services.CleanRequest, selection *services.CleanSelection) {
	if req.EntityKey != "" {
		fmt.Fprintf(out, "Selected entity %s\n", req.EntityKey)
		return
	}
	fmt.Fprintf(out, "Entities with timestamp > %d (%s)\n",
		*req.Timestamp, time.Unix(*req.Timestamp, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  hourly stats: %d\n  daily stats:  %d\n  blocks:       %d\n",
		selection.Hourly, selection.Daily, selection.Blocks)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
