package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var publishScheduledCmd = &cobra.Command{
	Use:   "publish-scheduled",
	Short: "Publish every revision whose go-live time has passed",
	Long: `Publish approved revisions that are due, once, and exit.

Use this from an external cron instead of scheduler.enabled.`,
	Args: cobra.NoArgs,
	RunE: runPublishScheduled,
}

func init() {
	rootCmd.AddCommand(publishScheduledCmd)
}

func runPublishScheduled(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	n, err := a.scheduler.RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d page(s) published\n", n)
	return nil
}
