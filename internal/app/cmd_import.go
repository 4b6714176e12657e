package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

var (
	importWatch bool
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import page trees from JSON fixture files",
	Long: `Import every *.json fixture file of a directory in name order.

A fixture lists images, documents and pages. Pages name their parent by URL
path, so parents must come first. Pages that already exist get a new draft
instead of being recreated; pages marked "publish" are published.

With --watch the command keeps running and re-imports files as they change.

Examples:
  ventanita import ./fixtures
  ventanita import ./fixtures --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importWatch, "watch", false, "re-import files when they change")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	res, err := a.importer.ImportDir(ctx, args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s created, %s updated, %s published, %s, %s\n",
		english.Plural(res.Created, "page", ""),
		english.Plural(res.Updated, "page", ""),
		english.Plural(res.Published, "page", ""),
		english.Plural(res.Images, "image", ""),
		english.Plural(res.Documents, "document", ""),
	)
	if err != nil {
		return err
	}
	if !importWatch {
		return nil
	}

	if err := a.importer.Watch(ctx, args[0], a.cfg.Fixtures.Debounce); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
