package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	sdPreview bool
	sdCompact bool
)

var structuredDataCmd = &cobra.Command{
	Use:   "structured-data <page-id>",
	Short: "Print the schema.org JSON-LD of a page",
	Long: `Print the JSON-LD document embedded in a page.

Without --preview the page must be live and its live revision is used.

Examples:
  ventanita structured-data 3f0c9a52-8d0e-4b8e-9d59-3d1c7f6a2b10
  ventanita structured-data 3f0c9a52-8d0e-4b8e-9d59-3d1c7f6a2b10 --preview`,
	Args: cobra.ExactArgs(1),
	RunE: runStructuredData,
}

func init() {
	rootCmd.AddCommand(structuredDataCmd)

	structuredDataCmd.Flags().BoolVar(&sdPreview, "preview", false, "use the latest draft")
	structuredDataCmd.Flags().BoolVar(&sdCompact, "compact", false, "print without indentation")
}

func runStructuredData(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	return a.printStructuredData(ctx, cmd.OutOrStdout(), args[0], sdPreview, sdCompact)
}

func (a *App) printStructuredData(ctx context.Context, w io.Writer, pageID string, preview, compact bool) error {
	doc, err := a.content.StructuredData(ctx, pageID, preview)
	if err != nil {
		return fmt.Errorf("structured data of %s: %w", pageID, err)
	}
	if compact {
		_, err = fmt.Fprintf(w, "%s\n", doc)
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
