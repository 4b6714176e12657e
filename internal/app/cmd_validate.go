package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ventanita/internal/blocks"
)

var validateCmd = &cobra.Command{
	Use:   "validate <stream> <file>",
	Short: "Validate a stream JSON file",
	Long: `Validate a list of {type, value} blocks against a stream declaration
without touching the database. Use - to read from stdin.

Every field error is printed with its path. The canonical stream is
printed on success.

Examples:
  ventanita validate faq faq.json
  cat links.json | ventanita validate links -`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	stream, file := args[0], args[1]

	var (
		raw []byte
		err error
	)
	if file == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	return validateStream(cmd.OutOrStdout(), blocks.NewStandardRegistry(), stream, raw)
}

func validateStream(w io.Writer, registry *blocks.Registry, stream string, raw []byte) error {
	if _, ok := registry.Stream(stream); !ok {
		return fmt.Errorf("unknown stream %q; known streams: %v", stream, registry.Streams())
	}
	v, err := registry.ValidateStream(stream, json.RawMessage(raw))
	if err != nil {
		var ve *blocks.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintf(w, "✗ %d error(s)\n", len(ve.Errors))
			for _, fe := range ve.Errors {
				fmt.Fprintf(w, "  - %s\n", fe.String())
			}
			return fmt.Errorf("stream %s is invalid", stream)
		}
		return err
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ %d block(s) valid\n%s\n", len(v), out)
	return nil
}
