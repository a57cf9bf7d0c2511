// File: cmd/scantypes.go
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/scanimport/internal/config"
	"github.com/xkilldash9x/scanimport/internal/observability"
	"github.com/xkilldash9x/scanimport/internal/parsers"
)

func newScanTypesCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "scan-types",
		Short: "List the supported scan types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runScanTypes(cmd.OutOrStdout(), observability.GetLogger(), cfg, outputFormat)
		},
	}

	cmd.Flags().StringVar(&outputFormat, "output-format", "text", "Listing format: text or yaml")
	return cmd
}

// runScanTypes writes the metadata of every registered scan type to w.
func runScanTypes(w io.Writer, logger *zap.Logger, cfg config.Interface, outputFormat string) error {
	registry, err := parsers.Default(logger, cfg.Importer())
	if err != nil {
		return fmt.Errorf("failed to build parser registry: %w", err)
	}
	infos := registry.Describe()

	switch outputFormat {
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCAN TYPE\tLABEL\tDESCRIPTION")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Label, info.Description)
		}
		return tw.Flush()
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("failed to encode scan types: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s (expected text or yaml)", outputFormat)
	}
}
