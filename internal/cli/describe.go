package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/schema"
)

// maxListedValues caps the values column of the table output.
const maxListedValues = 6

// NewDescribeCmd prints the filter vocabulary of the dataset.
func NewDescribeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "List the filter dimensions and their values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ws, closeFn, err := openWorkspace(cmd.Context(), cliCtx)
			if err != nil {
				return err
			}
			defer closeFn()

			cfg := cliCtx.Config
			desc := schema.Describe(ws.Dataset, schema.DescribeOptions{
				Scale:     cfg.OrdinalScale(),
				Delimiter: cfg.Dataset.Delimiter,
				Regions:   ws.overlayNames(),
			})

			switch format {
			case "json":
				return printJSON(cmd, desc)
			case "table":
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s registros)\n\n",
					desc.Name, desc.Source, engine.FormatInt(desc.Records))
				fmt.Fprint(cmd.OutOrStdout(), FormatTable(describeRows(desc)))
				return nil
			default:
				return fmt.Errorf("unknown format %q: want table or json", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format (table, json)")
	return cmd
}

func describeRows(desc *schema.Config) ([]string, [][]string) {
	headers := []string{"DIMENSION", "MATCH", "VALUES", "SAMPLE"}
	rows := make([][]string, 0, len(desc.Dimensions))
	for _, d := range desc.Dimensions {
		sample := d.Values
		more := ""
		if len(sample) > maxListedValues {
			sample = sample[:maxListedValues]
			more = ", …"
		}
		rows = append(rows, []string{
			d.DisplayName,
			d.Match,
			fmt.Sprintf("%d", len(d.Values)),
			strings.Join(sample, ", ") + more,
		})
	}
	return headers, rows
}
