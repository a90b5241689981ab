package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/internal/render"
	"github.com/spektr-org/needsradar/session"
)

// ExportOptions are the export command's flags.
type ExportOptions struct {
	Format string
	Chart  string
	Output string
	Pretty bool
	Focus  string

	Criteria engine.Criteria
}

// NewExportCmd derives one snapshot for the given filters and writes it.
func NewExportCmd() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard for the given filters as json, csv, xlsx or png",
		Example: "  needsradar export -d needs.xlsx --region Maule -f png --chart radar -O maule.png\n" +
			"  needsradar export -d needs.xlsx --category IoT --impact Alto -f xlsx -O iot.xlsx",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Format, "format", "f", "json", "output format (json, csv, xlsx, png)")
	f.StringVar(&opts.Chart, "chart", "table", "csv/png content (radar, hierarchy, categories, table)")
	f.StringVarP(&opts.Output, "out", "O", "", "output file (default: stdout)")
	f.BoolVar(&opts.Pretty, "pretty", true, "indent json output")
	f.StringVar(&opts.Focus, "region", "", "focus a single region, as a chart click would")
	f.StringSliceVar(&opts.Criteria.Regions, "regions", nil, "restrict to these regions")
	f.StringSliceVar(&opts.Criteria.Categories, "category", nil, "technology categories (substring match)")
	f.StringSliceVar(&opts.Criteria.Axes, "axis", nil, "axes")
	f.StringSliceVar(&opts.Criteria.Themes, "theme", nil, "themes")
	f.StringSliceVar(&opts.Criteria.Impact, "impact", nil, "impact labels")
	f.StringSliceVar(&opts.Criteria.Innovation, "innovation", nil, "innovation labels")
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ws, closeFn, err := openWorkspace(ctx, cliCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	coord, err := session.New(ctx, ws.Dataset,
		session.WithLogger(cliCtx.Logger),
		session.WithSelectableRegions(ws.overlayNames()),
		session.WithEngineOptions(cliCtx.Config.EngineOptions()...),
		session.WithInitialCriteria(opts.Criteria))
	if err != nil {
		return err
	}
	if opts.Focus != "" {
		t, err := coord.Select(ctx, opts.Focus)
		if err != nil {
			return err
		}
		if !t.Applied {
			return fmt.Errorf("cannot focus %q: %s", opts.Focus, t.Reason)
		}
	}
	snap := coord.Snapshot()

	var w io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := writeSnapshot(w, snap, opts); err != nil {
		return err
	}
	cliCtx.Logger.Info("snapshot exported",
		logging.String("format", opts.Format),
		logging.String("chart", opts.Chart),
		logging.Int("records", snap.Records),
		logging.String("out", opts.Output))
	return nil
}

func writeSnapshot(w io.Writer, snap *engine.Snapshot, opts *ExportOptions) error {
	switch opts.Format {
	case "json":
		return render.WriteJSON(w, snap, opts.Pretty)
	case "xlsx":
		return render.WorkbookXLSX(w, snap)
	case "csv":
		if opts.Chart == "table" {
			return render.WriteTableCSV(w, snap.Table)
		}
		chart, err := chartOf(snap, opts.Chart)
		if err != nil {
			return err
		}
		return render.WriteChartCSV(w, chart)
	case "png":
		chart, err := chartOf(snap, opts.Chart)
		if err != nil {
			return err
		}
		return render.ChartPNG(w, chart)
	}
	return fmt.Errorf("unknown format %q: want json, csv, xlsx or png", opts.Format)
}

func chartOf(snap *engine.Snapshot, name string) (*engine.ChartConfig, error) {
	switch name {
	case "radar":
		return snap.RadarChart, nil
	case "hierarchy":
		return snap.HierarchyChart, nil
	case "categories":
		return snap.CategoryChart, nil
	}
	return nil, fmt.Errorf("unknown chart %q: want radar, hierarchy or categories", name)
}
