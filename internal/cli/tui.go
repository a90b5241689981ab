package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spektr-org/needsradar/internal/tui"
	"github.com/spektr-org/needsradar/schema"
	"github.com/spektr-org/needsradar/session"
)

// NewTUICmd opens the terminal dashboard.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Explore the dataset in a terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
				session.WithEngineOptions(cliCtx.Config.EngineOptions()...))
			if err != nil {
				return err
			}

			regions := schema.RegionOptions(ws.Dataset, ws.overlayNames())
			p := tea.NewProgram(tui.New(ctx, coord, regions),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}
