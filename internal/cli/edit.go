package cli

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/ui"
)

func (c *CLI) editCommand() *cobra.Command {
	var (
		stores   storeOpts
		material string
		margin   float64
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the layout editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, closeStore, err := c.openStore(ctx, stores)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg := c.config
			if cmd.Flags().Changed("margin") {
				cfg.DefaultMargin = margin
			}

			application := app.NewWithID("com.piwi3910.slablayout")
			window := application.NewWindow("SlabLayout")

			editor, err := ui.NewApp(application, window, store, ui.Options{
				Config:     cfg,
				ConfigPath: c.configPath,
				MaterialID: material,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			editor.SetupMenus()
			window.SetContent(fynetooltip.AddWindowToolTipLayer(editor.Build(), window.Canvas()))
			window.Resize(fyne.NewSize(1400, 800))
			window.CenterOnScreen()

			logger.Info("editor started", "material", editor.Session().Material().Name)
			window.ShowAndRun()
			return nil
		},
	}

	stores.register(cmd)
	cmd.Flags().StringVar(&material, "material", "", "id of the sheet to start on")
	cmd.Flags().Float64Var(&margin, "margin", 0, "clearance between pieces in mm (default from settings)")
	return cmd
}
