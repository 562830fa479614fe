package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/importer"
)

func (c *CLI) importCommand() *cobra.Command {
	var (
		stores storeOpts
		file   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add parts to the catalog from a CSV, Excel or DXF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			out := cmd.OutOrStdout()

			result := importer.ImportFile(file)
			for _, w := range result.Warnings {
				fmt.Fprintln(out, styleWarning.Render("warning: "+w))
			}
			for _, e := range result.Errors {
				fmt.Fprintln(out, styleWarning.Render("skipped: "+e))
			}
			if len(result.Requests) == 0 {
				return fmt.Errorf("%s: no parts to import", file)
			}

			store, closeStore, err := c.openStore(ctx, stores)
			if err != nil {
				return err
			}
			defer closeStore()

			created, err := store.Parts().BulkCreate(ctx, result.Requests)
			if err != nil {
				return err
			}
			logger.Debug("imported parts", "file", file, "count", len(created))
			fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("imported %d parts", len(created))))
			return nil
		},
	}

	stores.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV, TSV, Excel or DXF file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
