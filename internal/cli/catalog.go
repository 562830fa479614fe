package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/model"
)

func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the part and material catalog",
	}
	cmd.AddCommand(c.catalogListCommand())
	cmd.AddCommand(c.catalogDumpCommand())
	return cmd
}

func (c *CLI) catalogListCommand() *cobra.Command {
	var stores storeOpts
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parts and materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := c.openStore(ctx, stores)
			if err != nil {
				return err
			}
			defer closeStore()

			parts, err := store.Parts().List(ctx)
			if err != nil {
				return err
			}
			materials, err := store.Materials().List(ctx)
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), parts, materials)
			return nil
		},
	}
	stores.register(cmd)
	return cmd
}

// catalogDumpCommand writes the catalog as a TOML seed file, the format
// read back by --seed.
func (c *CLI) catalogDumpCommand() *cobra.Command {
	var stores storeOpts
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the catalog as a TOML seed file to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := c.openStore(ctx, stores)
			if err != nil {
				return err
			}
			defer closeStore()

			parts, err := store.Parts().List(ctx)
			if err != nil {
				return err
			}
			materials, err := store.Materials().List(ctx)
			if err != nil {
				return err
			}
			return catalog.EncodeSeed(cmd.OutOrStdout(), parts, materials)
		},
	}
	stores.register(cmd)
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle()
		})
}

func printCatalog(w io.Writer, parts []model.CatalogPart, materials []model.Material) {
	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Parts (%d)", len(parts))))
	pt := newTable("ID", "Name", "Shape", "Qty", "Fill")
	for _, p := range parts {
		pt.Row(p.ID, p.Name, model.Describe(p.Shape), strconv.Itoa(p.Quantity), p.FillColor)
	}
	fmt.Fprintln(w, pt.Render())

	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("Materials (%d)", len(materials))))
	mt := newTable("ID", "Name", "Size (mm)", "Area (m²)")
	for _, m := range materials {
		mt.Row(m.ID, m.Name, m.Dimensions(), strconv.FormatFloat(m.Area()/1e6, 'f', 2, 64))
	}
	fmt.Fprintln(w, mt.Render())
}
