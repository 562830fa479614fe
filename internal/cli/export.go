package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/export"
	"github.com/piwi3910/SlabLayout/internal/gcode"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/project"
)

const (
	formatPDF    = "pdf"
	formatLabels = "labels"
	formatDXF    = "dxf"
	formatPNG    = "png"
	formatGCode  = "gcode"
)

var exportFormats = []string{formatPDF, formatLabels, formatDXF, formatPNG, formatGCode}

type exportOpts struct {
	layout string
	format string
	out    string
	width  int
}

func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: formatPDF, width: export.DefaultPNGWidth}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved layout",
		Long:  "Export a saved layout as a PDF sheet, piece labels, DXF, PNG or G-code.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.layout, "layout", "l", "", "layout file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output path (default next to the layout)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "PNG width in pixels")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, opts exportOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	l, err := project.LoadLayout(opts.layout)
	if err != nil {
		return err
	}
	out := opts.out
	if out == "" {
		out = defaultExportPath(opts.layout, opts.format)
	}

	switch opts.format {
	case formatPDF:
		err = export.ExportPDF(out, l)
	case formatLabels:
		err = export.ExportLabels(out, l)
	case formatDXF:
		err = export.ExportDXF(out, l)
	case formatPNG:
		err = export.ExportPNG(out, l, opts.width)
	case formatGCode:
		err = c.exportGCode(cmd, out, l)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", opts.format, strings.Join(exportFormats, ", "))
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Exported %d pieces to %s", len(l.Shapes), out))
	return nil
}

// exportGCode writes the program using the configured machining settings
// and prints its statistics.
func (c *CLI) exportGCode(cmd *cobra.Command, out string, l model.Layout) error {
	l.Machining = c.config.Machining
	code := gcode.New(l.Machining).Generate(l)
	if err := project.ExportGCode(out, code); err != nil {
		return err
	}
	stats := gcode.Summarize(gcode.ParseGCode(code))
	fmt.Fprintf(cmd.OutOrStdout(), "%d moves, cut %.0f mm, rapid %.0f mm, %d plunges\n",
		stats.Moves, stats.CutLength, stats.RapidLength, stats.Plunges)
	return nil
}

// defaultExportPath replaces the layout file's extension with the format's.
func defaultExportPath(layoutPath, format string) string {
	base := strings.TrimSuffix(layoutPath, project.LayoutExt)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	switch format {
	case formatLabels:
		return base + "-labels.pdf"
	case formatGCode:
		return base + ".gcode"
	}
	return base + "." + format
}
