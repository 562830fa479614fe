// Package cli implements the slablayout command-line interface.
//
// The editor is the default entry point (slablayout edit); the other
// commands serve the catalog over HTTP, export saved layouts and manage the
// catalog without opening a window.
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed to commands through context.Context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/project"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds the state shared by all commands.
type CLI struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
	verbose    bool
	config     model.AppConfig
}

// New returns a CLI printing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "slablayout",
		Short:        "SlabLayout places cut pieces on stock sheets",
		Long:         `SlabLayout is an interactive layout editor for placing polygon and circle pieces onto a material sheet, keeping them apart by a clearance margin.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if c.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(c.errOut, level)))

			cfg, err := project.LoadAppConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.SetVersionTemplate("slablayout {{.Version}}\ncommit: " + commit + "\nbuilt: " + date + "\n")

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "settings file")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.catalogCommand())

	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return New(os.Stdout, os.Stderr).RootCommand().ExecuteContext(ctx)
}
