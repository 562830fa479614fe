package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		stores storeOpts
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the part and material catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, closeStore, err := c.openStore(ctx, stores)
			if err != nil {
				return err
			}
			defer closeStore()

			app := server.New(store, logger)
			go func() {
				<-ctx.Done()
				if err := app.Shutdown(); err != nil {
					logger.Error("shutdown", "err", err)
				}
			}()

			logger.Info("starting catalog server", "addr", addr)
			return app.Listen(addr)
		},
	}

	stores.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	return cmd
}
