package cmd

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/expiration"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/server"
	"github.com/tranvictor/uns/ui"
)

var ListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve name resolution over HTTP",
	Long: `Start the HTTP API. Every lookup the CLI offers is available under /v1,
together with cache statistics and expiry tracking of ENS names. Expiry
events are logged as they fire.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			if ListenAddr != "" {
				cfg.Server.ListenAddr = ListenAddr
			}
			var tracker *expiration.Tracker
			if cfg.Resolvers.ENS.Enabled {
				t, cleanup, err := newTracker(ctx, cfg, svc)
				if err != nil {
					return err
				}
				defer cleanup()
				t.Start()
				defer t.Stop()
				tracker = t
			} else {
				log.Warn("ENS is disabled, expiry tracking is off")
			}
			u.Success("Serving on %s", cfg.Server.ListenAddr)
			return server.New(svc, tracker).ListenAndServe(ctx, cfg.Server.ListenAddr)
		})
	},
}

func init() {
	serveCmd.Flags().StringVarP(&ListenAddr, "listen", "l", "", "Address to listen on, overrides the config file.")
	rootCmd.AddCommand(serveCmd)
}
