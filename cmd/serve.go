package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/server"
)

// Serve command flags.
var serveAddr string

// NewServeCommand creates the playback server command.
func NewServeCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest and assets to players",
		Long: `Run the HTTP server players pull the broadcast from. The manifest is
read from disk on every request, so a rebuild is picked up without a
restart. Media and audio assets are streamed from the configured
directories. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config

			addr := serveAddr
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv := server.New(addr, cfg.Paths.ManifestPath, cfg.Paths.MediaDir, cfg.Paths.AudioDir, deps.Logger)
			deps.Logger.Info("serving broadcast",
				logging.F("addr", addr),
				logging.F("manifest", cfg.Paths.ManifestPath))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")

	return cmd
}
