package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/infrastructure/config"
	"github.com/ersonp/watlas/internal/transport/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wiki over HTTP",
		Long: "Starts the JSON API under /api/v1. Requests may pass canonical, universe and all\n" +
			"query parameters; otherwise the saved view applies.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				if addr == "" {
					addr = d.Config.Server.Addr
				}

				srv := httpapi.NewServer(d.App, httpapi.Options{
					Addr:            addr,
					Mode:            d.Config.Server.Mode,
					ShutdownTimeout: d.Config.Server.ShutdownTimeout,
					DefaultScope:    d.Scope(),
					Universes:       registeredUniverses(d.BasePath),
					ImagesDir:       d.ImagesDir,
				})
				return srv.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")

	return cmd
}

// registeredUniverses rereads the registry on every call so CLI changes
// show up without a restart.
func registeredUniverses(basePath string) func() []string {
	return func() []string {
		universes, err := config.LoadUniverses(basePath)
		if err != nil {
			log.Warn().Err(err).Msg("loading universes")
			return nil
		}
		return universes.Names()
	}
}
