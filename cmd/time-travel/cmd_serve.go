package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long: `Serves the calendar UI and its JSON API.

Without a contributions username in the config the calendar shows random
placeholder activity. Selection editing is protected with Basic Auth once
an auth file exists (see hash-password).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config and TIME_TRAVEL_PORT)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	authFile, err := app.ResolveAuthFile(cfg.Server.AuthFile)
	if err != nil {
		return err
	}
	auth, err := app.LoadAuthenticator(authFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load auth credentials: %w", err)
	}

	var fetcher contributions.Fetcher
	if cfg.Contributions.Username != "" {
		fetcher = contributions.NewClient(cfg.Contributions.BaseURL, cfg.Contributions.Timeout)
	}

	srv := app.NewServer(app.Options{
		Config:    cfg,
		Logger:    logger,
		Static:    staticFiles,
		IndexHTML: indexHTML,
		Fetcher:   fetcher,
		Auth:      auth,
	})
	return srv.Run(cmd.Context())
}
