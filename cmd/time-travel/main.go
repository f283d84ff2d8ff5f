package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/logging"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed static/index.html
var indexHTML []byte

var (
	// Global flags
	configPath     string
	selectionsPath string
	verbose        bool
	jsonLogs       bool

	cfg    app.Config
	logger *zap.Logger
)

// rootCmd starts the server when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "time-travel",
	Short: "Paint fake commits onto a contribution calendar",
	Long: `time-travel shows a contribution calendar in the browser and lets you
pick days to backdate commits to. The picks become a shell script of dated
git commits, or are replayed directly into a repository.

Run without arguments to start the web interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = app.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logger, err = logging.New(verbose || cfg.Log.Verbose, jsonLogs || cfg.Log.JSON)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", zap.String("file", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", app.DefaultConfigFile, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&selectionsPath, "file", "f", app.DefaultSelectionsFile, "Path to the selections file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Log as JSON")

	rootCmd.AddCommand(serveCmd, selectCmd, scriptCmd, renderCmd, replayCmd, hashPasswordCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
