package main

import (
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/commands"
)

var replayRepo string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Commit the selected days into a git repository",
	Long: `Does what the generated script does without a shell: for every selected
day it appends count+1 lines to README.md, committing each one with the
day as author and committer date. A missing repository is initialized.

Example:
  time-travel replay --repo ./my-art`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.Replay(cmd.Context(), cmd.OutOrStdout(), selectionFile(), replayRepo, cfg.Replay, logger)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayRepo, "repo", ".", "Repository to commit into")
}
