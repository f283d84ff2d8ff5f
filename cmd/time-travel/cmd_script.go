package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/commands"
)

var scriptOutput string

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the commit script for the selected days",
	Long: `Writes a shell script that makes count+1 backdated commits for every
selected day. Run it inside the repository the commits should land in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scriptOutput == "" || scriptOutput == "-" {
			return commands.WriteScript(cmd.OutOrStdout(), selectionFile())
		}

		f, err := os.OpenFile(scriptOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return err
		}
		if err := commands.WriteScript(f, selectionFile()); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptOutput, "output", "o", "", "Write the script to this file instead of stdout")
}
