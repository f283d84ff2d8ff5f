package main

import (
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/commands"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// selectCmd edits the selections file from the command line
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show or edit the selected days",
	Long: `Without a subcommand, lists the selected days of the selections file
with the number of commits each one turns into.

Example:
  time-travel select add 2024-03-01 2024-03-01 2024-03-02
  time-travel select remove 2024-03-02
  time-travel select undo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		selections, err := selectionFile().LoadOrEmpty()
		if err != nil {
			return err
		}
		return commands.PrintSelections(cmd.OutOrStdout(), selections)
	},
}

var selectAddCmd = &cobra.Command{
	Use:   "add [date...]",
	Short: "Select days, raising the count of days already selected",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSelect(selection.ModeAdd),
}

var selectRemoveCmd = &cobra.Command{
	Use:   "remove [date...]",
	Short: "Deselect days",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSelect(selection.ModeRemove),
}

var selectClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deselect every day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.ClearSelections(selectionFile())
	},
}

var selectUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the selections from before the last change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		selections, err := commands.UndoSelections(selectionFile())
		if err != nil {
			return err
		}
		return commands.PrintSelections(cmd.OutOrStdout(), selections)
	},
}

func init() {
	selectCmd.AddCommand(selectAddCmd, selectRemoveCmd, selectClearCmd, selectUndoCmd)
}

func runSelect(mode selection.Mode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		selections, err := commands.Select(selectionFile(), mode, args, logger)
		if err != nil {
			return err
		}
		return commands.PrintSelections(cmd.OutOrStdout(), selections)
	}
}

func selectionFile() *app.SelectionFile {
	return app.NewSelectionFile(selectionsPath, logger)
}
