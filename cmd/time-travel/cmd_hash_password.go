package main

import (
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/commands"
)

var (
	overwriteAuth  bool
	insecureUnmask bool
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Create the auth file that protects selection editing",
	Long: `Creates an auth.secret file with a hashed password (Argon2id).

The file is read from the server.auth_file config key or the AUTH_FILE
environment variable, and defaults to auth.secret next to the binary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.HashPassword(commands.HashPasswordOptions{
			AuthFile:       cfg.Server.AuthFile,
			Overwrite:      overwriteAuth,
			InsecureUnmask: insecureUnmask,
			In:             cmd.InOrStdin(),
			Out:            cmd.OutOrStdout(),
		})
	},
}

func init() {
	hashPasswordCmd.Flags().BoolVar(&overwriteAuth, "overwrite", false, "Overwrite existing auth file without asking")
	hashPasswordCmd.Flags().BoolVar(&insecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
}
