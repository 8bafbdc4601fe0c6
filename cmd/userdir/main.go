// Package main provides the userdir command line tool for converting and
// inspecting user spreadsheets offline.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Environment variables win over .env; a missing file is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "userdir",
		Short: "Work with user directory spreadsheets",
		Long: `userdir reads user spreadsheets (xlsx, xls, csv) the same way the
directory server imports them, and manages the snapshot database.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConvertCmd(), newInspectCmd(), newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
