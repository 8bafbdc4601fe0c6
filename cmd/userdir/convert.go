package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/user-directory-api/internal/models"
	"github.com/user-directory-api/internal/service"
	"github.com/user-directory-api/internal/spreadsheet"
)

func newConvertCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Normalize a spreadsheet into a user_list.xlsx export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := convertFile(args[0], outputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d users to %s\n", n, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", spreadsheet.ExportFilename, "Output file path")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Print the users a spreadsheet would import as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectFile(args[0], cmd.OutOrStdout(), pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// loadUsers reads and normalizes a spreadsheet the way an upload is imported
func loadUsers(inputPath string) ([]models.User, error) {
	if !spreadsheet.ValidateFileKind(filepath.Base(inputPath), "") {
		return nil, fmt.Errorf("%w: %s", spreadsheet.ErrInvalidFileKind, inputPath)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	rows, err := spreadsheet.Decode(data)
	if err != nil {
		return nil, err
	}
	return service.NormalizeRows(rows, service.NewID, service.RandomAvatar), nil
}

func convertFile(inputPath, outputPath string) (int, error) {
	users, err := loadUsers(inputPath)
	if err != nil {
		return 0, err
	}

	data, err := spreadsheet.Encode(users)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write output: %w", err)
	}
	return len(users), nil
}

func inspectFile(inputPath string, w io.Writer, pretty bool) error {
	users, err := loadUsers(inputPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(users); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return nil
}
