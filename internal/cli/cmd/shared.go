package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List documents shared with you",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.SharedDocumentData]
		if err := apiClient.Get("/documents/shared", nil, &resp); err != nil {
			return fmt.Errorf("listing shared documents: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.SharedTable(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sharedCmd)
}
