package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <doc-id>",
	Short: "List a document's revisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.DocumentVersion]
		if err := apiClient.Get("/documents/"+args[0]+"/versions", nil, &resp); err != nil {
			return fmt.Errorf("listing versions: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.VersionTable(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
