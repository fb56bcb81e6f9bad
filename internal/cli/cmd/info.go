package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <doc-id>",
	Short: "Show document details and your permissions",
	Long: `Show a document's metadata and the permissions you hold on it.

  seguro info 4f7c...
  seguro info 4f7c... --gate <gate-token>   (restricted documents)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.DocumentDetailData]
		if err := apiClient.Get("/documents/"+args[0], nil, &resp); err != nil {
			return fmt.Errorf("fetching document: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.DocumentDetail(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
