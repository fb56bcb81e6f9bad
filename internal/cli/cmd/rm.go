package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <doc-id>",
	Short: "Delete a document",
	Long: `Delete a document you own. All grants and share links on it are
revoked as part of the delete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[map[string]string]
		if err := apiClient.Delete("/documents/"+args[0], &resp); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}

		fmt.Println("Document deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
