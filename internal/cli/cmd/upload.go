package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <doc-id> <file>",
	Short: "Upload a new revision of a document",
	Long: `Upload a file as the next revision of a document.

  seguro upload 4f7c... report.pdf
  seguro upload 4f7c... report.pdf --gate <gate-token>   (restricted documents)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.DocumentVersion]
		if err := apiClient.Upload("/documents/"+args[0]+"/versions", "file", args[1], &resp); err != nil {
			return fmt.Errorf("uploading: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Uploaded %s as v%d (%s)\n", resp.Data.Filename, resp.Data.VersionNum, output.FormatSize(resp.Data.SizeBytes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
