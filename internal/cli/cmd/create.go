package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagCreateClassification string
	flagCreateDescription    string
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a document",
	Long: `Create a document with the given title.

  seguro create "Q3 Report"
  seguro create "Q3 Report" --classification confidential
  seguro create "Launch Codes" --classification restricted

Restricted documents print a one-time password on creation; public
documents print a permanent anonymous token. Neither is ever shown again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		body := map[string]interface{}{
			"title":          args[0],
			"classification": flagCreateClassification,
		}
		if flagCreateDescription != "" {
			body["description"] = flagCreateDescription
		}

		var resp api.Response[api.CreateDocumentData]
		if err := apiClient.Post("/documents/", body, &resp); err != nil {
			return fmt.Errorf("creating document: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		fmt.Printf("Created %q (%s)\n", resp.Data.Document.Title, resp.Data.Document.ID)
		if resp.Data.RestrictedPassword != "" {
			fmt.Printf("\nDocument password (shown once, store it now):\n  %s\n", resp.Data.RestrictedPassword)
		}
		if resp.Data.PublicToken != "" {
			fmt.Printf("\nPublic link token:\n  %s\n", resp.Data.PublicToken)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&flagCreateClassification, "classification", "private", "Classification: public, private, confidential, restricted")
	createCmd.Flags().StringVar(&flagCreateDescription, "description", "", "Document description")
	rootCmd.AddCommand(createCmd)
}
