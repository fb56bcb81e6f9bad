package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagUnshareAll bool

var unshareCmd = &cobra.Command{
	Use:   "unshare <doc-id> [user-id]",
	Short: "Revoke a user's access to a document",
	Long: `Revoke a grant, or every grant on the document with --all.

  seguro unshare 4f7c... 9a21...
  seguro unshare 4f7c... --all`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if flagUnshareAll {
			var resp api.Response[map[string]int]
			if err := apiClient.Delete("/documents/"+args[0]+"/grants", &resp); err != nil {
				return fmt.Errorf("revoking grants: %w", err)
			}
			fmt.Printf("Revoked %d grant(s).\n", resp.Data["revokedCount"])
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("user-id is required unless --all is set")
		}

		var resp api.Response[map[string]string]
		if err := apiClient.Delete("/documents/"+args[0]+"/grants/"+args[1], &resp); err != nil {
			return fmt.Errorf("revoking grant: %w", err)
		}
		fmt.Println("Grant revoked.")
		return nil
	},
}

var grantsCmd = &cobra.Command{
	Use:   "grants <doc-id>",
	Short: "List the grants on a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.Grant]
		if err := apiClient.Get("/documents/"+args[0]+"/grants", nil, &resp); err != nil {
			return fmt.Errorf("listing grants: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GrantTable(resp.Data)
		return nil
	},
}

func init() {
	unshareCmd.Flags().BoolVar(&flagUnshareAll, "all", false, "Revoke every grant on the document")
	rootCmd.AddCommand(unshareCmd)
	rootCmd.AddCommand(grantsCmd)
}
