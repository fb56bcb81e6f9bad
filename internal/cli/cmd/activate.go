package cmd

import (
	"fmt"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <token>",
	Short: "Redeem a share link token",
	Long: `Redeem a share link token you received. On success a grant is
created for your account and the document appears under "seguro shared".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Grant]
		if err := apiClient.Post("/links/activate", map[string]string{"token": args[0]}, &resp); err != nil {
			return fmt.Errorf("activating link: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		perms := output.PermissionString(api.PermissionSet{
			CanView:     resp.Data.CanView,
			CanDownload: resp.Data.CanDownload,
			CanEdit:     resp.Data.CanEdit,
			CanShare:    resp.Data.CanShare,
		})
		fmt.Printf("Link activated. You now have %s access to document %s.\n", perms, resp.Data.DocumentID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
}
