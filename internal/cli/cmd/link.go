package cmd

import (
	"fmt"
	"time"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagLinkPermissions string
	flagLinkExpires     string
	flagLinkMaxUses     int

	flagRecipientPermissions string
	flagRecipientMaxUses     int
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage share links",
}

var linkCreateCmd = &cobra.Command{
	Use:   "create <doc-id>",
	Short: "Create a share link for a document",
	Long: `Create a share link. The full token is printed exactly once;
only its prefix is stored and listed afterwards.

  seguro link create 4f7c...
  seguro link create 4f7c... --permissions view,download --max-uses 5
  seguro link create 4f7c... --expires 2026-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		perms, err := parsePermissions(flagLinkPermissions)
		if err != nil {
			return err
		}

		body := map[string]interface{}{
			"permissions": perms,
		}
		if flagLinkMaxUses > 0 {
			body["maxUses"] = flagLinkMaxUses
		}
		if flagLinkExpires != "" {
			expires, err := time.Parse("2006-01-02", flagLinkExpires)
			if err != nil {
				return fmt.Errorf("invalid --expires date (want YYYY-MM-DD): %w", err)
			}
			body["expiresAt"] = expires
		}

		var resp api.Response[api.CreateLinkData]
		if err := apiClient.Post("/documents/"+args[0]+"/links", body, &resp); err != nil {
			return fmt.Errorf("creating link: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Link %s created.\n\nToken (shown once, store it now):\n  %s\n", resp.Data.Link.ID, resp.Data.Token)
		return nil
	},
}

var linkListCmd = &cobra.Command{
	Use:   "list <doc-id>",
	Short: "List the share links on a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.ShareLink]
		if err := apiClient.Get("/documents/"+args[0]+"/links", nil, &resp); err != nil {
			return fmt.Errorf("listing links: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.LinkTable(resp.Data)
		return nil
	},
}

var linkRevokeCmd = &cobra.Command{
	Use:   "revoke <link-id>",
	Short: "Revoke a share link",
	Long: `Revoke a share link. Grants already obtained through the link are
revoked as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[map[string]string]
		if err := apiClient.Delete("/links/"+args[0], &resp); err != nil {
			return fmt.Errorf("revoking link: %w", err)
		}
		fmt.Println("Link revoked.")
		return nil
	},
}

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage a link's authorized recipients",
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add <link-id> <email>",
	Short: "Authorize an email for a link",
	Long: `Authorize an email address to activate a link. Recipient
permissions must be a subset of the link's own permissions.

  seguro link recipients add 8c3a... alice@example.com
  seguro link recipients add 8c3a... alice@example.com --permissions view,download --max-uses 1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		perms, err := parsePermissions(flagRecipientPermissions)
		if err != nil {
			return err
		}

		body := map[string]interface{}{
			"email":       args[1],
			"permissions": perms,
		}
		if flagRecipientMaxUses > 0 {
			body["maxUses"] = flagRecipientMaxUses
		}

		var resp api.Response[api.LinkRecipient]
		if err := apiClient.Post("/links/"+args[0]+"/recipients", body, &resp); err != nil {
			return fmt.Errorf("adding recipient: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Recipient %s authorized.\n", resp.Data.Email)
		return nil
	},
}

var recipientsListCmd = &cobra.Command{
	Use:   "list <link-id>",
	Short: "List a link's recipients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.LinkRecipient]
		if err := apiClient.Get("/links/"+args[0]+"/recipients", nil, &resp); err != nil {
			return fmt.Errorf("listing recipients: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.RecipientTable(resp.Data)
		return nil
	},
}

var recipientsRevokeCmd = &cobra.Command{
	Use:   "revoke <link-id> <recipient-id>",
	Short: "Revoke a recipient's authorization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[map[string]string]
		if err := apiClient.Delete("/links/"+args[0]+"/recipients/"+args[1], &resp); err != nil {
			return fmt.Errorf("revoking recipient: %w", err)
		}
		fmt.Println("Recipient revoked.")
		return nil
	},
}

func init() {
	linkCreateCmd.Flags().StringVar(&flagLinkPermissions, "permissions", "view", "Comma-separated: view, download, edit, share")
	linkCreateCmd.Flags().StringVar(&flagLinkExpires, "expires", "", "Expiry date (YYYY-MM-DD)")
	linkCreateCmd.Flags().IntVar(&flagLinkMaxUses, "max-uses", 0, "Activation cap (0 = unlimited)")

	recipientsAddCmd.Flags().StringVar(&flagRecipientPermissions, "permissions", "view", "Comma-separated: view, download, edit, share")
	recipientsAddCmd.Flags().IntVar(&flagRecipientMaxUses, "max-uses", 0, "Per-recipient activation cap (0 = link default)")

	recipientsCmd.AddCommand(recipientsAddCmd)
	recipientsCmd.AddCommand(recipientsListCmd)
	recipientsCmd.AddCommand(recipientsRevokeCmd)

	linkCmd.AddCommand(linkCreateCmd)
	linkCmd.AddCommand(linkListCmd)
	linkCmd.AddCommand(linkRevokeCmd)
	linkCmd.AddCommand(recipientsCmd)
	rootCmd.AddCommand(linkCmd)
}
