package cmd

import (
	"fmt"
	"syscall"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var flagUnlockPassword string

var unlockCmd = &cobra.Command{
	Use:   "unlock <doc-id>",
	Short: "Verify a restricted document's password",
	Long: `Verify a restricted document's password and print a short-lived
gate token. Pass the token to other commands with --gate.

  seguro unlock 4f7c...
  seguro download 4f7c... --gate <gate-token> --output secret.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		password := flagUnlockPassword
		if password == "" {
			fmt.Print("Document password: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password = string(raw)
		}

		var resp api.Response[api.VerifyPasswordData]
		if err := apiClient.Post("/documents/"+args[0]+"/verify-password", map[string]string{"password": password}, &resp); err != nil {
			return fmt.Errorf("verifying password: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Gate token (valid until %s):\n  %s\n", resp.Data.ExpiresAt, resp.Data.GateToken)
		return nil
	},
}

func init() {
	unlockCmd.Flags().StringVar(&flagUnlockPassword, "password", "", "Document password (prompted if omitted)")
	rootCmd.AddCommand(unlockCmd)
}
