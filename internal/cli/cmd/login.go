package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagLoginEmail    string
	flagLoginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with your Seguro server",
	Long: `Authenticate with email and password and store the session token.

  seguro login --email you@example.com
  seguro login --email you@example.com --password secret   (scripting only)

Without --password the password is read from the terminal.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&flagLoginPassword, "password", "", "Account password (prompted if omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if flagLoginEmail == "" {
		return fmt.Errorf("--email is required")
	}

	password := flagLoginPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}

	client := api.NewClient(cfg.ServerURL, "")
	body := map[string]string{
		"email":    flagLoginEmail,
		"password": password,
	}

	var resp api.Response[api.LoginData]
	if err := client.Post("/auth/login", body, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return fmt.Errorf("invalid credentials")
		}
		return fmt.Errorf("logging in: %w", err)
	}

	cfg.Token = resp.Data.Token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if flagJSON {
		fmt.Fprintln(os.Stderr, "Token saved.")
		return nil
	}
	fmt.Printf("Logged in as %s (%s)\n", resp.Data.User.FullName, resp.Data.User.Email)
	return nil
}
