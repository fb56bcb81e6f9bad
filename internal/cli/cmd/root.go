package cmd

import (
	"fmt"
	"os"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string
	flagGateToken string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "seguro",
	Short: "Seguro CLI — manage classified documents from the terminal",
	Long: `Seguro CLI lets you create, share, and download classified documents
on your Seguro server without leaving the terminal.

Get started:
  seguro login --email you@example.com   Authenticate with email and password
  seguro ls                              List your documents
  seguro create "Q3 Report"              Create a document
  seguro upload <doc-id> report.pdf      Upload a revision`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		apiClient.GateToken = flagGateToken
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&flagGateToken, "gate", "", "Gate token from \"seguro unlock\" for restricted documents")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// requireAuth is a helper that returns an error if no token is configured.
func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated — run \"seguro login\" first")
	}
	return nil
}
