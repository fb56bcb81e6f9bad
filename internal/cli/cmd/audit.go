package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/seguro/backend/internal/cli/api"
	"github.com/seguro/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagAuditPage  int
	flagAuditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show your audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{
			"page":  {strconv.Itoa(flagAuditPage)},
			"limit": {strconv.Itoa(flagAuditLimit)},
		}

		var resp api.Response[[]api.AuditEntry]
		if err := apiClient.Get("/audit-log", params, &resp); err != nil {
			return fmt.Errorf("fetching audit log: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.AuditTable(resp.Data)
		if resp.Pagination != nil && resp.Pagination.TotalPages > 1 {
			fmt.Printf("\nPage %d of %d (%d entries)\n", resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.Total)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&flagAuditPage, "page", 1, "Page number")
	auditCmd.Flags().IntVar(&flagAuditLimit, "limit", 20, "Results per page")
	rootCmd.AddCommand(auditCmd)
}
