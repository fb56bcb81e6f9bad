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
	flagLsPage  int
	flagLsLimit int
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List your documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{
			"page":  {strconv.Itoa(flagLsPage)},
			"limit": {strconv.Itoa(flagLsLimit)},
		}

		var resp api.Response[[]api.Document]
		if err := apiClient.Get("/documents/", params, &resp); err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.DocumentTable(resp.Data)
		if resp.Pagination != nil && resp.Pagination.TotalPages > 1 {
			fmt.Printf("\nPage %d of %d (%d documents)\n", resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.Total)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().IntVar(&flagLsPage, "page", 1, "Page number")
	lsCmd.Flags().IntVar(&flagLsLimit, "limit", 20, "Results per page")
	rootCmd.AddCommand(lsCmd)
}
