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
	flagDownloadOutput  string
	flagDownloadVersion int
	flagDownloadURL     bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <doc-id>",
	Short: "Download a document's content",
	Long: `Download the latest revision of a document, or a specific one.

  seguro download 4f7c... --output report.pdf
  seguro download 4f7c... --version 2 --output old.pdf
  seguro download 4f7c... --url                 Print a presigned URL instead`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		docID := args[0]

		if flagDownloadURL {
			var resp api.Response[api.DownloadURLData]
			if err := apiClient.Get("/documents/"+docID+"/download-url", nil, &resp); err != nil {
				return fmt.Errorf("fetching download url: %w", err)
			}
			if flagJSON {
				output.JSON(resp.Data)
				return nil
			}
			fmt.Println(resp.Data.URL)
			fmt.Printf("Expires: %s\n", resp.Data.ExpiresAt)
			return nil
		}

		dest := flagDownloadOutput
		if dest == "" {
			dest = docID
		}

		path := "/documents/" + docID + "/download"
		if flagDownloadVersion > 0 {
			path += "?" + url.Values{"version": {strconv.Itoa(flagDownloadVersion)}}.Encode()
		}
		if err := apiClient.DownloadToFile(path, dest); err != nil {
			return fmt.Errorf("downloading: %w", err)
		}

		fmt.Printf("Saved to %s\n", dest)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&flagDownloadOutput, "output", "o", "", "Destination path (default: document id)")
	downloadCmd.Flags().IntVar(&flagDownloadVersion, "version", 0, "Revision number (default: latest)")
	downloadCmd.Flags().BoolVar(&flagDownloadURL, "url", false, "Print a presigned URL instead of downloading")
	rootCmd.AddCommand(downloadCmd)
}
