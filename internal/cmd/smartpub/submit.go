package smartpub

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartpublish/registry/internal/content/localfs"
	"github.com/smartpublish/registry/pkg/sdk"
)

func newSubmitCommand() *cobra.Command {
	var (
		title       string
		abstract    string
		filePath    string
		workflowID  string
		externalID  string
		contentRoot string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Store a paper's content and register it for peer review",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read paper file: %w", err)
			}

			store, err := localfs.New(contentRoot)
			if err != nil {
				return fmt.Errorf("open content store: %w", err)
			}
			desc, err := store.Put(data)
			if err != nil {
				return fmt.Errorf("store content: %w", err)
			}

			created, err := newClient(cmd).CreatePaper(cmd.Context(), sdk.PaperSubmission{
				Title:                 title,
				Abstract:              abstract,
				FileSystemName:        desc.FileSystemName,
				PublicLocation:        desc.PublicLocation,
				HashAlgorithm:         desc.HashAlgorithm,
				Hash:                  desc.Hash,
				WorkflowID:            workflowID,
				ExternalContributorID: externalID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "submitted %s\n", created.Address)
			fmt.Fprintf(out, "  state: %s\n", created.State)
			fmt.Fprintf(out, "  %s: %s\n", desc.HashAlgorithm, desc.Hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "paper title")
	cmd.Flags().StringVar(&abstract, "abstract", "", "paper abstract")
	cmd.Flags().StringVar(&filePath, "file", "", "path to the paper's content file")
	cmd.Flags().StringVar(&workflowID, "workflow", "", "workflow id to submit into")
	cmd.Flags().StringVar(&externalID, "author", "", "author external id, e.g. an ORCID iD")
	cmd.Flags().StringVar(&contentRoot, "content-dir", defaultContentDir(), "local content store directory")
	for _, required := range []string{"title", "abstract", "file", "workflow", "author"} {
		_ = cmd.MarkFlagRequired(required)
	}
	return cmd
}

func defaultContentDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "smartpub-content"
	}
	return filepath.Join(home, ".smartpub", "content")
}
