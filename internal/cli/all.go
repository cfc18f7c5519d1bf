package cli

import (
	"github.com/spf13/cobra"

	"github.com/miqalab/miqa/pkg/miqa"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Crawl GEO and ArrayExpress in sequence",
	Long: `Crawl both supported catalogs in sequence: NCBI GEO first, then
EBI ArrayExpress. Flags apply to both; --limit caps studies per repository,
not in total.

Examples:
  miqa all -d miqa --limit 20
  miqa all -d miqa --dry-run`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

var allFlags *crawlFlagValues

func init() {
	rootCmd.AddCommand(allCmd)
	allFlags = registerCrawlFlags(allCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	return runCrawl(cmd, allFlags, []string{miqa.RepositoryGEO, miqa.RepositoryArrayExpress})
}
