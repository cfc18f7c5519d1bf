package cli

import (
	"github.com/spf13/cobra"

	"github.com/miqalab/miqa/pkg/miqa"
)

var arrayExpressCmd = &cobra.Command{
	Use:     "arrayexpress",
	Aliases: []string{"ae"},
	Short:   "Crawl EBI ArrayExpress for methylation array studies",
	Long: `Crawl EBI ArrayExpress (BioStudies) for DNA methylation microarray studies.

The arrayexpress command:
1. Searches BioStudies for methylation-profiling-by-array studies with
   IDAT files
2. Fetches each study's SDRF sample table from the FIRE file mirror
3. Upserts study and sample metadata into PostgreSQL
4. Optionally downloads raw array files and mirrors them to object storage

Examples:
  # Crawl the default number of studies, metadata only
  miqa arrayexpress -d miqa --no-download

  # Crawl everything (can take hours)
  miqa ae -d miqa --limit -1`,
	Args: cobra.NoArgs,
	RunE: runArrayExpress,
}

var arrayExpressFlags *crawlFlagValues

func init() {
	rootCmd.AddCommand(arrayExpressCmd)
	arrayExpressFlags = registerCrawlFlags(arrayExpressCmd)
}

func runArrayExpress(cmd *cobra.Command, args []string) error {
	return runCrawl(cmd, arrayExpressFlags, []string{miqa.RepositoryArrayExpress})
}
