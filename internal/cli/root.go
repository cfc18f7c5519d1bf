package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `        _
  _ __ (_)__ _ __ _
 | '  \| / _` + "`" + ` / _` + "`" + ` |
 |_|_|_|_\__, \__,_|
            |_|`

var rootCmd = &cobra.Command{
	Use:   "miqa",
	Short: "Methylation microarray catalog crawler",
	Long: asciiLogo + `

miqa crawls public DNA methylation microarray catalogs (NCBI GEO and EBI
ArrayExpress), stores study and sample metadata in PostgreSQL, and optionally
mirrors raw IDAT files into S3-compatible object storage.

Re-crawling is idempotent: studies, samples, and files already in the
database are skipped, not duplicated.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - User denied schema reset approval
  13 - Remote catalog request failed
  14 - Remote catalog returned an unparseable payload
  15 - Object storage upload failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for miqa")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
