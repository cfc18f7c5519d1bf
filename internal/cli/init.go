package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/miqalab/miqa/internal/config"
)

const starterConfig = `# miqa project configuration
# Connection values are overridden by PG* environment variables and CLI flags.
connection:
  host: localhost
  port: 5432
  username: postgres
  database: miqa
  sslmode: prefer
  # Managed-Postgres IAM auth (uncomment one):
  # auth_method: aws_iam
  # aws_region: us-east-1
  # auth_method: google_iam
  # google_instance: project:region:instance
  # azure_tenant_id: 00000000-0000-0000-0000-000000000000
  # azure_client_id: 00000000-0000-0000-0000-000000000000

# S3-compatible object storage for mirrored IDAT files.
# Credentials come from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, never here.
storage:
  # endpoint: https://nyc3.digitaloceanspaces.com
  bucket: ""
  # region: nyc3

crawl:
  # study_limit: 10      # studies per repository, -1 for unlimited
  # sample_limit: 0      # samples per study, 0 for all
  # download: true       # mirror IDAT files, not just metadata
  # download_dir: ""     # scratch dir for in-flight downloads
  # timeout: 30m
  # platforms: [GPL13534, GPL16304, GPL21145]
`

const starterEnv = `# miqa environment template - copy to .env and fill in.
# .env is loaded automatically before flag resolution.

# Database (libpq-standard variables)
#PGHOST=localhost
#PGPORT=5432
#PGUSER=postgres
#PGPASSWORD=
#PGDATABASE=miqa
# Or a full connection string instead:
#DATABASE_URL=postgresql://postgres@localhost:5432/miqa

# Object storage (S3 or any S3-compatible endpoint)
#S3_ENDPOINT_URL=
#S3_BUCKET=
#AWS_ACCESS_KEY_ID=
#AWS_SECRET_ACCESS_KEY=
`

var initCmd = &cobra.Command{
	Use:   "init [target_path]",
	Short: "Initialize a miqa project directory",
	Long: `Initialize a miqa project directory with:
- miqa.yaml  (connection, storage, and crawl settings)
- .env.example (environment variable template)

Existing files are never overwritten.

Examples:
  miqa init               # Initialize in current directory
  miqa init ./mycatalog   # Initialize in ./mycatalog`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := "."
	if len(args) == 1 {
		targetPath = args[0]
	}

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{config.ConfigFileName, starterConfig},
		{".env.example", starterEnv},
	}

	var created []string
	for _, f := range files {
		path := filepath.Join(targetPath, f.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "✗ %s already exists, skipping\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		created = append(created, f.name)
	}

	if len(created) == 0 {
		return fmt.Errorf("nothing to do: project files already exist in '%s'", targetPath)
	}

	fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s'\n\n", targetPath)
	fmt.Fprintln(os.Stderr, "Created:")
	for _, name := range created {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(os.Stderr, "  cp .env.example .env   # and fill in credentials")
	fmt.Fprintln(os.Stderr, "  miqa geo --dry-run     # preview a GEO crawl")
	return nil
}
