package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/miqalab/miqa/internal/db"
	"github.com/miqalab/miqa/internal/logging"
	"github.com/miqalab/miqa/internal/ui"
	"github.com/miqalab/miqa/pkg/miqa"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the study catalog schema",
	Long: `Drop and recreate the study catalog schema (study, sample, and
idat_file tables) in the target database.

This permanently deletes all crawled metadata. Mirrored files in object
storage are NOT touched.

Requires interactive confirmation (typing the database name) unless --force
is given, in which case a countdown runs instead.

Examples:
  miqa reset -d miqa
  miqa reset -d miqa --force     # CI/CD pipelines`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

type resetFlagValues struct {
	connection, host, username, database, sslMode string
	port                                          int
	azureTenantID, azureClientID                  string
	passwordPrompt                                bool
	force                                         bool
	timeout                                       time.Duration
}

var resetFlags resetFlagValues

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringVar(&resetFlags.connection, "connection", "",
		"PostgreSQL connection string (URI or keyword/value format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).")
	resetCmd.Flags().StringVarP(&resetFlags.host, "host", "h", "",
		"PostgreSQL server host (default: $PGHOST or localhost)")
	resetCmd.Flags().IntVarP(&resetFlags.port, "port", "p", 0,
		"PostgreSQL server port (default: $PGPORT or 5432)")
	resetCmd.Flags().StringVarP(&resetFlags.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER)")
	resetCmd.Flags().StringVarP(&resetFlags.database, "database", "d", "",
		"Target database name (overrides connection string and $PGDATABASE)")
	resetCmd.Flags().StringVar(&resetFlags.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full")
	resetCmd.Flags().BoolVarP(&resetFlags.passwordPrompt, "password-prompt", "W", false,
		"Force an interactive password prompt (like psql -W)")
	resetCmd.Flags().StringVar(&resetFlags.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	resetCmd.Flags().StringVar(&resetFlags.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	resetCmd.Flags().BoolVar(&resetFlags.force, "force", false,
		"Skip the interactive confirmation prompt\n"+
			"A short countdown runs instead; Ctrl+C cancels")
	resetCmd.Flags().DurationVar(&resetFlags.timeout, "timeout", 1*time.Minute,
		"Timeout for the reset operation")
}

func runReset(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	_ = godotenv.Load()

	projectCfg, err := loadProjectConfig(verbose)
	if err != nil {
		return err
	}

	granularFlags := &db.GranularConnFlags{
		Host:     resetFlags.host,
		Port:     resetFlags.port,
		Username: resetFlags.username,
		Database: resetFlags.database,
		SSLMode:  resetFlags.sslMode,
	}
	azureFlags := &db.AzureFlags{
		TenantID: resetFlags.azureTenantID,
		ClientID: resetFlags.azureClientID,
	}

	connConfig, err := resolveConnection(resetFlags.connection, granularFlags, azureFlags, projectCfg)
	if err != nil {
		return err
	}

	targetDB, err := resolveTargetDatabase(resetFlags.database, connConfig.Database, "reset", verbose)
	if err != nil {
		return err
	}
	connConfig.Database = targetDB

	if resetFlags.passwordPrompt {
		password, err := promptPassword(connConfig.Username)
		if err != nil {
			return err
		}
		connConfig.Password = password
	}

	logger := logging.NewConsoleLogger(verbose)

	var approver miqa.Approver
	if resetFlags.force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), resetFlags.timeout)
	defer cancel()

	approved, err := approver.RequestApproval(ctx, targetDB)
	if err != nil {
		return err
	}
	if !approved {
		return miqa.ErrApprovalDenied
	}

	connector, err := db.NewConnector(connConfig)
	if err != nil {
		return err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", miqa.ErrConnectionFailed, err)
	}
	defer pool.Close()

	store := db.NewPostgresStore(db.NewPoolAdapter(pool), logger)
	if err := store.ResetSchema(ctx); err != nil {
		return fmt.Errorf("schema reset failed: %w", err)
	}

	fmt.Printf("Schema reset complete in database '%s'\n", targetDB)
	return nil
}
