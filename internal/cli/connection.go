package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/miqalab/miqa/internal/config"
	"github.com/miqalab/miqa/internal/db"
	"github.com/miqalab/miqa/pkg/miqa"
)

// connectionStringFromEnv returns the first non-empty connection string from
// MIQA_CONNECTION_STRING or DATABASE_URL environment variables.
func connectionStringFromEnv() string {
	if s := os.Getenv("MIQA_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// resolveConnection consolidates connection resolution for the crawl and
// reset commands. It handles the connection string flag, granular flags,
// Azure flags, environment variables, and miqa.yaml.
func resolveConnection(
	connStringFlag string,
	granularFlags *db.GranularConnFlags,
	azureFlags *db.AzureFlags,
	projectConfig *config.ProjectConfig,
) (*miqa.ConnectionConfig, error) {
	connString := connStringFlag
	if connString == "" && granularFlags.IsEmpty() {
		connString = connectionStringFromEnv()
	}

	envVars := db.LoadFromEnvironment()

	return db.ResolveConnectionParams(connString, granularFlags, azureFlags, envVars, projectConfig)
}

// resolveTargetDatabase applies database precedence: the -d/--database flag
// always wins over the connection string database.
func resolveTargetDatabase(flagDatabase, connConfigDatabase, commandName string, verbose bool) (string, error) {
	targetDB := flagDatabase

	if targetDB != "" {
		if verbose && connConfigDatabase != "" && targetDB != connConfigDatabase {
			fmt.Fprintf(os.Stderr, "[VERBOSE] Using --database flag (%s) instead of connection string database (%s)\n",
				targetDB, connConfigDatabase)
		}
	} else {
		targetDB = connConfigDatabase
	}

	if targetDB == "" {
		return "", fmt.Errorf("database name is required\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: miqa %s -d miqa\n"+
			"  2. Connection string: miqa %s --connection \"postgresql://user@host/miqa\"\n"+
			"  3. Environment variable: export PGDATABASE=miqa\n"+
			"  4. miqa.yaml connection section: %w",
			commandName, commandName, miqa.ErrInvalidConfig)
	}

	return targetDB, nil
}

// loadProjectConfig reads miqa.yaml from the working directory. A missing
// file is not an error; any other read or parse failure is.
func loadProjectConfig(verbose bool) (*config.ProjectConfig, error) {
	projectCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Loaded %s\n", config.ConfigFileName)
	}
	return projectCfg, nil
}
