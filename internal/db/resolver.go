package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/miqalab/miqa/internal/config"
	"github.com/miqalab/miqa/pkg/miqa"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-H, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. .pgpass file (PostgreSQL standard, handled by pgx)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database is excluded: it may legitimately override the database named in a
// connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// Client secret is NOT a flag; use AZURE_CLIENT_SECRET.
type AzureFlags struct {
	TenantID string
	ClientID string
}

// IsEmpty returns true if no Azure flags were provided.
func (a *AzureFlags) IsEmpty() bool {
	return a == nil || (a.TenantID == "" && a.ClientID == "")
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	// AWS / Google cloud auth knobs
	AWS_REGION           string
	MIQA_GOOGLE_INSTANCE string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:               os.Getenv("PGHOST"),
		PGPORT:               os.Getenv("PGPORT"),
		PGUSER:               os.Getenv("PGUSER"),
		PGPASSWORD:           os.Getenv("PGPASSWORD"),
		PGDATABASE:           os.Getenv("PGDATABASE"),
		PGSSLMODE:            os.Getenv("PGSSLMODE"),
		DATABASE_URL:         os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:      os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:      os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:  os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:           os.Getenv("AWS_REGION"),
		MIQA_GOOGLE_INSTANCE: os.Getenv("MIQA_GOOGLE_INSTANCE"),
	}
}

// ResolveConnectionParams resolves connection parameters using
// PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) — parsed and used directly
//  2. Granular flags (-H, -p, -U, -d)
//  3. Environment variables (PGHOST, PGPORT, ..., DATABASE_URL)
//  4. miqa.yaml connection section
//  5. Defaults (localhost:5432, prefer SSL)
//
// If Azure flags or AZURE_* environment variables are present, AuthMethod is
// switched to Azure Entra ID; flags win over environment.
//
// Returns an error if BOTH --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	azureFlags *AzureFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*miqa.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-H, -p, -U)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/miqa\"\n" +
				"  2. Granular flags: -H localhost -p 5432 -U myuser -d miqa\n" +
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
		)
	}

	var cfg *miqa.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	// Database flag overrides whatever the string or environment named.
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	applyCloudAuth(cfg, azureFlags, envVars, projectConfig)

	return cfg, nil
}

func resolveFromConnectionString(connStr string, envVars *EnvVars) (*miqa.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	// libpq behavior: environment variables fill parameters the connection
	// string leaves out.
	if cfg.Password == "" && envVars.PGPASSWORD != "" {
		cfg.Password = envVars.PGPASSWORD
	}
	if cfg.SSLMode == "" && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from flags, environment
// variables and miqa.yaml, in that order of precedence.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*miqa.ConnectionConfig, error) {
	cfg := defaultConfig()

	var fileConn *config.ConnectionConfig
	if projectConfig != nil {
		fileConn = &projectConfig.Connection
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.Host }), cfg.Host)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid PGPORT %q: %w", envVars.PGPORT, err)
		}
		cfg.Port = port
	case fileConn != nil && fileConn.Port != 0:
		cfg.Port = fileConn.Port
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.Username }))
	// No "postgres" fallback here: the commands require an explicit target
	// database and report a usage error when none is named.
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.Database }))
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.SSLMode }), "prefer")
	cfg.Password = envVars.PGPASSWORD

	if fileConn != nil {
		cfg.SSLCert = fileConn.SSLCert
		cfg.SSLKey = fileConn.SSLKey
		cfg.SSLRootCert = fileConn.SSLRootCert
		if cfg.SSLCert != "" && cfg.SSLKey != "" {
			cfg.AuthMethod = miqa.AuthMethodCertificate
		}
	}

	return cfg, nil
}

// applyCloudAuth switches the config to a cloud IAM auth method when the
// corresponding flags, environment variables, or config entries are present.
func applyCloudAuth(cfg *miqa.ConnectionConfig, flags *AzureFlags, env *EnvVars, projectConfig *config.ProjectConfig) {
	var fileConn *config.ConnectionConfig
	if projectConfig != nil {
		fileConn = &projectConfig.Connection
	}

	tenantID := firstNonEmpty(flags.TenantID, env.AZURE_TENANT_ID, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.AzureTenantID }))
	clientID := firstNonEmpty(flags.ClientID, env.AZURE_CLIENT_ID, fileVal(fileConn, func(c *config.ConnectionConfig) string { return c.AzureClientID }))

	if tenantID != "" || clientID != "" {
		cfg.AuthMethod = miqa.AuthMethodAzureEntraID
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		return
	}

	if fileConn == nil {
		return
	}

	switch fileConn.AuthMethod {
	case "aws_iam":
		cfg.AuthMethod = miqa.AuthMethodAWSIAM
		cfg.AWSRegion = firstNonEmpty(env.AWS_REGION, fileConn.AWSRegion)
	case "google_iam":
		cfg.AuthMethod = miqa.AuthMethodGoogleIAM
		cfg.GoogleInstance = firstNonEmpty(env.MIQA_GOOGLE_INSTANCE, fileConn.GoogleInstance)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fileVal(c *config.ConnectionConfig, get func(*config.ConnectionConfig) string) string {
	if c == nil {
		return ""
	}
	return get(c)
}
