package db

import (
	"testing"

	"github.com/miqalab/miqa/internal/config"
	"github.com/miqalab/miqa/pkg/miqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGranularConnFlags_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		flags GranularConnFlags
		want  bool
	}{
		{"empty flags", GranularConnFlags{}, true},
		{"only host set", GranularConnFlags{Host: "localhost"}, false},
		{"only port set", GranularConnFlags{Port: 5432}, false},
		{"only username set", GranularConnFlags{Username: "miqa"}, false},
		{"only sslmode set", GranularConnFlags{SSLMode: "require"}, false},
		// Database may accompany a connection string, so it does not count.
		{"only database set", GranularConnFlags{Database: "miqa"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.IsEmpty())
		})
	}
}

func TestResolveConnectionParams_ConflictingFlags(t *testing.T) {
	_, err := ResolveConnectionParams(
		"postgresql://localhost/miqa",
		&GranularConnFlags{Host: "otherhost"},
		nil, &EnvVars{}, nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot specify both")
}

func TestResolveConnectionParams_ConnectionStringWins(t *testing.T) {
	cfg, err := ResolveConnectionParams(
		"postgresql://miqa@db.example.org:5433/methylation?sslmode=require",
		nil, nil,
		&EnvVars{PGHOST: "ignored", PGPASSWORD: "envsecret"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "db.example.org", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "methylation", cfg.Database)
	assert.Equal(t, "require", cfg.SSLMode)
	// Password not in the string is filled from the environment.
	assert.Equal(t, "envsecret", cfg.Password)
}

func TestResolveConnectionParams_DatabaseURLFallback(t *testing.T) {
	cfg, err := ResolveConnectionParams(
		"", nil, nil,
		&EnvVars{DATABASE_URL: "postgresql://miqa:pw@db.example.org/methylation"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "db.example.org", cfg.Host)
	assert.Equal(t, "methylation", cfg.Database)
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, "prefer", cfg.SSLMode)
}

func TestResolveConnectionParams_GranularFlagsBeatDatabaseURL(t *testing.T) {
	cfg, err := ResolveConnectionParams(
		"",
		&GranularConnFlags{Host: "flaghost"},
		nil,
		&EnvVars{DATABASE_URL: "postgresql://urlhost/urldb"},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "flaghost", cfg.Host)
}

func TestResolveConnectionParams_GranularPathHasNoDatabaseDefault(t *testing.T) {
	cfg, err := ResolveConnectionParams("",
		&GranularConnFlags{Host: "flaghost", Username: "miqa"},
		nil, &EnvVars{}, nil,
	)
	require.NoError(t, err)
	// Granular parameters never imply a database; an empty name must
	// surface so the commands can fail with a usage error instead of
	// silently crawling into "postgres".
	assert.Empty(t, cfg.Database)
}

func TestResolveConnectionParams_Precedence(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Host:     "filehost",
			Port:     5440,
			Username: "fileuser",
			Database: "filedb",
			SSLMode:  "verify-full",
		},
	}

	t.Run("flags beat env and file", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("",
			&GranularConnFlags{Host: "flaghost", Port: 5441, Username: "flaguser"},
			nil,
			&EnvVars{PGHOST: "envhost", PGPORT: "5442", PGUSER: "envuser"},
			projectCfg,
		)
		require.NoError(t, err)
		assert.Equal(t, "flaghost", cfg.Host)
		assert.Equal(t, 5441, cfg.Port)
		assert.Equal(t, "flaguser", cfg.Username)
		assert.Equal(t, "filedb", cfg.Database)
	})

	t.Run("env beats file", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil,
			&EnvVars{PGHOST: "envhost", PGDATABASE: "envdb"},
			projectCfg,
		)
		require.NoError(t, err)
		assert.Equal(t, "envhost", cfg.Host)
		assert.Equal(t, "envdb", cfg.Database)
		assert.Equal(t, 5440, cfg.Port)
		assert.Equal(t, "verify-full", cfg.SSLMode)
	})

	t.Run("file beats defaults", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, projectCfg)
		require.NoError(t, err)
		assert.Equal(t, "filehost", cfg.Host)
		assert.Equal(t, 5440, cfg.Port)
		assert.Equal(t, "fileuser", cfg.Username)
	})

	t.Run("defaults when nothing set", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
		// The database stays empty so callers can demand an explicit name.
		assert.Empty(t, cfg.Database)
		assert.Equal(t, "prefer", cfg.SSLMode)
	})
}

func TestResolveConnectionParams_InvalidPGPORT(t *testing.T) {
	_, err := ResolveConnectionParams("", nil, nil, &EnvVars{PGPORT: "nope"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PGPORT")
}

func TestResolveConnectionParams_DatabaseFlagOverride(t *testing.T) {
	cfg, err := ResolveConnectionParams(
		"postgresql://miqa@localhost/defaultdb",
		&GranularConnFlags{Database: "override"},
		nil, &EnvVars{}, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Database)
}

func TestResolveConnectionParams_AzureFromFlags(t *testing.T) {
	cfg, err := ResolveConnectionParams("", nil,
		&AzureFlags{TenantID: "tenant-1", ClientID: "client-1"},
		&EnvVars{AZURE_CLIENT_SECRET: "s3cret"},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, miqa.AuthMethodAzureEntraID, cfg.AuthMethod)
	assert.Equal(t, "tenant-1", cfg.AzureTenantID)
	assert.Equal(t, "client-1", cfg.AzureClientID)
	assert.Equal(t, "s3cret", cfg.AzureClientSecret)
}

func TestResolveConnectionParams_AzureFlagsBeatEnv(t *testing.T) {
	cfg, err := ResolveConnectionParams("", nil,
		&AzureFlags{TenantID: "flag-tenant"},
		&EnvVars{AZURE_TENANT_ID: "env-tenant", AZURE_CLIENT_ID: "env-client"},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "flag-tenant", cfg.AzureTenantID)
	assert.Equal(t, "env-client", cfg.AzureClientID)
}

func TestResolveConnectionParams_AWSIAMFromFile(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Host:       "mydb.cluster.us-west-2.rds.amazonaws.com",
			Username:   "iamuser",
			AuthMethod: "aws_iam",
			AWSRegion:  "us-west-2",
		},
	}

	cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, projectCfg)
	require.NoError(t, err)
	assert.Equal(t, miqa.AuthMethodAWSIAM, cfg.AuthMethod)
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
}

func TestResolveConnectionParams_GoogleIAMFromFile(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Username:       "iamuser",
			AuthMethod:     "google_iam",
			GoogleInstance: "proj:region:inst",
		},
	}

	cfg, err := ResolveConnectionParams("", nil, nil,
		&EnvVars{MIQA_GOOGLE_INSTANCE: "env-proj:region:inst"},
		projectCfg,
	)
	require.NoError(t, err)
	assert.Equal(t, miqa.AuthMethodGoogleIAM, cfg.AuthMethod)
	assert.Equal(t, "env-proj:region:inst", cfg.GoogleInstance)
}

func TestResolveConnectionParams_CertificateFromFile(t *testing.T) {
	projectCfg := &config.ProjectConfig{
		Connection: config.ConnectionConfig{
			Host:    "securehost",
			SSLCert: "/certs/client.crt",
			SSLKey:  "/certs/client.key",
		},
	}

	cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, projectCfg)
	require.NoError(t, err)
	assert.Equal(t, miqa.AuthMethodCertificate, cfg.AuthMethod)
	assert.Equal(t, "/certs/client.crt", cfg.SSLCert)
	assert.Equal(t, "/certs/client.key", cfg.SSLKey)
}

func TestNewConnector_UnsupportedAuthMethod(t *testing.T) {
	_, err := NewConnector(&miqa.ConnectionConfig{AuthMethod: miqa.AuthMethod(99)})
	assert.ErrorIs(t, err, miqa.ErrUnsupportedAuthMethod)
}

func TestNewConnector_Standard(t *testing.T) {
	c, err := NewConnector(&miqa.ConnectionConfig{AuthMethod: miqa.AuthMethodStandard})
	require.NoError(t, err)
	assert.IsType(t, &StandardConnector{}, c)
}
