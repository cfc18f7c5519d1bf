// Package testinfra starts throwaway PostgreSQL containers for integration
// tests and hands out connection strings.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a plain PostgreSQL container and returns its connection
// string with sslmode=disable.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

func getOrStartContainer() (string, error) {
	containerOnce.Do(func() {
		// testcontainers panics (rather than returning an error) when no
		// Docker host can be found; convert that into the error path so
		// callers can skip.
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("start postgres: %v", r)
			}
		}()
		container, err := StartPostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = container.ConnString
	})
	return containerConn, containerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: MIQA_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("MIQA_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartContainer()
	if err != nil {
		t.Skipf("MIQA_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test when running with -short.
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}
