package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
// AWS IAM and Azure Entra ID both hand the crawler a short-lived token that is
// used as the PostgreSQL password.
type TokenProvider interface {
	// GetToken acquires a token for database authentication and reports when
	// it expires.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging. Must not
	// include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
