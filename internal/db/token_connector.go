package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/miqalab/miqa/internal/retry"
	"github.com/miqalab/miqa/pkg/miqa"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID). A fresh
// token is acquired on every attempt so a retry never reuses an expired one.
type TokenBasedConnector struct {
	config        *miqa.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        miqa.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for
// authentication. providerName appears in error and warning messages
// (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(config *miqa.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(miqa.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(miqa.DefaultRetryInitialDelay),
		retry.WithMaxDelay(miqa.DefaultRetryMaxDelay),
	)

	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewExecutor(classifier, strategy),
		providerName:  providerName,
	}
}

// WithLogger returns a copy of the connector that reports near-expiry tokens
// through the given logger instead of staying silent.
func (c *TokenBasedConnector) WithLogger(logger miqa.Logger) *TokenBasedConnector {
	clone := *c
	clone.logger = logger
	return &clone
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if c.logger != nil && time.Until(expiresOn) < 5*time.Minute {
			c.logger.Warn("%s token expires in %v", c.providerName, time.Until(expiresOn).Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&configWithToken))
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return pool, nil
}
