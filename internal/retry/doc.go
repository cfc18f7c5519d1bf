// Package retry provides automatic retry logic with exponential backoff
// for transient database and catalog request failures.
//
// The package supports pluggable error classification and backoff strategies.
// PostgreSQLErrorClassifier recognizes transient pgconn and network errors;
// HTTPErrorClassifier recognizes retryable catalog responses (429, 5xx) and
// transport-level failures.
//
// # Example Usage
//
//	classifier := retry.NewHTTPErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return fetchStudyList(ctx)
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to create
// independent configurations per goroutine.
package retry
