package miqa

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Crawl completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Failed to connect to database
	ExitApprovalDenied    = 12 // User denied schema reset approval
	ExitFetchFailed       = 13 // Remote catalog request failed
	ExitMalformedResponse = 14 // Remote catalog returned an unparseable payload
	ExitStorageFailed     = 15 // Object storage upload/delete failed
)

// Repository identifiers as stored in the repository_id columns.
const (
	RepositoryGEO          = "geo"
	RepositoryArrayExpress = "arrayexpress"
)

// MethylationPlatforms are the GEO platform accessions crawled by default.
//
// GPL13534: HumanMethylation450
// GPL16304: HumanMethylation450 BeadChip
// GPL21145: MethylationEPIC
var MethylationPlatforms = []string{"GPL13534", "GPL16304", "GPL21145"}

const (
	// DefaultStudyLimit caps the number of studies fetched per repository
	// when no --limit is given. Both catalogs hold thousands of methylation
	// series; an unbounded default would turn every invocation into a
	// multi-hour crawl.
	DefaultStudyLimit = 10

	// DefaultSearchPageSize is the page size used when paging through
	// catalog search results (Entrez retmax, BioStudies pageSize).
	DefaultSearchPageSize = 100

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultHTTPTimeout bounds a single catalog request. Downloads use the
	// crawl-level timeout instead; IDAT files can be hundreds of megabytes.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultForceApprovalCountdown is the countdown duration before a forced
	// schema reset proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultManagementDB is the default database to connect to for management operations.
	DefaultManagementDB = "postgres"
)
