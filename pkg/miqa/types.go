package miqa

import (
	"errors"
	"fmt"
	"time"
)

// Study is one microarray experiment (a GEO series or an ArrayExpress study).
type Study struct {
	// Repository identifies the source catalog (RepositoryGEO or RepositoryArrayExpress).
	Repository string

	// Accession is the repository-native study identifier
	// (e.g. "GSE313496" or "E-MTAB-4372").
	Accession string

	Title         string
	Summary       string
	OverallDesign string

	// PlatformID is the array platform accession (e.g. "GPL21145").
	PlatformID string

	// Organism is the sample organism reported by the catalog.
	Organism string

	// SampleCount is the number of samples the catalog reports for this study.
	SampleCount int

	// Samples are the sample accessions the catalog associates with the study.
	Samples []SampleRef

	// Extras holds repository-specific fields that have no dedicated column.
	// Persisted as JSONB.
	Extras map[string]any
}

// SampleRef is a lightweight reference to a sample within a study listing.
type SampleRef struct {
	Accession string
	Title     string
}

// Sample is one hybridization/array run belonging to a Study.
// Field names mirror the sample table columns.
type Sample struct {
	Repository string
	Accession  string

	// SeriesAccession is the accession of the owning study, when known.
	SeriesAccession string

	PlatformID string

	// Gender is "male", "female", or "" (stored as NULL).
	Gender string

	Age                string
	Tissue             string
	Disease            string
	ExtractionProtocol string

	// Extras holds repository-specific fields that have no dedicated column.
	Extras map[string]any
}

// SuppFile is a raw data file (typically a gzipped IDAT) associated with a sample.
type SuppFile struct {
	// SampleAccession is the repository-native accession of the owning sample.
	SampleAccession string

	// Filename is the file's basename as listed by the repository.
	Filename string

	// URL is the absolute download URL.
	URL string

	// Channel is "Grn", "Red", or "" when the channel cannot be derived
	// from the filename.
	Channel string
}

// CrawlStats summarizes one crawl run.
type CrawlStats struct {
	// RunID uniquely identifies this crawl run in logs.
	RunID string

	Studies  int // studies upserted
	Samples  int // samples upserted
	Files    int // idat_file rows inserted
	Uploaded int // files mirrored to object storage
	Skipped  int // units skipped because they already existed
	Failures int // non-fatal per-unit failures

	Elapsed time.Duration
}

// CrawlConfig contains all parameters needed for a crawl operation.
type CrawlConfig struct {
	// Repositories lists the catalogs to crawl, in order
	// (RepositoryGEO, RepositoryArrayExpress).
	Repositories []string

	// ConnectionString is the PostgreSQL connection string (URI or keyword/value).
	ConnectionString string

	// DatabaseName is the target database name.
	DatabaseName string

	// StudyLimit caps the number of studies fetched per repository.
	// Zero means DefaultStudyLimit; negative means unlimited.
	StudyLimit int

	// SampleLimit caps the number of samples processed per study.
	// Zero or negative means unlimited.
	SampleLimit int

	// DryRun logs what would be done without writing to the database,
	// the filesystem, or object storage.
	DryRun bool

	// Download controls whether raw data files are downloaded and mirrored
	// to object storage. Metadata is always stored.
	Download bool

	// DownloadDir is the scratch directory for in-flight downloads.
	// Empty means the OS temp directory.
	DownloadDir string

	// Timeout is the global timeout for the entire crawl.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the database authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks if the CrawlConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *CrawlConfig) Validate() error {
	var errs []error

	if len(c.Repositories) == 0 {
		errs = append(errs, fmt.Errorf("at least one repository is required: %w", ErrInvalidConfig))
	}
	for _, repo := range c.Repositories {
		if repo != RepositoryGEO && repo != RepositoryArrayExpress {
			errs = append(errs, fmt.Errorf("unknown repository %q: %w", repo, ErrInvalidConfig))
		}
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// mTLS certificate paths, passed through to pgx when set.
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance connection name, project:region:instance
	// (used when AuthMethod is AuthMethodGoogleIAM).
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of database authentication to use.
type AuthMethod int

const (
	AuthMethodStandard    AuthMethod = iota // Username/Password
	AuthMethodCertificate                   // mTLS
	AuthMethodAWSIAM                        // AWS IAM Database Authentication
	AuthMethodGoogleIAM                     // Google Cloud SQL IAM
	AuthMethodAzureEntraID                  // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodCertificate:
		return "Certificate"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
