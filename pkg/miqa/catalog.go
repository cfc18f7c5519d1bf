package miqa

import "context"

// GEOCatalog is the read surface of the Gene Expression Omnibus.
// Implementations talk to the NCBI Entrez E-utilities, the GEO accession
// display endpoint (SOFT format), and the GEO FTP mirror.
type GEOCatalog interface {
	// SearchStudies returns Entrez UIDs of methylation-array series that
	// carry IDAT supplementary files. limit <= 0 means all matches.
	SearchStudies(ctx context.Context, limit int) ([]string, error)

	// StudySummary fetches the document summary for one Entrez UID and maps
	// it onto a Study, including its sample accessions.
	StudySummary(ctx context.Context, uid string) (*Study, error)

	// Sample fetches sample-level metadata for a GSM accession via the
	// accession display endpoint.
	Sample(ctx context.Context, accession string) (*Sample, error)

	// SampleFiles lists the supplementary .gz files of a GSM accession from
	// the FTP mirror.
	SampleFiles(ctx context.Context, accession string) ([]SuppFile, error)
}

// ArrayExpressCatalog is the read surface of ArrayExpress via the EBI
// BioStudies API and FIRE file layout.
type ArrayExpressCatalog interface {
	// SearchStudies returns methylation-array studies carrying IDAT files.
	// limit <= 0 means all matches.
	SearchStudies(ctx context.Context, limit int) ([]Study, error)

	// StudySamples parses the study's SDRF table and returns its samples
	// together with their raw array data files.
	StudySamples(ctx context.Context, accession string) ([]Sample, []SuppFile, error)
}
