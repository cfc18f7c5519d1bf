package miqa

import "context"

// Crawler is the main interface for executing catalog crawls.
// Implementations handle the full workflow: catalog search, metadata
// normalization, database upserts, and raw file mirroring.
type Crawler interface {
	// Crawl ingests the repositories named in the configuration.
	// It returns statistics for the run and an error if the crawl failed
	// at a level above individual studies (per-study failures are counted
	// in the stats, not returned).
	Crawl(ctx context.Context, config CrawlConfig) (*CrawlStats, error)
}
