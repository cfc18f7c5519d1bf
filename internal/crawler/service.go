package crawler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/miqalab/miqa/internal/db"
	"github.com/miqalab/miqa/internal/fetch"
	"github.com/miqalab/miqa/internal/storage"
	"github.com/miqalab/miqa/pkg/miqa"
)

// ConnectorFactory creates a Connector for the given connection config.
// Production code passes db.NewConnector; tests substitute fakes.
type ConnectorFactory func(*miqa.ConnectionConfig) (miqa.Connector, error)

// Downloader is the slice of internal/fetch the crawler needs.
type Downloader interface {
	Download(ctx context.Context, rawURL, destDir string, progress fetch.Progress) (*fetch.Result, error)
}

// ProgressTracker renders per-file download progress. Begin is called with
// each file's name before its download starts, Update with byte counts while
// it runs, and Finish when it ends.
type ProgressTracker interface {
	Begin(filename string)
	Update(written, total int64)
	Finish()
}

// CrawlService implements miqa.Crawler.
type CrawlService struct {
	connectorFactory ConnectorFactory
	geo              miqa.GEOCatalog
	ae               miqa.ArrayExpressCatalog
	downloader       Downloader
	logger           miqa.Logger

	// objectStore is nil when no bucket is configured; files are then
	// recorded and downloaded but not mirrored.
	objectStore miqa.ObjectStore

	// storeFactory builds the SampleStore once a pool exists. Tests inject
	// an in-memory store here.
	storeFactory func(miqa.DBConnection, miqa.Logger) miqa.SampleStore

	// store, when set, is used directly and no database connection is made.
	store miqa.SampleStore

	// progress, when set, receives download progress callbacks.
	progress ProgressTracker
}

// ServiceOption configures a CrawlService.
type ServiceOption func(*CrawlService)

// WithObjectStore enables mirroring downloads into object storage.
func WithObjectStore(os miqa.ObjectStore) ServiceOption {
	return func(s *CrawlService) { s.objectStore = os }
}

// WithStoreFactory replaces the default PostgresStore constructor.
func WithStoreFactory(f func(miqa.DBConnection, miqa.Logger) miqa.SampleStore) ServiceOption {
	return func(s *CrawlService) { s.storeFactory = f }
}

// WithStore supplies a ready store; the service then opens no database
// connection of its own.
func WithStore(store miqa.SampleStore) ServiceOption {
	return func(s *CrawlService) { s.store = store }
}

// WithProgress attaches a per-file download progress tracker.
func WithProgress(p ProgressTracker) ServiceOption {
	return func(s *CrawlService) { s.progress = p }
}

// NewCrawlService creates the crawl orchestrator. Panics if any required
// dependency is nil; construction happens once at startup and a nil here is
// a programming error, not a runtime condition.
func NewCrawlService(
	connectorFactory ConnectorFactory,
	geoCatalog miqa.GEOCatalog,
	aeCatalog miqa.ArrayExpressCatalog,
	downloader Downloader,
	logger miqa.Logger,
	opts ...ServiceOption,
) *CrawlService {
	if connectorFactory == nil {
		panic("NewCrawlService: connectorFactory is nil")
	}
	if geoCatalog == nil {
		panic("NewCrawlService: geoCatalog is nil")
	}
	if aeCatalog == nil {
		panic("NewCrawlService: aeCatalog is nil")
	}
	if downloader == nil {
		panic("NewCrawlService: downloader is nil")
	}
	if logger == nil {
		panic("NewCrawlService: logger is nil")
	}

	s := &CrawlService{
		connectorFactory: connectorFactory,
		geo:              geoCatalog,
		ae:               aeCatalog,
		downloader:       downloader,
		logger:           logger,
		storeFactory: func(conn miqa.DBConnection, logger miqa.Logger) miqa.SampleStore {
			return db.NewPostgresStore(conn, logger)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl runs the configured repositories in order. Per-study failures are
// logged and counted; only failures above study level (connection loss,
// cancellation, schema trouble) abort the run.
func (s *CrawlService) Crawl(ctx context.Context, config miqa.CrawlConfig) (*miqa.CrawlStats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	start := time.Now()
	stats := &miqa.CrawlStats{RunID: uuid.NewString()}
	s.logger.Info("Starting crawl run %s (repositories: %v)", stats.RunID, config.Repositories)

	store, cleanup, err := s.openStore(ctx, &config)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	scratchDir, scratchCleanup, err := s.scratchDir(&config)
	if err != nil {
		return nil, err
	}
	defer scratchCleanup()

	for _, repo := range config.Repositories {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch repo {
		case miqa.RepositoryGEO:
			err = s.crawlGEO(ctx, store, &config, scratchDir, stats)
		case miqa.RepositoryArrayExpress:
			err = s.crawlArrayExpress(ctx, store, &config, scratchDir, stats)
		}
		if err != nil {
			return stats, err
		}
	}

	stats.Elapsed = time.Since(start)
	s.logger.Info("Crawl run %s finished: %d studies, %d samples, %d files, %d uploaded, %d skipped, %d failures (%v)",
		stats.RunID, stats.Studies, stats.Samples, stats.Files, stats.Uploaded, stats.Skipped, stats.Failures,
		stats.Elapsed.Round(time.Millisecond))

	return stats, nil
}

// openStore connects to the database and ensures the schema, or hands back a
// write-discarding store for dry runs (a dry run never touches the database).
func (s *CrawlService) openStore(ctx context.Context, config *miqa.CrawlConfig) (miqa.SampleStore, func(), error) {
	if config.DryRun {
		s.logger.Info("Dry run: no database, filesystem, or object storage writes")
		return newDryRunStore(s.logger), func() {}, nil
	}

	if s.store != nil {
		if err := s.store.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return s.store, func() {}, nil
	}

	connCfg, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", miqa.ErrInvalidConfig, err)
	}
	if config.DatabaseName != "" {
		connCfg.Database = config.DatabaseName
	}
	if config.AuthMethod != miqa.AuthMethodStandard {
		connCfg.AuthMethod = config.AuthMethod
	}
	connCfg.AzureTenantID = config.AzureTenantID
	connCfg.AzureClientID = config.AzureClientID
	connCfg.AzureClientSecret = config.AzureClientSecret

	connector, err := s.connectorFactory(connCfg)
	if err != nil {
		return nil, nil, err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", miqa.ErrConnectionFailed, err)
	}

	store := s.storeFactory(db.NewPoolAdapter(pool), s.logger)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, pool.Close, nil
}

func (s *CrawlService) scratchDir(config *miqa.CrawlConfig) (string, func(), error) {
	if !config.Download || config.DryRun {
		return "", func() {}, nil
	}
	if config.DownloadDir != "" {
		return config.DownloadDir, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "miqa-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil //nolint:errcheck
}

func (s *CrawlService) studyLimit(config *miqa.CrawlConfig) int {
	switch {
	case config.StudyLimit == 0:
		return miqa.DefaultStudyLimit
	case config.StudyLimit < 0:
		return 0 // unlimited
	default:
		return config.StudyLimit
	}
}

// crawlGEO walks series found via Entrez: study summary, per-sample SOFT
// lookup, supplementary file listing.
func (s *CrawlService) crawlGEO(ctx context.Context, store miqa.SampleStore, config *miqa.CrawlConfig, scratchDir string, stats *miqa.CrawlStats) error {
	ids, err := s.geo.SearchStudies(ctx, s.studyLimit(config))
	if err != nil {
		return err
	}
	s.logger.Info("GEO: %d studies to process", len(ids))

	for _, uid := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.processGEOStudy(ctx, store, config, scratchDir, uid, stats); err != nil {
			// A bad study must not abort the crawl.
			s.logger.Error("GEO study %s failed: %v", uid, err)
			stats.Failures++
		}
	}
	return nil
}

func (s *CrawlService) processGEOStudy(ctx context.Context, store miqa.SampleStore, config *miqa.CrawlConfig, scratchDir, uid string, stats *miqa.CrawlStats) error {
	study, err := s.geo.StudySummary(ctx, uid)
	if err != nil {
		return err
	}

	studyID, err := store.UpsertStudy(ctx, study)
	if err != nil {
		return err
	}
	stats.Studies++
	s.logger.Verbose("GEO study %s (%d samples)", study.Accession, len(study.Samples))

	for i, ref := range study.Samples {
		if config.SampleLimit > 0 && i >= config.SampleLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		sample, err := s.geo.Sample(ctx, ref.Accession)
		if err != nil {
			s.logger.Error("GEO sample %s failed: %v", ref.Accession, err)
			stats.Failures++
			continue
		}
		if sample.SeriesAccession == "" {
			sample.SeriesAccession = study.Accession
		}

		sampleID, err := store.UpsertSample(ctx, studyID, sample)
		if err != nil {
			return err
		}
		stats.Samples++

		files, err := s.geo.SampleFiles(ctx, sample.Accession)
		if err != nil {
			s.logger.Error("GEO file listing for %s failed: %v", sample.Accession, err)
			stats.Failures++
			continue
		}

		for j := range files {
			if err := s.processFile(ctx, store, config, scratchDir, sampleID, &files[j], stats); err != nil {
				s.logger.Error("file %s failed: %v", files[j].Filename, err)
				stats.Failures++
			}
		}
	}

	return nil
}

// crawlArrayExpress walks BioStudies search hits and their SDRF tables.
func (s *CrawlService) crawlArrayExpress(ctx context.Context, store miqa.SampleStore, config *miqa.CrawlConfig, scratchDir string, stats *miqa.CrawlStats) error {
	studies, err := s.ae.SearchStudies(ctx, s.studyLimit(config))
	if err != nil {
		return err
	}
	s.logger.Info("ArrayExpress: %d studies to process", len(studies))

	for i := range studies {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.processAEStudy(ctx, store, config, scratchDir, &studies[i], stats); err != nil {
			s.logger.Error("ArrayExpress study %s failed: %v", studies[i].Accession, err)
			stats.Failures++
		}
	}
	return nil
}

func (s *CrawlService) processAEStudy(ctx context.Context, store miqa.SampleStore, config *miqa.CrawlConfig, scratchDir string, study *miqa.Study, stats *miqa.CrawlStats) error {
	samples, files, err := s.ae.StudySamples(ctx, study.Accession)
	if err != nil {
		return err
	}

	study.SampleCount = len(samples)
	studyID, err := store.UpsertStudy(ctx, study)
	if err != nil {
		return err
	}
	stats.Studies++
	s.logger.Verbose("ArrayExpress study %s (%d samples, %d files)", study.Accession, len(samples), len(files))

	filesBySample := make(map[string][]*miqa.SuppFile)
	for i := range files {
		filesBySample[files[i].SampleAccession] = append(filesBySample[files[i].SampleAccession], &files[i])
	}

	for i := range samples {
		if config.SampleLimit > 0 && i >= config.SampleLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		sampleID, err := store.UpsertSample(ctx, studyID, &samples[i])
		if err != nil {
			return err
		}
		stats.Samples++

		for _, file := range filesBySample[samples[i].Accession] {
			if err := s.processFile(ctx, store, config, scratchDir, sampleID, file, stats); err != nil {
				s.logger.Error("file %s failed: %v", file.Filename, err)
				stats.Failures++
			}
		}
	}

	return nil
}

// processFile records one raw file and, when downloads are enabled, mirrors
// it through the scratch directory into object storage.
func (s *CrawlService) processFile(ctx context.Context, store miqa.SampleStore, config *miqa.CrawlConfig, scratchDir string, sampleID int64, file *miqa.SuppFile, stats *miqa.CrawlStats) error {
	if !config.Download || config.DryRun {
		if config.DryRun && config.Download {
			s.logger.Info("would download %s", file.URL)
		}
		_, inserted, err := store.InsertIDATFile(ctx, sampleID, file, "", 0)
		if err != nil {
			return err
		}
		countInsert(stats, inserted)
		return nil
	}

	var progress fetch.Progress
	if s.progress != nil {
		s.progress.Begin(file.Filename)
		progress = s.progress.Update
	}
	result, err := s.downloader.Download(ctx, file.URL, scratchDir, progress)
	if s.progress != nil {
		s.progress.Finish()
	}
	if err != nil {
		return err
	}
	defer os.Remove(result.Path) //nolint:errcheck

	idatID, inserted, err := store.InsertIDATFile(ctx, sampleID, file, result.Checksum, result.Size)
	if err != nil {
		return err
	}
	countInsert(stats, inserted)

	if s.objectStore == nil {
		return nil
	}

	local, err := os.Open(result.Path)
	if err != nil {
		return fmt.Errorf("failed to reopen download: %w", err)
	}
	defer local.Close() //nolint:errcheck

	repo := repositoryOf(file, config)
	key := storage.ObjectKey(repo, file.SampleAccession, file.Filename)
	if _, err := s.objectStore.Upload(ctx, key, local, result.Size); err != nil {
		return err
	}
	if err := store.MarkIDATUploaded(ctx, idatID, key); err != nil {
		return err
	}
	stats.Uploaded++

	return nil
}

func countInsert(stats *miqa.CrawlStats, inserted bool) {
	if inserted {
		stats.Files++
	} else {
		stats.Skipped++
	}
}

// repositoryOf derives the object key prefix from the sample accession
// shape: GEO samples are GSM accessions, ArrayExpress ones carry the study
// accession prefix.
func repositoryOf(file *miqa.SuppFile, config *miqa.CrawlConfig) string {
	if len(file.SampleAccession) >= 3 && file.SampleAccession[:3] == "GSM" {
		return miqa.RepositoryGEO
	}
	if len(config.Repositories) == 1 {
		return config.Repositories[0]
	}
	return miqa.RepositoryArrayExpress
}

var _ miqa.Crawler = (*CrawlService)(nil)
