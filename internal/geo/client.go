package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/miqalab/miqa/internal/retry"
	"github.com/miqalab/miqa/pkg/miqa"
)

const (
	EUtilsBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	AccBase     = "https://www.ncbi.nlm.nih.gov/geo/query/acc.cgi"
	FTPBase     = "https://ftp.ncbi.nlm.nih.gov/geo"
	entrezDB    = "gds"
)

// Client implements miqa.GEOCatalog.
type Client struct {
	httpClient *http.Client
	executor   *retry.Executor
	logger     miqa.Logger
	eutilsBase string
	accBase    string
	ftpBase    string
	platforms  []string
	pageSize   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the NCBI endpoints. Tests point these at httptest
// servers.
func WithBaseURLs(eutils, acc, ftp string) Option {
	return func(c *Client) {
		c.eutilsBase = eutils
		c.accBase = acc
		c.ftpBase = ftp
	}
}

// WithPlatforms overrides the platform accessions searched for.
func WithPlatforms(platforms []string) Option {
	return func(c *Client) { c.platforms = platforms }
}

// WithPageSize overrides the esearch retmax page size.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// NewClient creates a GEO catalog client. Panics if logger is nil.
func NewClient(logger miqa.Logger, opts ...Option) *Client {
	if logger == nil {
		panic("geo.NewClient: logger is nil")
	}

	classifier := retry.NewHTTPErrorClassifier()
	strategy := retry.NewExponentialBackoff(miqa.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(miqa.DefaultRetryInitialDelay),
		retry.WithMaxDelay(miqa.DefaultRetryMaxDelay),
	)

	c := &Client{
		httpClient: &http.Client{Timeout: miqa.DefaultHTTPTimeout},
		executor:   retry.NewExecutor(classifier, strategy),
		logger:     logger,
		eutilsBase: EUtilsBase,
		accBase:    AccBase,
		ftpBase:    FTPBase,
		platforms:  miqa.MethylationPlatforms,
		pageSize:   miqa.DefaultSearchPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchTerm builds the Entrez query: series on any of the configured
// platforms that carry IDAT supplementary files.
func (c *Client) searchTerm() string {
	clauses := make([]string, len(c.platforms))
	for i, p := range c.platforms {
		clauses[i] = p + "[accn]"
	}
	return "(" + strings.Join(clauses, " OR ") + ") AND idat[suppFile]"
}

// get fetches a URL with retry on transient HTTP failures. A non-200
// response is a retry.StatusError; the classifier decides whether it is
// worth another attempt.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			return &retry.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", miqa.ErrFetchFailed, err)
	}
	return body, nil
}

// SearchStudies returns Entrez UIDs of series matching the platform search,
// paging through esearch until limit is reached or results run out.
// limit <= 0 means all results.
func (c *Client) SearchStudies(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	retStart := 0

	for {
		pageSize := c.pageSize
		if limit > 0 && limit-len(ids) < pageSize {
			pageSize = limit - len(ids)
		}

		params := url.Values{}
		params.Set("db", entrezDB)
		params.Set("term", c.searchTerm())
		params.Set("retstart", fmt.Sprintf("%d", retStart))
		params.Set("retmax", fmt.Sprintf("%d", pageSize))

		body, err := c.get(ctx, c.eutilsBase+"/esearch.fcgi?"+params.Encode())
		if err != nil {
			return nil, err
		}

		result, err := parseSearchResult(body)
		if err != nil {
			return nil, err
		}

		ids = append(ids, result.IDs...)
		retStart += len(result.IDs)

		c.logger.Verbose("esearch page: %d ids (total %d of %d)", len(result.IDs), len(ids), result.Count)

		if len(result.IDs) == 0 || retStart >= result.Count {
			break
		}
		if limit > 0 && len(ids) >= limit {
			ids = ids[:limit]
			break
		}
	}

	return ids, nil
}

// StudySummary fetches and parses the esummary document for one Entrez UID.
func (c *Client) StudySummary(ctx context.Context, uid string) (*miqa.Study, error) {
	params := url.Values{}
	params.Set("db", entrezDB)
	params.Set("id", uid)

	body, err := c.get(ctx, c.eutilsBase+"/esummary.fcgi?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return parseStudySummary(body)
}

// Sample fetches a sample record from the accession display endpoint in
// brief SOFT form.
func (c *Client) Sample(ctx context.Context, accession string) (*miqa.Sample, error) {
	params := url.Values{}
	params.Set("acc", accession)
	params.Set("targ", "self")
	params.Set("view", "brief")
	params.Set("form", "text")

	body, err := c.get(ctx, c.accBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	entities, err := ParseSOFT(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no SOFT entity for %s: %w", accession, miqa.ErrStudyNotFound)
	}

	return sampleFromEntity(&entities[0]), nil
}

// SampleFiles lists the .gz supplementary files of a sample from its FTP
// mirror directory.
func (c *Client) SampleFiles(ctx context.Context, accession string) ([]miqa.SuppFile, error) {
	if len(accession) < 4 {
		return nil, fmt.Errorf("accession %q too short: %w", accession, miqa.ErrMalformedResponse)
	}

	// Directory sharding drops the last three digits: GSM2696938 lives
	// under samples/GSM2696nnn/.
	dirURL := fmt.Sprintf("%s/samples/%snnn/%s/suppl/", c.ftpBase, accession[:len(accession)-3], accession)

	body, err := c.get(ctx, dirURL)
	if err != nil {
		return nil, err
	}

	return parseListing(accession, dirURL, body)
}

var _ miqa.GEOCatalog = (*Client)(nil)
