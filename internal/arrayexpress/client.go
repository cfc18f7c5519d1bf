package arrayexpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/miqalab/miqa/internal/retry"
	"github.com/miqalab/miqa/pkg/miqa"
)

const (
	SearchBase = "https://www.ebi.ac.uk/biostudies/api/v1/arrayexpress/search"
	FIREBase   = "https://ftp.ebi.ac.uk/biostudies/fire"

	// Search facets: methylation-array studies that carry IDAT files.
	facetStudyType = "methylation profiling by array"
	facetFileType  = "idat"
)

// Client implements miqa.ArrayExpressCatalog.
type Client struct {
	httpClient *http.Client
	executor   *retry.Executor
	logger     miqa.Logger
	searchBase string
	fireBase   string
	pageSize   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the EBI endpoints. Tests point these at httptest
// servers.
func WithBaseURLs(search, fire string) Option {
	return func(c *Client) {
		c.searchBase = search
		c.fireBase = fire
	}
}

// WithPageSize overrides the search page size.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// NewClient creates an ArrayExpress catalog client. Panics if logger is nil.
func NewClient(logger miqa.Logger, opts ...Option) *Client {
	if logger == nil {
		panic("arrayexpress.NewClient: logger is nil")
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
		searchBase: SearchBase,
		fireBase:   FIREBase,
		pageSize:   miqa.DefaultSearchPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

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

type searchResponse struct {
	Hits      []searchHit `json:"hits"`
	TotalHits int         `json:"totalHits"`
	Page      int         `json:"page"`
	PageSize  int         `json:"pageSize"`
}

type searchHit struct {
	Accession   string `json:"accession"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	ReleaseDate string `json:"release_date"`
	Files       int    `json:"files"`
}

// SearchStudies pages through the BioStudies search endpoint and maps hits
// onto Studies. limit <= 0 means all matches.
func (c *Client) SearchStudies(ctx context.Context, limit int) ([]miqa.Study, error) {
	var studies []miqa.Study

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("facet.study_type", facetStudyType)
		params.Set("facet.file_type", facetFileType)
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

		body, err := c.get(ctx, c.searchBase+"?"+params.Encode())
		if err != nil {
			return nil, err
		}

		var result searchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: search response: %w", miqa.ErrMalformedResponse, err)
		}

		for _, hit := range result.Hits {
			if hit.Accession == "" {
				continue
			}
			study := miqa.Study{
				Repository: miqa.RepositoryArrayExpress,
				Accession:  hit.Accession,
				Title:      hit.Title,
				Extras:     make(map[string]any),
			}
			if hit.ReleaseDate != "" {
				study.Extras["release_date"] = hit.ReleaseDate
			}
			if hit.Author != "" {
				study.Extras["author"] = hit.Author
			}
			studies = append(studies, study)

			if limit > 0 && len(studies) >= limit {
				return studies, nil
			}
		}

		c.logger.Verbose("biostudies page %d: %d hits (total %d of %d)",
			page, len(result.Hits), len(studies), result.TotalHits)

		if len(result.Hits) == 0 || len(studies) >= result.TotalHits {
			return studies, nil
		}
	}
}

// filesBase returns the FIRE directory holding a study's files.
// E-MTAB-4372 lives under fire/E-MTAB-/372/E-MTAB-4372/Files/.
func (c *Client) filesBase(accession string) (string, error) {
	parts := strings.Split(accession, "-")
	if len(parts) < 3 || len(accession) < 3 {
		return "", fmt.Errorf("%w: accession %q does not follow the E-XXXX-n pattern", miqa.ErrMalformedResponse, accession)
	}

	prefix := strings.Join(parts[:2], "-") + "-"
	suffix := accession[len(accession)-3:]
	return fmt.Sprintf("%s/%s/%s/%s/Files/", c.fireBase, prefix, suffix, accession), nil
}

// StudySamples fetches and parses the study's SDRF table.
func (c *Client) StudySamples(ctx context.Context, accession string) ([]miqa.Sample, []miqa.SuppFile, error) {
	base, err := c.filesBase(accession)
	if err != nil {
		return nil, nil, err
	}

	body, err := c.get(ctx, base+accession+".sdrf.txt")
	if err != nil {
		return nil, nil, err
	}

	return parseSDRF(accession, base, body)
}

var _ miqa.ArrayExpressCatalog = (*Client)(nil)
