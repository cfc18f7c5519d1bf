package crawler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/miqalab/miqa/internal/fetch"
	"github.com/miqalab/miqa/pkg/miqa"
)

type mockGEO struct {
	ids       []string
	studies   map[string]*miqa.Study
	samples   map[string]*miqa.Sample
	files     map[string][]miqa.SuppFile
	searchErr error
	failUIDs  map[string]bool
}

func (m *mockGEO) SearchStudies(ctx context.Context, limit int) ([]string, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > 0 && limit < len(m.ids) {
		return m.ids[:limit], nil
	}
	return m.ids, nil
}

func (m *mockGEO) StudySummary(ctx context.Context, uid string) (*miqa.Study, error) {
	if m.failUIDs[uid] {
		return nil, fmt.Errorf("summary for %s: %w", uid, miqa.ErrFetchFailed)
	}
	study, ok := m.studies[uid]
	if !ok {
		return nil, miqa.ErrStudyNotFound
	}
	return study, nil
}

func (m *mockGEO) Sample(ctx context.Context, accession string) (*miqa.Sample, error) {
	sample, ok := m.samples[accession]
	if !ok {
		return nil, miqa.ErrStudyNotFound
	}
	return sample, nil
}

func (m *mockGEO) SampleFiles(ctx context.Context, accession string) ([]miqa.SuppFile, error) {
	return m.files[accession], nil
}

type mockAE struct {
	studies []miqa.Study
	samples map[string][]miqa.Sample
	files   map[string][]miqa.SuppFile
}

func (m *mockAE) SearchStudies(ctx context.Context, limit int) ([]miqa.Study, error) {
	if limit > 0 && limit < len(m.studies) {
		return m.studies[:limit], nil
	}
	return m.studies, nil
}

func (m *mockAE) StudySamples(ctx context.Context, accession string) ([]miqa.Sample, []miqa.SuppFile, error) {
	return m.samples[accession], m.files[accession], nil
}

// memStore is an in-memory SampleStore recording every write.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	studies  map[string]int64 // repo/accession -> id
	samples  map[string]int64
	idats    map[string]int64 // sampleID/filename -> id
	uploaded map[int64]string
}

func newMemStore() *memStore {
	return &memStore{
		studies:  make(map[string]int64),
		samples:  make(map[string]int64),
		idats:    make(map[string]int64),
		uploaded: make(map[int64]string),
	}
}

func (m *memStore) id() int64 { m.nextID++; return m.nextID }

func (m *memStore) EnsureSchema(ctx context.Context) error { return nil }
func (m *memStore) ResetSchema(ctx context.Context) error  { return nil }

func (m *memStore) UpsertStudy(ctx context.Context, study *miqa.Study) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := study.Repository + "/" + study.Accession
	if id, ok := m.studies[key]; ok {
		return id, nil
	}
	id := m.id()
	m.studies[key] = id
	return id, nil
}

func (m *memStore) UpsertSample(ctx context.Context, studyID int64, sample *miqa.Sample) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sample.Repository + "/" + sample.Accession
	if id, ok := m.samples[key]; ok {
		return id, nil
	}
	id := m.id()
	m.samples[key] = id
	return id, nil
}

func (m *memStore) InsertIDATFile(ctx context.Context, sampleID int64, file *miqa.SuppFile, checksum string, sizeBytes int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%d/%s", sampleID, file.Filename)
	if id, ok := m.idats[key]; ok {
		return id, false, nil
	}
	id := m.id()
	m.idats[key] = id
	return id, true, nil
}

func (m *memStore) MarkIDATUploaded(ctx context.Context, idatID int64, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded[idatID] = objectKey
	return nil
}

func (m *memStore) MarkIDATProcessed(ctx context.Context, idatID int64) error { return nil }
func (m *memStore) MarkIDATDeleted(ctx context.Context, idatID int64) error   { return nil }

// mockDownloader writes a small file instead of hitting the network.
type mockDownloader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockDownloader) Download(ctx context.Context, rawURL, destDir string, progress fetch.Progress) (*fetch.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, rawURL)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if progress != nil {
		progress(4, 4)
	}

	path := filepath.Join(destDir, "mock.idat.gz")
	if err := os.WriteFile(path, []byte("idat"), 0o644); err != nil {
		return nil, err
	}
	return &fetch.Result{Path: path, Checksum: "deadbeef", Size: 4}, nil
}

// mockTracker records the progress calls made during a crawl.
type mockTracker struct {
	mu       sync.Mutex
	begun    []string
	updates  int
	finishes int
}

func (m *mockTracker) Begin(filename string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begun = append(m.begun, filename)
}

func (m *mockTracker) Update(written, total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
}

func (m *mockTracker) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishes++
}

// mockObjectStore records uploads.
type mockObjectStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *mockObjectStore) Upload(ctx context.Context, key string, body io.Reader, size int64) (string, error) {
	io.Copy(io.Discard, body) //nolint:errcheck
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	return key, nil
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error { return nil }

// failConnectorFactory must never be reached in tests that inject a store.
func failConnectorFactory(*miqa.ConnectionConfig) (miqa.Connector, error) {
	return nil, fmt.Errorf("connector factory must not be called")
}
