package crawler

import (
	"context"

	"github.com/miqalab/miqa/pkg/miqa"
)

// dryRunStore satisfies SampleStore without touching any database. Every
// write is logged as the action it would have been.
type dryRunStore struct {
	logger miqa.Logger
	nextID int64
}

func newDryRunStore(logger miqa.Logger) *dryRunStore {
	return &dryRunStore{logger: logger}
}

func (d *dryRunStore) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *dryRunStore) EnsureSchema(ctx context.Context) error { return nil }

func (d *dryRunStore) ResetSchema(ctx context.Context) error {
	d.logger.Info("would reset schema")
	return nil
}

func (d *dryRunStore) UpsertStudy(ctx context.Context, study *miqa.Study) (int64, error) {
	d.logger.Info("would upsert study %s/%s", study.Repository, study.Accession)
	return d.id(), nil
}

func (d *dryRunStore) UpsertSample(ctx context.Context, studyID int64, sample *miqa.Sample) (int64, error) {
	d.logger.Info("would upsert sample %s/%s", sample.Repository, sample.Accession)
	return d.id(), nil
}

func (d *dryRunStore) InsertIDATFile(ctx context.Context, sampleID int64, file *miqa.SuppFile, checksum string, sizeBytes int64) (int64, bool, error) {
	d.logger.Info("would record file %s", file.URL)
	return d.id(), true, nil
}

func (d *dryRunStore) MarkIDATUploaded(ctx context.Context, idatID int64, objectKey string) error {
	d.logger.Info("would mark file %d uploaded as %s", idatID, objectKey)
	return nil
}

func (d *dryRunStore) MarkIDATProcessed(ctx context.Context, idatID int64) error { return nil }

func (d *dryRunStore) MarkIDATDeleted(ctx context.Context, idatID int64) error { return nil }

var _ miqa.SampleStore = (*dryRunStore)(nil)
