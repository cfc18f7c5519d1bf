package miqa

import "context"

// SampleStore persists catalog metadata into the relational schema.
// Implementations must be safe for concurrent use.
type SampleStore interface {
	// EnsureSchema creates the miqa tables and types if they do not exist.
	// Idempotent.
	EnsureSchema(ctx context.Context) error

	// ResetSchema drops and recreates the miqa tables. Destructive; callers
	// must gate this behind an Approver.
	ResetSchema(ctx context.Context) error

	// UpsertStudy inserts a study row, ignoring conflicts on
	// (repository_id, repository_study_id), and returns the row id
	// (new or existing).
	UpsertStudy(ctx context.Context, study *Study) (int64, error)

	// UpsertSample inserts a sample row, ignoring conflicts on
	// (repository_id, repository_sample_id), and returns the row id
	// (new or existing). studyID associates the sample with a study row;
	// zero leaves the association NULL.
	UpsertSample(ctx context.Context, studyID int64, sample *Sample) (int64, error)

	// InsertIDATFile records a raw data file for a sample. Conflicts on
	// (sample_id, filename) are ignored; the existing row id is returned
	// with inserted == false.
	InsertIDATFile(ctx context.Context, sampleID int64, file *SuppFile, checksum string, sizeBytes int64) (id int64, inserted bool, err error)

	// MarkIDATUploaded records the object storage key and upload time.
	MarkIDATUploaded(ctx context.Context, idatID int64, objectKey string) error

	// MarkIDATProcessed records that downstream processing consumed the file.
	MarkIDATProcessed(ctx context.Context, idatID int64) error

	// MarkIDATDeleted soft-deletes the file record.
	MarkIDATDeleted(ctx context.Context, idatID int64) error
}
