package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/miqalab/miqa/pkg/miqa"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements miqa.SampleStore on top of a DBConnection.
// All writes are idempotent: natural-key conflicts are ignored and the
// existing row id is returned.
type PostgresStore struct {
	conn   miqa.DBConnection
	logger miqa.Logger
}

// NewPostgresStore creates a new store. Panics if any dependency is nil;
// construction happens once at startup and a nil here is a programming error.
func NewPostgresStore(conn miqa.DBConnection, logger miqa.Logger) *PostgresStore {
	if conn == nil {
		panic("NewPostgresStore: conn is nil")
	}
	if logger == nil {
		panic("NewPostgresStore: logger is nil")
	}
	return &PostgresStore{conn: conn, logger: logger}
}

// EnsureSchema creates the miqa tables if they do not exist yet.
// Detection is by the presence of the study table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	var regclass *string
	err := s.conn.QueryRow(ctx, "SELECT to_regclass('public.study')::text").Scan(&regclass)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if regclass != nil {
		s.logger.Verbose("schema already present")
		return nil
	}

	s.logger.Info("Creating schema...")
	if _, err := s.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ResetSchema drops all miqa tables and recreates them. Destructive; callers
// gate this behind approval.
func (s *PostgresStore) ResetSchema(ctx context.Context) error {
	drop := `
		DROP TABLE IF EXISTS idat_file;
		DROP TABLE IF EXISTS sample;
		DROP TABLE IF EXISTS study;
		DROP TYPE IF EXISTS gender;
	`
	if _, err := s.conn.Exec(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	s.logger.Info("Recreating schema...")
	if _, err := s.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to recreate schema: %w", err)
	}
	return nil
}

// UpsertStudy inserts a study row, ignoring conflicts on
// (repository_id, repository_study_id). Returns the study id, new or existing.
func (s *PostgresStore) UpsertStudy(ctx context.Context, study *miqa.Study) (int64, error) {
	if study.Repository == "" || study.Accession == "" {
		return 0, fmt.Errorf("study requires repository and accession: %w", miqa.ErrInvalidConfig)
	}

	extras, err := marshalExtras(study.Extras)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.conn.QueryRow(ctx, `
		INSERT INTO study (
			repository_id, repository_study_id, title, summary,
			overall_design, platform_id, organism, sample_count, extras
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (repository_id, repository_study_id) DO NOTHING
		RETURNING id`,
		study.Repository, study.Accession, nullIfEmpty(study.Title),
		nullIfEmpty(study.Summary), nullIfEmpty(study.OverallDesign),
		nullIfEmpty(study.PlatformID), nullIfEmpty(study.Organism),
		study.SampleCount, extras,
	).Scan(&id)

	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to upsert study %s: %w", study.Accession, err)
	}

	// Conflict path: the row already existed, fetch its id.
	err = s.conn.QueryRow(ctx,
		"SELECT id FROM study WHERE repository_id = $1 AND repository_study_id = $2",
		study.Repository, study.Accession,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("study %s vanished after conflict: %w", study.Accession, err)
	}
	return id, nil
}

// UpsertSample inserts a sample row, ignoring conflicts on
// (repository_id, repository_sample_id). Returns the sample id, new or existing.
// studyID of 0 leaves the study reference NULL.
func (s *PostgresStore) UpsertSample(ctx context.Context, studyID int64, sample *miqa.Sample) (int64, error) {
	if sample.Repository == "" || sample.Accession == "" {
		return 0, fmt.Errorf("sample requires repository and accession: %w", miqa.ErrInvalidConfig)
	}

	extras, err := marshalExtras(sample.Extras)
	if err != nil {
		return 0, err
	}

	var studyRef any
	if studyID != 0 {
		studyRef = studyID
	}

	var id int64
	err = s.conn.QueryRow(ctx, `
		INSERT INTO sample (
			study_id, repository_id, repository_sample_id, repository_series_id,
			platform_id, gender, age, tissue, disease, extraction_protocol, extras
		) VALUES ($1, $2, $3, $4, $5, $6::gender, $7, $8, $9, $10, $11)
		ON CONFLICT (repository_id, repository_sample_id) DO NOTHING
		RETURNING id`,
		studyRef, sample.Repository, sample.Accession,
		nullIfEmpty(sample.SeriesAccession), nullIfEmpty(sample.PlatformID),
		normalizeGender(sample.Gender), nullIfEmpty(sample.Age),
		nullIfEmpty(sample.Tissue), nullIfEmpty(sample.Disease),
		nullIfEmpty(sample.ExtractionProtocol), extras,
	).Scan(&id)

	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to upsert sample %s: %w", sample.Accession, err)
	}

	err = s.conn.QueryRow(ctx,
		"SELECT id FROM sample WHERE repository_id = $1 AND repository_sample_id = $2",
		sample.Repository, sample.Accession,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sample %s vanished after conflict: %w", sample.Accession, err)
	}
	return id, nil
}

// InsertIDATFile records a raw file reference for a sample. A repeated
// (sample_id, filename) is ignored; inserted reports whether the row is new.
func (s *PostgresStore) InsertIDATFile(ctx context.Context, sampleID int64, file *miqa.SuppFile, checksum string, sizeBytes int64) (int64, bool, error) {
	if file.Filename == "" || file.URL == "" {
		return 0, false, fmt.Errorf("idat file requires filename and URL: %w", miqa.ErrInvalidConfig)
	}

	var size any
	if sizeBytes > 0 {
		size = sizeBytes
	}

	var id int64
	err := s.conn.QueryRow(ctx, `
		INSERT INTO idat_file (sample_id, filename, source_url, channel, checksum, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sample_id, filename) DO NOTHING
		RETURNING id`,
		sampleID, file.Filename, file.URL, nullIfEmpty(file.Channel),
		nullIfEmpty(checksum), size,
	).Scan(&id)

	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert idat file %s: %w", file.Filename, err)
	}

	err = s.conn.QueryRow(ctx,
		"SELECT id FROM idat_file WHERE sample_id = $1 AND filename = $2",
		sampleID, file.Filename,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("idat file %s vanished after conflict: %w", file.Filename, err)
	}
	return id, false, nil
}

// MarkIDATUploaded records the object-store key and upload time.
func (s *PostgresStore) MarkIDATUploaded(ctx context.Context, idatID int64, objectKey string) error {
	tag, err := s.conn.Exec(ctx,
		"UPDATE idat_file SET s3_key = $1, uploaded_at = now() WHERE id = $2",
		objectKey, idatID)
	if err != nil {
		return fmt.Errorf("failed to mark idat %d uploaded: %w", idatID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idat file %d not found", idatID)
	}
	return nil
}

// MarkIDATProcessed records the processing time.
func (s *PostgresStore) MarkIDATProcessed(ctx context.Context, idatID int64) error {
	tag, err := s.conn.Exec(ctx,
		"UPDATE idat_file SET processed_at = now() WHERE id = $1", idatID)
	if err != nil {
		return fmt.Errorf("failed to mark idat %d processed: %w", idatID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idat file %d not found", idatID)
	}
	return nil
}

// MarkIDATDeleted soft-deletes the file reference.
func (s *PostgresStore) MarkIDATDeleted(ctx context.Context, idatID int64) error {
	tag, err := s.conn.Exec(ctx,
		"UPDATE idat_file SET deleted_at = now() WHERE id = $1", idatID)
	if err != nil {
		return fmt.Errorf("failed to mark idat %d deleted: %w", idatID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idat file %d not found", idatID)
	}
	return nil
}

func marshalExtras(extras map[string]any) (any, error) {
	if len(extras) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extras: %w", err)
	}
	return string(data), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeGender maps free-text repository annotations onto the gender enum.
// Unrecognized values land in 'unknown' rather than failing the insert.
func normalizeGender(raw string) any {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil
	case "m", "male":
		return "male"
	case "f", "female":
		return "female"
	case "other", "mixed", "both":
		return "other"
	default:
		return "unknown"
	}
}

var _ miqa.SampleStore = (*PostgresStore)(nil)
