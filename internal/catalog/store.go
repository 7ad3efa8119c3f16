package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	_ "modernc.org/sqlite"

	"mediavault/internal/config"
)

// ErrUnavailable marks catalog failures caused by the underlying database.
// Readers treat it as a cache miss; the registration path surfaces it.
var ErrUnavailable = errors.New("catalog unavailable")

// Store manages artifact persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// GetByFingerprint fetches the artifact registered under a fingerprint key.
// Returns nil without error when no record exists.
func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE fingerprint = ?`, fingerprint)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get by fingerprint: %w", ErrUnavailable, err)
	}
	return artifact, nil
}

// GetByExternalID fetches the newest artifact carrying the given canonical
// external identifier. Returns nil without error when no record exists.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*Artifact, error) {
	if externalID == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE external_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		externalID,
	)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get by external id: %w", ErrUnavailable, err)
	}
	return artifact, nil
}

// Scan lazily iterates every artifact in newest-first order. Each range
// restarts the query, so the sequence is restartable and reflects the
// current table contents. The caller observes a read snapshot; concurrent
// inserts and deletes are tolerated.
func (s *Store) Scan(ctx context.Context) iter.Seq2[*Artifact, error] {
	return func(yield func(*Artifact, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT `+artifactColumns+` FROM artifacts ORDER BY created_at DESC, id DESC`)
		if err != nil {
			yield(nil, fmt.Errorf("%w: scan artifacts: %w", ErrUnavailable, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			artifact, err := scanArtifact(rows)
			if err != nil {
				yield(nil, fmt.Errorf("%w: scan artifact row: %w", ErrUnavailable, err))
				return
			}
			if !yield(artifact, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("%w: iterate artifacts: %w", ErrUnavailable, err))
		}
	}
}

// InsertIfAbsent atomically registers an artifact keyed by fingerprint.
// When another record already holds the fingerprint the existing record is
// returned with inserted=false; the caller's row is not written. This is the
// single point of exclusivity required by the concurrency model.
func (s *Store) InsertIfAbsent(ctx context.Context, artifact *Artifact) (*Artifact, bool, error) {
	if artifact == nil {
		return nil, false, errors.New("artifact is nil")
	}
	if artifact.Fingerprint == "" {
		return nil, false, errors.New("artifact fingerprint is required")
	}

	now := time.Now().UTC()
	created := artifact.CreatedAt
	if created.IsZero() {
		created = now
	}
	accessed := artifact.LastAccessedAt
	if accessed.IsZero() {
		accessed = created
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artifacts (
            fingerprint, original_query, external_id, title, duration_secs,
            media_kind, blob_ref, blob_sequence, created_at, last_accessed_at, access_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(fingerprint) DO NOTHING`,
		artifact.Fingerprint,
		artifact.OriginalQuery,
		nullableString(artifact.ExternalID),
		nullableString(artifact.Title),
		artifact.DurationSecs,
		string(artifact.MediaKind),
		artifact.BlobRef,
		artifact.BlobSequence,
		created.Format(time.RFC3339Nano),
		accessed.Format(time.RFC3339Nano),
		artifact.AccessCount,
	)
	if err != nil {
		return nil, false, fmt.Errorf("%w: insert artifact: %w", ErrUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("%w: rows affected: %w", ErrUnavailable, err)
	}

	stored, err := s.GetByFingerprint(ctx, artifact.Fingerprint)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("%w: artifact vanished after insert", ErrUnavailable)
	}
	return stored, affected > 0, nil
}

// RecordAccess bumps the access counter and touch time for a fingerprint.
// A record deleted between lookup and touch is a silent no-op, not an error.
func (s *Store) RecordAccess(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE artifacts
         SET access_count = access_count + 1, last_accessed_at = ?
         WHERE fingerprint = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		fingerprint,
	)
	if err != nil {
		return fmt.Errorf("%w: record access: %w", ErrUnavailable, err)
	}
	return nil
}

const artifactColumns = "id, fingerprint, original_query, external_id, title, duration_secs, media_kind, blob_ref, blob_sequence, created_at, last_accessed_at, access_count"

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (*Artifact, error) {
	var (
		id           int64
		fingerprint  string
		query        string
		externalID   sql.NullString
		title        sql.NullString
		duration     int64
		mediaKind    string
		blobRef      string
		blobSequence int64
		createdRaw   string
		accessedRaw  string
		accessCount  int64
	)

	if err := scanner.Scan(
		&id,
		&fingerprint,
		&query,
		&externalID,
		&title,
		&duration,
		&mediaKind,
		&blobRef,
		&blobSequence,
		&createdRaw,
		&accessedRaw,
		&accessCount,
	); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		ID:            id,
		Fingerprint:   fingerprint,
		OriginalQuery: query,
		ExternalID:    externalID.String,
		Title:         title.String,
		DurationSecs:  duration,
		MediaKind:     MediaKind(mediaKind),
		BlobRef:       blobRef,
		BlobSequence:  uint64(blobSequence),
		AccessCount:   accessCount,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		artifact.CreatedAt = created
	}
	if accessed, err := parseTimeString(accessedRaw); err == nil {
		artifact.LastAccessedAt = accessed
	}
	return artifact, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
