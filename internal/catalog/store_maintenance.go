package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DeleteOlderThan removes artifacts created before the cutoff and returns the
// number of rows deleted. Used by the cache janitor.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM artifacts WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: delete older than: %w", ErrUnavailable, err)
	}
	return res.RowsAffected()
}

// Delete removes a single artifact by fingerprint.
func (s *Store) Delete(ctx context.Context, fingerprint string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, fmt.Errorf("%w: delete artifact: %w", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %w", ErrUnavailable, err)
	}
	return affected > 0, nil
}

// Clear removes every artifact from the catalog.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts`)
	if err != nil {
		return 0, fmt.Errorf("%w: clear catalog: %w", ErrUnavailable, err)
	}
	return res.RowsAffected()
}

// Stats returns aggregate catalog counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByKind: make(map[MediaKind]int64)}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(access_count), 0) FROM artifacts`)
	if err := row.Scan(&stats.TotalRecords, &stats.TotalAccesses); err != nil {
		return Stats{}, fmt.Errorf("%w: catalog stats: %w", ErrUnavailable, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT media_kind, COUNT(1) FROM artifacts GROUP BY media_kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: catalog stats by kind: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return Stats{}, fmt.Errorf("%w: scan kind count: %w", ErrUnavailable, err)
		}
		stats.ByKind[MediaKind(kind)] = count
	}
	return stats, rows.Err()
}

// MostAccessed returns up to limit artifacts ordered by access count.
func (s *Store) MostAccessed(ctx context.Context, limit int) ([]*Artifact, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+artifactColumns+` FROM artifacts ORDER BY access_count DESC, created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: most accessed: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan artifact: %w", ErrUnavailable, err)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// List returns every artifact in newest-first order. Intended for the CLI;
// the cascade uses Scan.
func (s *Store) List(ctx context.Context) ([]*Artifact, error) {
	var artifacts []*Artifact
	for artifact, err := range s.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// CheckHealth returns diagnostic information about the catalog database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("catalog database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat catalog database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("catalog database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("catalog database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping catalog database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'artifacts'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM artifacts")
		if err := row.Scan(&health.TotalRecords); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count artifacts: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
