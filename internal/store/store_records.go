package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SetStatus upserts the publish record for a (post, platform) pair. Retries
// overwrite the previous record; no history is kept. published_at is only set
// for PUBLISHED outcomes.
func (s *Store) SetStatus(ctx context.Context, postID int64, platform Platform, status Status, errorMessage string) error {
	var publishedAt any
	if status == StatusPublished {
		publishedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO publish_records (post_id, platform, status, published_at, error_message)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (post_id, platform) DO UPDATE SET
             status = excluded.status,
             published_at = excluded.published_at,
             error_message = excluded.error_message`,
		postID,
		platform,
		status,
		publishedAt,
		nullableString(errorMessage),
	)
	if err != nil {
		return fmt.Errorf("set status %s/%s: %w", platform, status, err)
	}
	return nil
}

// PublishedPlatforms returns the set of platforms already published for a post.
func (s *Store) PublishedPlatforms(ctx context.Context, postID int64) (map[Platform]struct{}, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT platform FROM publish_records WHERE post_id = ? AND status = ?`,
		postID,
		StatusPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("query published platforms: %w", err)
	}
	defer rows.Close()

	published := make(map[Platform]struct{})
	for rows.Next() {
		var platform Platform
		if err := rows.Scan(&platform); err != nil {
			return nil, err
		}
		published[platform] = struct{}{}
	}
	return published, rows.Err()
}

// RecordsForPost returns all publish records for a post keyed by platform.
func (s *Store) RecordsForPost(ctx context.Context, postID int64) (map[Platform]*PublishRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT post_id, platform, status, published_at, error_message
         FROM publish_records WHERE post_id = ?`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("query publish records: %w", err)
	}
	defer rows.Close()

	records := make(map[Platform]*PublishRecord)
	for rows.Next() {
		var (
			record       PublishRecord
			publishedRaw sql.NullString
			errorMessage sql.NullString
		)
		if err := rows.Scan(&record.PostID, &record.Platform, &record.Status, &publishedRaw, &errorMessage); err != nil {
			return nil, err
		}
		record.ErrorMessage = errorMessage.String
		if publishedRaw.Valid {
			if ts, err := parseTimeString(publishedRaw.String); err == nil {
				record.PublishedAt = &ts
			}
		}
		records[record.Platform] = &record
	}
	return records, rows.Err()
}
