package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordPost inserts a new post keyed by folder name. Duplicate calls for the
// same folder are idempotent no-ops returning the existing identifier.
func (s *Store) RecordPost(ctx context.Context, post *Post) (int64, error) {
	if post == nil {
		return 0, errors.New("post is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO posts
            (folder_name, video_path, title, description, hashtags, reel_caption, story_caption, duration, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.FolderName,
		post.VideoPath,
		nullableString(post.Title),
		nullableString(post.Description),
		nullableString(post.Hashtags),
		nullableString(post.ReelCaption),
		nullableString(post.StoryCaption),
		post.Duration,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	existing, err := s.PostByFolder(ctx, post.FolderName)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("post %q not found after insert", post.FolderName)
	}
	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt
	return existing.ID, nil
}

// PostByFolder fetches a post by its folder identity, nil when absent.
func (s *Store) PostByFolder(ctx context.Context, folderName string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE folder_name = ?`, folderName)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post by folder: %w", err)
	}
	return post, nil
}

// PostByID fetches a post by identifier, nil when absent.
func (s *Store) PostByID(ctx context.Context, id int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// UpdateDuration persists a re-measured duration for a post.
func (s *Store) UpdateDuration(ctx context.Context, id int64, duration float64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE posts SET duration = ? WHERE id = ?`, duration, id); err != nil {
		return fmt.Errorf("update duration: %w", err)
	}
	return nil
}

// AllPosts returns every post ordered by creation time.
func (s *Store) AllPosts(ctx context.Context) ([]*Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// PendingPosts returns posts with fewer than the full platform set published,
// oldest first. Media existence is not checked here; the intake selector
// filters missing files so it can log the skips.
func (s *Store) PendingPosts(ctx context.Context) ([]*Post, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+postColumns+` FROM posts p
         WHERE (
             SELECT COUNT(1) FROM publish_records pr
             WHERE pr.post_id = p.id AND pr.status = ?
         ) < ?
         ORDER BY p.created_at, p.id`,
		StatusPublished,
		PlatformCount,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// RemovePosts deletes the given posts and their publish records in one
// transaction.
func (s *Store) RemovePosts(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin remove tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM publish_records WHERE post_id = ?`, id); err != nil {
			return 0, fmt.Errorf("delete publish records: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete post: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit remove: %w", err)
	}
	return removed, nil
}
