package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"postbeat/internal/config"
)

// Store manages post and publish-record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the postbeat database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "postbeat.db"))
}

// OpenPath opens a store at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
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
	if err := store.initSchema(context.Background()); err != nil {
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

const postColumns = "id, folder_name, video_path, title, description, hashtags, reel_caption, story_caption, duration, created_at"

func scanPost(scanner interface{ Scan(dest ...any) error }) (*Post, error) {
	var (
		id         int64
		folderName string
		videoPath  string
		title      sql.NullString
		desc       sql.NullString
		hashtags   sql.NullString
		reelCap    sql.NullString
		storyCap   sql.NullString
		duration   sql.NullFloat64
		createdRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&folderName,
		&videoPath,
		&title,
		&desc,
		&hashtags,
		&reelCap,
		&storyCap,
		&duration,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	post := &Post{
		ID:           id,
		FolderName:   folderName,
		VideoPath:    videoPath,
		Title:        title.String,
		Description:  desc.String,
		Hashtags:     hashtags.String,
		ReelCaption:  reelCap.String,
		StoryCaption: storyCap.String,
		Duration:     duration.Float64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		post.CreatedAt = created
	}
	return post, nil
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
