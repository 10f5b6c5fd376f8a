// Package intake keeps the status store in step with the input directory.
//
// Sync removes rows whose backing media disappeared, then walks the input
// directory in lexical order and records folders not yet known: each new
// folder gets its captions parsed, its video located, and its duration
// measured before insertion. Selection for publishing is separate and uses
// creation order, oldest first, skipping candidates whose media vanished
// between sync and selection.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"postbeat/internal/config"
	"postbeat/internal/content"
	"postbeat/internal/logging"
	"postbeat/internal/media/ffprobe"
	"postbeat/internal/services"
	"postbeat/internal/store"
)

// videoPatterns are tried in order when locating the video inside a folder.
var videoPatterns = []string{"final_video*.mp4", "*.mp4"}

// SyncResult summarizes one intake pass.
type SyncResult struct {
	Added        int
	Purged       int
	TotalFolders int
}

// Manager discovers, records, and selects intake posts.
type Manager struct {
	cfg    *config.Config
	store  *store.Store
	probe  func(ctx context.Context, path string) float64
	logger *slog.Logger
}

// NewManager builds an intake manager. A nil logger falls back to a no-op.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	binary := cfg.FFprobeBinary()
	return &Manager{
		cfg:   cfg,
		store: st,
		probe: func(ctx context.Context, path string) float64 {
			return ffprobe.DurationOf(ctx, binary, path)
		},
		logger: logging.NewComponentLogger(logger, "intake"),
	}
}

// SetProbe replaces the duration probe, primarily for tests.
func (m *Manager) SetProbe(probe func(ctx context.Context, path string) float64) {
	if probe != nil {
		m.probe = probe
	}
}

// Sync purges stale rows and records new intake folders.
func (m *Manager) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	if _, err := os.Stat(m.cfg.Paths.InputDir); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "intake", "sync",
			fmt.Sprintf("input directory not found: %s", m.cfg.Paths.InputDir), err)
	}

	purged, err := m.purgeMissing(ctx)
	if err != nil {
		return result, err
	}
	result.Purged = purged
	if purged > 0 {
		m.logger.Info("purged stale entries", logging.Int("count", purged))
	}

	entries, err := os.ReadDir(m.cfg.Paths.InputDir)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "intake", "sync", "read input directory", err)
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	result.TotalFolders = len(folders)

	for _, folder := range folders {
		added, err := m.recordFolder(ctx, folder)
		if err != nil {
			return result, err
		}
		if added {
			result.Added++
		}
	}

	m.logger.Info("sync complete",
		logging.Int("new_posts", result.Added),
		logging.Int("total_folders", result.TotalFolders))
	return result, nil
}

func (m *Manager) recordFolder(ctx context.Context, folder string) (bool, error) {
	existing, err := m.store.PostByFolder(ctx, folder)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	folderPath := filepath.Join(m.cfg.Paths.InputDir, folder)
	videoPath, found := FindVideoFile(folderPath)
	if !found {
		m.logger.Warn("no video file in folder, skipping", logging.String("folder", folder))
		return false, nil
	}

	meta, err := content.ParseFolder(folderPath)
	if err != nil {
		m.logger.Warn("content parse failed",
			logging.String("folder", folder),
			logging.Error(err))
	}

	duration := m.probe(ctx, videoPath)

	post := &store.Post{
		FolderName:   folder,
		VideoPath:    videoPath,
		Title:        meta.Title,
		Description:  meta.Description,
		Hashtags:     meta.Hashtags,
		ReelCaption:  meta.ReelCaption,
		StoryCaption: meta.StoryCaption,
		Duration:     duration,
	}
	if _, err := m.store.RecordPost(ctx, post); err != nil {
		return false, err
	}
	m.logger.Info("recorded new post",
		logging.String("folder", folder),
		logging.String("title", meta.Title),
		logging.Float64("duration_seconds", duration))
	return true, nil
}

// purgeMissing deletes posts whose backing media no longer exists.
func (m *Manager) purgeMissing(ctx context.Context) (int, error) {
	posts, err := m.store.AllPosts(ctx)
	if err != nil {
		return 0, err
	}

	var stale []int64
	for _, post := range posts {
		if _, err := os.Stat(post.VideoPath); os.IsNotExist(err) {
			stale = append(stale, post.ID)
			m.logger.Info("backing media gone",
				logging.String("folder", post.FolderName),
				logging.String("video_path", post.VideoPath))
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := m.store.RemovePosts(ctx, stale...)
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// NextPending returns the oldest post whose published-platform count is
// below the full set, skipping candidates whose media disappeared. Returns
// nil when nothing is selectable.
func (m *Manager) NextPending(ctx context.Context) (*store.Post, error) {
	pending, err := m.store.PendingPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range pending {
		if _, err := os.Stat(post.VideoPath); err != nil {
			m.logger.Warn("skipping candidate with missing media",
				logging.String("folder", post.FolderName))
			continue
		}
		return post, nil
	}
	return nil, nil
}

// FindVideoFile locates the video inside a folder, preferring the canonical
// final_video name over arbitrary mp4 files.
func FindVideoFile(folderPath string) (string, bool) {
	for _, pattern := range videoPatterns {
		matches, err := filepath.Glob(filepath.Join(folderPath, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0], true
	}
	return "", false
}
