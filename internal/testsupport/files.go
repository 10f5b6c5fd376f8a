package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates the target path (and parents) with the given contents.
func WriteFile(t testing.TB, path string, contents []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePostFolder lays out an intake folder with a video file and a JSON
// content file, returning the video path.
func WritePostFolder(t testing.TB, inputDir, folderName, contentJSON string) string {
	t.Helper()

	folder := filepath.Join(inputDir, folderName)
	videoPath := filepath.Join(folder, "final_video.mp4")
	WriteFile(t, videoPath, []byte("not a real video"))
	if contentJSON != "" {
		WriteFile(t, filepath.Join(folder, "social_media_content.json"), []byte(contentJSON))
	}
	return videoPath
}
