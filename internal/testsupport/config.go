package testsupport

import (
	"path/filepath"
	"strings"
	"testing"

	"postbeat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(base, "input")
	cfg.Paths.ProcessedDir = filepath.Join(base, "processed")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Meta.AccessToken = strings.Repeat("t", 64)
	cfg.Meta.IGAccountID = "17890000000000000"
	cfg.Meta.FBPageID = "100000000000000"
	cfg.Schedule.Timezone = "UTC"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAccessToken sets the Meta access token on the test config.
func WithAccessToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Meta.AccessToken = token
	}
}

// WithPlatformToggles replaces the platform enablement flags.
func WithPlatformToggles(platforms config.Platforms) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Platforms = platforms
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
