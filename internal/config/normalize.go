package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMeta()
	c.normalizeStorage()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.ProcessedDir, err = expandPath(c.Paths.ProcessedDir); err != nil {
		return fmt.Errorf("paths.processed_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMeta() {
	if c.Meta.AccessToken == "" {
		if value, ok := os.LookupEnv("META_ACCESS_TOKEN"); ok {
			c.Meta.AccessToken = value
		}
	}
	c.Meta.BaseURL = strings.TrimRight(strings.TrimSpace(c.Meta.BaseURL), "/")
	c.Meta.UploadBaseURL = strings.TrimRight(strings.TrimSpace(c.Meta.UploadBaseURL), "/")
	c.Meta.IGAccountID = strings.TrimSpace(c.Meta.IGAccountID)
	c.Meta.FBPageID = strings.TrimSpace(c.Meta.FBPageID)
}

func (c *Config) normalizeStorage() {
	if c.Storage.AccessKey == "" {
		if value, ok := os.LookupEnv("STORAGE_ACCESS_KEY"); ok {
			c.Storage.AccessKey = value
		}
	}
	if c.Storage.SecretKey == "" {
		if value, ok := os.LookupEnv("STORAGE_SECRET_KEY"); ok {
			c.Storage.SecretKey = value
		}
	}
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.KeyPrefix = strings.Trim(strings.TrimSpace(c.Storage.KeyPrefix), "/")
}

func (c *Config) normalizeSchedule() {
	times := make([]string, 0, len(c.Schedule.Times))
	for _, t := range c.Schedule.Times {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	c.Schedule.Times = times
	c.Schedule.Timezone = strings.TrimSpace(c.Schedule.Timezone)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
