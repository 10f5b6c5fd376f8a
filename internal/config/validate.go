package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate checks structural configuration and reports every problem found
// in a single error rather than stopping at the first.
func (c *Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Paths.InputDir) == "" {
		issues = append(issues, "paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ProcessedDir) == "" {
		issues = append(issues, "paths.processed_dir must be set")
	}

	for key, value := range map[string]int{
		"meta.request_timeout":          c.Meta.RequestTimeout,
		"meta.poll_interval":            c.Meta.PollInterval,
		"meta.poll_max_attempts":        c.Meta.PollMaxAttempts,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"schedule.grace_seconds":        c.Schedule.GraceSeconds,
	} {
		if value <= 0 {
			issues = append(issues, fmt.Sprintf("%s must be positive", key))
		}
	}

	if len(c.Schedule.Times) == 0 {
		issues = append(issues, "schedule.times must contain at least one HH:MM entry")
	}
	for _, entry := range c.Schedule.Times {
		if _, _, err := ParseClockTime(entry); err != nil {
			issues = append(issues, fmt.Sprintf("schedule.times entry %q: %v", entry, err))
		}
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		issues = append(issues, fmt.Sprintf("schedule.timezone %q: %v", c.Schedule.Timezone, err))
	}

	if c.Storage.Enabled {
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			issues = append(issues, "storage.bucket must be set when storage.enabled is true")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			issues = append(issues, "storage.access_key and storage.secret_key must be set when storage.enabled is true (or via STORAGE_ACCESS_KEY / STORAGE_SECRET_KEY)")
		}
		if c.Storage.URLTTLDays <= 0 {
			issues = append(issues, "storage.url_ttl_days must be positive")
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		issues = append(issues, fmt.Sprintf("logging.format %q is not supported (use console or json)", c.Logging.Format))
	}

	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(issues, "\n  - "))
}

// CredentialIssues reports credential problems that block posting but should
// not prevent the daemon from starting. The orchestrator re-checks the token
// before every posting attempt.
func (c *Config) CredentialIssues() []string {
	var issues []string
	if len(c.Meta.AccessToken) < 50 {
		issues = append(issues, "meta.access_token is missing or too short")
	}
	if c.Meta.IGAccountID == "" {
		issues = append(issues, "meta.ig_account_id is missing")
	}
	if c.Meta.FBPageID == "" {
		issues = append(issues, "meta.fb_page_id is missing")
	}
	if c.Storage.Enabled && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		issues = append(issues, "storage credentials are missing but storage.enabled is true")
	}
	return issues
}

// ParseClockTime parses an "HH:MM" schedule entry.
func ParseClockTime(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour out of range")
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute out of range")
	}
	return hour, minute, nil
}

// Location resolves the configured timezone, falling back to UTC when unset.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
