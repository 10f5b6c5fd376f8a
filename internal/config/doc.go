// Package config loads, normalizes, and validates postbeat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// META_ACCESS_TOKEN. Validation gathers every problem into one error so a
// misconfigured install is reported in a single pass. Credential problems
// that only block posting (not daemon startup) are reported separately via
// CredentialIssues and re-checked before each publish attempt.
package config
