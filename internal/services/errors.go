package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify failures for retry and abort decisions.
//
//   - ErrConfiguration: credentials or settings are unusable; posting must not
//     start at all.
//   - ErrPrecondition: a per-post requirement failed (token check, media
//     upload); the post stays pending with no platform records written.
//   - ErrTransient: a remote call failed; the affected platform is recorded
//     FAILED and retried on the next scheduled run.
//   - ErrTimeout: remote async processing exhausted its poll budget.
//   - ErrNotFound: backing data is gone (missing media); the entry is purged.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrPrecondition  = errors.New("precondition failed")
	ErrTransient     = errors.New("transient failure")
	ErrTimeout       = errors.New("timeout")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPrecondition reports whether the error should abort a post's entire
// attempt without writing any platform records.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition) || errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
