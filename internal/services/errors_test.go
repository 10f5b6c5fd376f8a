package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := Wrap(ErrTransient, "meta", "create container", "ig_reel", base)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient classification: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause preserved: %v", err)
	}
	if !strings.Contains(err.Error(), "meta: create container: ig_reel") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient default: %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail: %v", err)
	}
}

func TestIsPrecondition(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrPrecondition, "publish", "upload", "", nil), true},
		{Wrap(ErrConfiguration, "publish", "token", "", nil), true},
		{Wrap(ErrTransient, "meta", "publish", "", nil), false},
		{Wrap(ErrTimeout, "meta", "poll", "", nil), false},
	}
	for _, tc := range cases {
		if got := IsPrecondition(tc.err); got != tc.want {
			t.Fatalf("IsPrecondition(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
