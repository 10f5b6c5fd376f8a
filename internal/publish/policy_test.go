package publish_test

import (
	"testing"

	"postbeat/internal/config"
	"postbeat/internal/publish"
	"postbeat/internal/store"
)

func allEnabled() config.Platforms {
	return config.Platforms{
		IGEnabled:   true,
		IGPostReel:  true,
		IGPostStory: true,
		FBEnabled:   true,
		FBPostReel:  true,
		FBPostFeed:  true,
	}
}

func TestEvaluateDurationBoundsInclusive(t *testing.T) {
	toggles := allEnabled()

	cases := []struct {
		name     string
		platform store.Platform
		duration float64
		want     publish.Decision
		reason   string
	}{
		{"reel at bound", store.PlatformIGReel, 180.0, publish.DecisionAttempt, ""},
		{"reel over bound", store.PlatformIGReel, 180.1, publish.DecisionSkip, "Duration > 180s"},
		{"fb reel over bound", store.PlatformFBReel, 200, publish.DecisionSkip, "Duration > 180s"},
		{"story at bound", store.PlatformIGStory, 60.0, publish.DecisionAttempt, ""},
		{"story over bound", store.PlatformIGStory, 60.5, publish.DecisionSkip, "Duration > 60s"},
		{"feed ignores duration", store.PlatformFBFeed, 3600, publish.DecisionAttempt, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := publish.Evaluate(tc.platform, tc.duration, toggles)
			if got.Decision != tc.want {
				t.Fatalf("decision = %v, want %v", got.Decision, tc.want)
			}
			if got.SkipReason != tc.reason {
				t.Fatalf("reason = %q, want %q", got.SkipReason, tc.reason)
			}
		})
	}
}

func TestEvaluateDisabledToggleOmits(t *testing.T) {
	toggles := allEnabled()
	toggles.IGPostStory = false

	got := publish.Evaluate(store.PlatformIGStory, 30, toggles)
	if got.Decision != publish.DecisionOmit {
		t.Fatalf("expected omit for disabled toggle, got %v", got.Decision)
	}
}

func TestEvaluateDisabledButOverBoundStillSkips(t *testing.T) {
	toggles := allEnabled()
	toggles.IGEnabled = false

	got := publish.Evaluate(store.PlatformIGReel, 300, toggles)
	if got.Decision != publish.DecisionSkip {
		t.Fatalf("expected duration skip to win over disabled toggle, got %v", got.Decision)
	}
	if got.SkipReason != "Duration > 180s" {
		t.Fatalf("unexpected reason %q", got.SkipReason)
	}
}

func TestEvaluateFeedDisabled(t *testing.T) {
	toggles := allEnabled()
	toggles.FBPostFeed = false

	got := publish.Evaluate(store.PlatformFBFeed, 30, toggles)
	if got.Decision != publish.DecisionOmit {
		t.Fatalf("expected omit, got %v", got.Decision)
	}
}
