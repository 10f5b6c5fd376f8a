package publish

import (
	"fmt"

	"postbeat/internal/config"
	"postbeat/internal/store"
)

// Duration bounds in seconds. Boundaries are inclusive: a video of exactly
// 180s is still reel-eligible.
const (
	MaxReelDuration  = 180.0
	MaxStoryDuration = 60.0
)

// Decision classifies what to do with one (post, platform) pair.
type Decision int

const (
	// DecisionAttempt means the platform is eligible and should be invoked.
	DecisionAttempt Decision = iota
	// DecisionSkip means a duration bound disqualifies the video; a SKIPPED
	// record with the reason is written.
	DecisionSkip
	// DecisionOmit means a disabled toggle excludes the platform; no record
	// is written at all.
	DecisionOmit
)

// Eligibility is the policy verdict for one platform.
type Eligibility struct {
	Decision   Decision
	SkipReason string
}

// Evaluate applies the per-platform admission rules to a video duration and
// the enablement toggles. Duration overruns always produce a skip verdict,
// even when the platform toggle is off, so the stored record explains why
// the video was never posted there.
func Evaluate(platform store.Platform, duration float64, toggles config.Platforms) Eligibility {
	switch platform {
	case store.PlatformIGReel:
		return boundedEligibility(toggles.IGEnabled && toggles.IGPostReel, duration, MaxReelDuration)
	case store.PlatformIGStory:
		return boundedEligibility(toggles.IGEnabled && toggles.IGPostStory, duration, MaxStoryDuration)
	case store.PlatformFBReel:
		return boundedEligibility(toggles.FBEnabled && toggles.FBPostReel, duration, MaxReelDuration)
	case store.PlatformFBFeed:
		if toggles.FBEnabled && toggles.FBPostFeed {
			return Eligibility{Decision: DecisionAttempt}
		}
		return Eligibility{Decision: DecisionOmit}
	default:
		return Eligibility{Decision: DecisionOmit}
	}
}

func boundedEligibility(enabled bool, duration, limit float64) Eligibility {
	if duration > limit {
		return Eligibility{
			Decision:   DecisionSkip,
			SkipReason: fmt.Sprintf("Duration > %.0fs", limit),
		}
	}
	if !enabled {
		return Eligibility{Decision: DecisionOmit}
	}
	return Eligibility{Decision: DecisionAttempt}
}
