// Package publish contains the per-post orchestration core: the eligibility
// policy and the state machine that drives each of the four platform targets
// from stored history to a recorded outcome.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"postbeat/internal/config"
	"postbeat/internal/fileutil"
	"postbeat/internal/logging"
	"postbeat/internal/media/ffprobe"
	"postbeat/internal/services"
	"postbeat/internal/store"
)

// PlatformClient is the remote publish surface the orchestrator drives.
type PlatformClient interface {
	Publish(ctx context.Context, platform store.Platform, videoURL, caption string) error
	TokenValid() bool
}

// MediaUploader provides the fetchable location precondition shared by all
// platform protocols.
type MediaUploader interface {
	FetchableURL(ctx context.Context, localPath, folderName string) (string, error)
	Enabled() bool
}

// Outcome is the terminal state of one (post, platform) evaluation.
type Outcome string

const (
	OutcomeAlreadyPublished Outcome = "already_published"
	OutcomePublished        Outcome = "published"
	OutcomeFailed           Outcome = "failed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeOmitted          Outcome = "omitted"
)

// PlatformResult is one platform's outcome within a run.
type PlatformResult struct {
	Platform store.Platform
	Outcome  Outcome
	Detail   string
}

// Result summarizes a full per-post orchestration pass.
type Result struct {
	Post      *store.Post
	Platforms []PlatformResult
	Relocated bool
}

// Succeeded counts platforms that ended published this run or earlier.
func (r *Result) Succeeded() int {
	return r.count(OutcomePublished) + r.count(OutcomeAlreadyPublished)
}

// Failed counts platforms whose attempt failed this run.
func (r *Result) Failed() int {
	return r.count(OutcomeFailed)
}

// Attempted counts platforms that were invoked or already carried a
// published record; skipped and omitted platforms are not attempts.
func (r *Result) Attempted() int {
	return r.Succeeded() + r.Failed()
}

func (r *Result) count(outcome Outcome) int {
	n := 0
	for _, pr := range r.Platforms {
		if pr.Outcome == outcome {
			n++
		}
	}
	return n
}

// Publisher runs the per-post, per-platform publish state machine and
// records every outcome in the status store.
type Publisher struct {
	store    *store.Store
	client   PlatformClient
	uploader MediaUploader
	cfg      *config.Config
	probe    func(ctx context.Context, path string) float64
	logger   *slog.Logger
}

// NewPublisher wires the orchestrator. A nil logger falls back to a no-op.
func NewPublisher(cfg *config.Config, st *store.Store, client PlatformClient, uploader MediaUploader, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	binary := cfg.FFprobeBinary()
	return &Publisher{
		store:    st,
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		probe: func(ctx context.Context, path string) float64 {
			return ffprobe.DurationOf(ctx, binary, path)
		},
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// PublishPost drives all four platform targets for one post. Evaluation is
// independent per platform: already-published targets are never re-invoked,
// duration overruns record SKIPPED, disabled targets record nothing, and
// eligible targets are attempted with the outcome written back.
//
// Preconditions checked once before any platform call: the access token must
// look valid and the video must be uploaded to a fetchable location. Either
// failing aborts the whole post with no platform state written, leaving it
// pending for the next run. When every remaining target is already resolved
// the remote preconditions are not exercised at all.
//
// When at least one platform was attempted and none failed, the post's
// folder is relocated to the processed area.
func (p *Publisher) PublishPost(ctx context.Context, post *store.Post) (*Result, error) {
	log := p.logger.With(logging.String(logging.FieldPost, post.FolderName))

	if _, err := os.Stat(post.VideoPath); err != nil {
		return nil, services.Wrap(services.ErrPrecondition, "publish", "preconditions",
			fmt.Sprintf("video file missing: %s", post.VideoPath), err)
	}

	duration := post.Duration
	if duration <= 0 {
		duration = p.probe(ctx, post.VideoPath)
		log.Info("re-measured duration", logging.Float64("duration_seconds", duration))
		if duration > 0 {
			if err := p.store.UpdateDuration(ctx, post.ID, duration); err != nil {
				return nil, err
			}
		}
	}

	published, err := p.store.PublishedPlatforms(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	plan := make(map[store.Platform]Eligibility, store.PlatformCount)
	needsRemote := false
	for _, platform := range store.Platforms() {
		if _, done := published[platform]; done {
			continue
		}
		verdict := Evaluate(platform, duration, p.cfg.Platforms)
		plan[platform] = verdict
		if verdict.Decision == DecisionAttempt {
			needsRemote = true
		}
	}

	videoURL := ""
	if needsRemote {
		if !p.client.TokenValid() {
			return nil, services.Wrap(services.ErrPrecondition, "publish", "preconditions",
				"access token missing or placeholder", nil)
		}
		videoURL, err = p.uploader.FetchableURL(ctx, post.VideoPath, post.FolderName)
		if err != nil {
			return nil, services.Wrap(services.ErrPrecondition, "publish", "preconditions",
				"media upload failed", err)
		}
	}

	result := &Result{Post: post}
	for _, platform := range store.Platforms() {
		outcome := p.publishPlatform(ctx, log, post, platform, published, plan, videoURL, duration)
		result.Platforms = append(result.Platforms, outcome)
	}

	if result.Attempted() > 0 && result.Failed() == 0 {
		if err := p.relocate(post); err != nil {
			log.Warn("failed to move folder to processed area", logging.Error(err))
		} else {
			result.Relocated = true
			log.Info("moved to processed", logging.String("folder", post.FolderName))
		}
	}

	return result, nil
}

func (p *Publisher) publishPlatform(
	ctx context.Context,
	log *slog.Logger,
	post *store.Post,
	platform store.Platform,
	published map[store.Platform]struct{},
	plan map[store.Platform]Eligibility,
	videoURL string,
	duration float64,
) PlatformResult {
	log = log.With(logging.String(logging.FieldPlatform, string(platform)))

	if _, done := published[platform]; done {
		log.Info("already published, skipping")
		return PlatformResult{Platform: platform, Outcome: OutcomeAlreadyPublished}
	}

	verdict := plan[platform]
	switch verdict.Decision {
	case DecisionSkip:
		log.Info("skipping by policy",
			logging.String("reason", verdict.SkipReason),
			logging.Float64("duration_seconds", duration))
		if err := p.store.SetStatus(ctx, post.ID, platform, store.StatusSkipped, verdict.SkipReason); err != nil {
			log.Error("failed to record skip", logging.Error(err))
			return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Detail: err.Error()}
		}
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, Detail: verdict.SkipReason}
	case DecisionOmit:
		return PlatformResult{Platform: platform, Outcome: OutcomeOmitted}
	}

	log.Info("publishing", logging.Float64("duration_seconds", duration))
	caption := post.ReelCaption
	if platform == store.PlatformIGStory {
		caption = post.StoryCaption
	}

	if err := p.client.Publish(ctx, platform, videoURL, caption); err != nil {
		log.Error("publish failed", logging.Error(err))
		if storeErr := p.store.SetStatus(ctx, post.ID, platform, store.StatusFailed, err.Error()); storeErr != nil {
			log.Error("failed to record failure", logging.Error(storeErr))
		}
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	if err := p.store.SetStatus(ctx, post.ID, platform, store.StatusPublished, ""); err != nil {
		// Remote side effect happened but the record write failed; report
		// failure so the run is not treated as clean.
		log.Error("published remotely but failed to record", logging.Error(err))
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Detail: err.Error()}
	}
	log.Info("published")
	return PlatformResult{Platform: platform, Outcome: OutcomePublished}
}

func (p *Publisher) relocate(post *store.Post) error {
	src := filepath.Dir(post.VideoPath)
	dst := filepath.Join(p.cfg.Paths.ProcessedDir, post.FolderName)
	if err := os.MkdirAll(p.cfg.Paths.ProcessedDir, 0o755); err != nil {
		return fmt.Errorf("ensure processed dir: %w", err)
	}
	if err := fileutil.MoveDir(src, dst); err != nil {
		return fmt.Errorf("move %s to processed: %w", post.FolderName, err)
	}
	return nil
}

// SetProbe replaces the duration probe; used by callers that already hold a
// probe configured elsewhere.
func (p *Publisher) SetProbe(probe func(ctx context.Context, path string) float64) {
	if probe != nil {
		p.probe = probe
	}
}
