package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"postbeat/internal/config"
	"postbeat/internal/intake"
	"postbeat/internal/logging"
	"postbeat/internal/notifications"
	"postbeat/internal/publish"
	"postbeat/internal/store"
)

// RunSummary captures what one scheduled or manual run did.
type RunSummary struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Sync           intake.SyncResult
	SelectedFolder string
	Publish        *publish.Result
	PostsToday     int
}

// Runner executes the full publishing sequence: sync intake, select the
// oldest pending post, orchestrate its platform publishes, and update
// scheduler state.
type Runner struct {
	cfg       *config.Config
	store     *store.Store
	intake    *intake.Manager
	publisher *publish.Publisher
	notifier  notifications.Service
	logger    *slog.Logger
}

// NewRunner wires a run loop from its collaborators. A nil notifier falls
// back to the configured notification service; a nil logger to a no-op.
func NewRunner(
	cfg *config.Config,
	st *store.Store,
	mgr *intake.Manager,
	pub *publish.Publisher,
	notifier notifications.Service,
	logger *slog.Logger,
) *Runner {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		store:     st,
		intake:    mgr,
		publisher: pub,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
}

// Run performs one full publishing pass. A run with nothing pending is not
// an error. Precondition failures (bad token, upload failure) abort the run
// with an error and leave the selected post untouched for the next trigger.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.NewString(), StartedAt: time.Now()}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
	}()
	log := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	postsToday, err := r.store.PostsToday(ctx)
	if err != nil {
		return summary, err
	}
	log.Info("run started", logging.Int("posts_today", postsToday))

	syncResult, err := r.intake.Sync(ctx)
	if err != nil {
		r.notifyError(ctx, err, "intake sync")
		return summary, err
	}
	summary.Sync = syncResult

	post, err := r.intake.NextPending(ctx)
	if err != nil {
		return summary, err
	}
	if post == nil {
		log.Info("no pending posts")
		if err := r.notifier.NotifyNothingPending(ctx); err != nil {
			log.Warn("notification failed", logging.Error(err))
		}
		summary.PostsToday = postsToday
		return summary, nil
	}
	summary.SelectedFolder = post.FolderName
	log.Info("selected post",
		logging.String(logging.FieldPost, post.FolderName),
		logging.Float64("duration_seconds", post.Duration))

	result, err := r.publisher.PublishPost(ctx, post)
	if err != nil {
		r.notifyError(ctx, err, "publish "+post.FolderName)
		return summary, err
	}
	summary.Publish = result

	if result.Succeeded() > 0 {
		if err := r.store.UpdateSchedulerState(ctx, post.FolderName); err != nil {
			log.Error("failed to update scheduler state", logging.Error(err))
		}
	}

	r.reportResult(ctx, log, result)

	summary.PostsToday, err = r.store.PostsToday(ctx)
	if err != nil {
		log.Warn("failed to read daily counter", logging.Error(err))
		err = nil
	}
	return summary, nil
}

// SyncOnly refreshes the store from the input directory without publishing.
func (r *Runner) SyncOnly(ctx context.Context) (intake.SyncResult, error) {
	return r.intake.Sync(ctx)
}

func (r *Runner) reportResult(ctx context.Context, log *slog.Logger, result *publish.Result) {
	folder := result.Post.FolderName
	published := result.Succeeded()
	failed := result.Failed()
	skipped := 0
	for _, pr := range result.Platforms {
		if pr.Outcome == publish.OutcomeSkipped {
			skipped++
		}
	}

	for _, pr := range result.Platforms {
		log.Info("platform outcome",
			logging.String(logging.FieldPost, folder),
			logging.String(logging.FieldPlatform, string(pr.Platform)),
			logging.String("outcome", string(pr.Outcome)))
	}

	var err error
	if failed > 0 {
		err = r.notifier.NotifyPostPartialFailure(ctx, folder, published, failed)
	} else if result.Attempted() > 0 {
		err = r.notifier.NotifyPostPublished(ctx, folder, published, skipped)
	}
	if err != nil {
		log.Warn("notification failed", logging.Error(err))
	}
}

func (r *Runner) notifyError(ctx context.Context, err error, label string) {
	if notifyErr := r.notifier.NotifyError(ctx, err, label); notifyErr != nil {
		r.logger.Warn("notification failed", logging.Error(notifyErr))
	}
}
