package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"postbeat/internal/config"
	"postbeat/internal/intake"
	"postbeat/internal/publish"
	"postbeat/internal/store"
	"postbeat/internal/testsupport"
	"postbeat/internal/workflow"
)

type fakeClient struct {
	tokenValid bool
	calls      int
	failAll    error
}

func (f *fakeClient) Publish(context.Context, store.Platform, string, string) error {
	f.calls++
	return f.failAll
}

func (f *fakeClient) TokenValid() bool { return f.tokenValid }

type fakeUploader struct{}

func (fakeUploader) FetchableURL(context.Context, string, string) (string, error) {
	return "https://storage.example/signed.mp4", nil
}

func (fakeUploader) Enabled() bool { return true }

type recordingNotifier struct {
	published int
	partial   int
	empty     int
	errored   int
}

func (r *recordingNotifier) NotifyPostPublished(context.Context, string, int, int) error {
	r.published++
	return nil
}

func (r *recordingNotifier) NotifyPostPartialFailure(context.Context, string, int, int) error {
	r.partial++
	return nil
}

func (r *recordingNotifier) NotifyNothingPending(context.Context) error {
	r.empty++
	return nil
}

func (r *recordingNotifier) NotifyError(context.Context, error, string) error {
	r.errored++
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

type runnerFixture struct {
	cfg      *config.Config
	store    *store.Store
	client   *fakeClient
	notifier *recordingNotifier
	runner   *workflow.Runner
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)

	mgr := intake.NewManager(cfg, st, nil)
	mgr.SetProbe(func(context.Context, string) float64 { return 30 })

	client := &fakeClient{tokenValid: true}
	pub := publish.NewPublisher(cfg, st, client, fakeUploader{}, nil)
	notifier := &recordingNotifier{}

	return &runnerFixture{
		cfg:      cfg,
		store:    st,
		client:   client,
		notifier: notifier,
		runner:   workflow.NewRunner(cfg, st, mgr, pub, notifier, nil),
	}
}

const runnerJSON = `{"instagram_facebook": {"title": "Clip", "description": "", "hashtags": []}}`

func TestRunPublishesOldestPending(t *testing.T) {
	f := newRunnerFixture(t)
	testsupport.WritePostFolder(t, f.cfg.Paths.InputDir, "clip-001", runnerJSON)

	summary, err := f.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Sync.Added != 1 {
		t.Fatalf("expected one post synced, got %d", summary.Sync.Added)
	}
	if summary.SelectedFolder != "clip-001" {
		t.Fatalf("expected clip-001 selected, got %q", summary.SelectedFolder)
	}
	if f.client.calls != 4 {
		t.Fatalf("expected four platform calls, got %d", f.client.calls)
	}
	if summary.Publish == nil || !summary.Publish.Relocated {
		t.Fatal("expected post relocated after full success")
	}
	if summary.PostsToday != 1 {
		t.Fatalf("expected daily counter at one, got %d", summary.PostsToday)
	}
	if f.notifier.published != 1 {
		t.Fatalf("expected one publish notification, got %d", f.notifier.published)
	}

	state, err := f.store.SchedulerState(context.Background())
	if err != nil {
		t.Fatalf("SchedulerState failed: %v", err)
	}
	if state.LastPostedFolder != "clip-001" {
		t.Fatalf("expected scheduler state updated, got %q", state.LastPostedFolder)
	}
}

func TestRunNothingPending(t *testing.T) {
	f := newRunnerFixture(t)

	summary, err := f.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.SelectedFolder != "" {
		t.Fatalf("expected no selection, got %q", summary.SelectedFolder)
	}
	if f.notifier.empty != 1 {
		t.Fatalf("expected queue-empty notification, got %d", f.notifier.empty)
	}
	if f.client.calls != 0 {
		t.Fatalf("expected no platform calls, got %d", f.client.calls)
	}
}

func TestRunPreconditionFailureLeavesPostPending(t *testing.T) {
	f := newRunnerFixture(t)
	testsupport.WritePostFolder(t, f.cfg.Paths.InputDir, "clip-002", runnerJSON)
	f.client.tokenValid = false

	_, err := f.runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected precondition error")
	}
	if f.notifier.errored != 1 {
		t.Fatalf("expected error notification, got %d", f.notifier.errored)
	}

	state, stateErr := f.store.SchedulerState(context.Background())
	if stateErr != nil {
		t.Fatalf("SchedulerState failed: %v", stateErr)
	}
	if state.LastPostedFolder != "" {
		t.Fatal("scheduler state must not advance on aborted run")
	}
	if _, statErr := os.Stat(filepath.Join(f.cfg.Paths.InputDir, "clip-002")); statErr != nil {
		t.Fatalf("expected post still in input: %v", statErr)
	}
}

func TestRunPartialFailureKeepsPostQueued(t *testing.T) {
	f := newRunnerFixture(t)
	testsupport.WritePostFolder(t, f.cfg.Paths.InputDir, "clip-003", runnerJSON)
	f.client.failAll = errors.New("remote down")

	summary, err := f.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Publish.Failed() != 4 {
		t.Fatalf("expected four failures, got %d", summary.Publish.Failed())
	}
	if summary.Publish.Relocated {
		t.Fatal("failed post must not relocate")
	}
	if f.notifier.partial != 1 {
		t.Fatalf("expected partial-failure notification, got %d", f.notifier.partial)
	}

	state, err := f.store.SchedulerState(context.Background())
	if err != nil {
		t.Fatalf("SchedulerState failed: %v", err)
	}
	if state.LastPostedFolder != "" {
		t.Fatal("scheduler state must not record a post with zero successes")
	}
}

func TestSyncOnlyDoesNotPublish(t *testing.T) {
	f := newRunnerFixture(t)
	testsupport.WritePostFolder(t, f.cfg.Paths.InputDir, "clip-004", runnerJSON)

	result, err := f.runner.SyncOnly(context.Background())
	if err != nil {
		t.Fatalf("SyncOnly failed: %v", err)
	}
	if result.Added != 1 {
		t.Fatalf("expected one post synced, got %d", result.Added)
	}
	if f.client.calls != 0 {
		t.Fatalf("dry run must not call platforms, got %d calls", f.client.calls)
	}
}

func TestRunResumesAfterPartialFailure(t *testing.T) {
	f := newRunnerFixture(t)
	testsupport.WritePostFolder(t, f.cfg.Paths.InputDir, "clip-005", runnerJSON)
	f.client.failAll = errors.New("remote down")

	ctx := context.Background()
	if _, err := f.runner.Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	firstCalls := f.client.calls

	f.client.failAll = nil
	summary, err := f.runner.Run(ctx)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if f.client.calls != firstCalls+4 {
		t.Fatalf("expected all four platforms retried, got %d extra calls", f.client.calls-firstCalls)
	}
	if !summary.Publish.Relocated {
		t.Fatal("expected post relocated after successful retry")
	}
}
