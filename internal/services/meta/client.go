package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postbeat/internal/config"
	"postbeat/internal/logging"
	"postbeat/internal/services"
	"postbeat/internal/store"
)

const userAgent = "postbeat/0.1.0"

// Client talks to the Meta Graph API for Instagram and Facebook publishing.
// One client serves all four platform targets; the multi-step protocols
// (container create, processing poll, publish) live behind Publish.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	uploadBaseURL   string
	igAccountID     string
	fbPageID        string
	userToken       string
	pageToken       string
	pollInterval    time.Duration
	pollMaxAttempts int
	sleep           func(ctx context.Context, d time.Duration) error
	logger          *slog.Logger
}

// NewClient builds a Graph API client from configuration. It does not touch
// the network; call ExchangePageToken before publishing to Facebook targets.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Meta.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	interval := time.Duration(cfg.Meta.PollInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	attempts := cfg.Meta.PollMaxAttempts
	if attempts <= 0 {
		attempts = 30
	}

	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		baseURL:         strings.TrimRight(cfg.Meta.BaseURL, "/"),
		uploadBaseURL:   strings.TrimRight(cfg.Meta.UploadBaseURL, "/"),
		igAccountID:     cfg.Meta.IGAccountID,
		fbPageID:        cfg.Meta.FBPageID,
		userToken:       cfg.Meta.AccessToken,
		pollInterval:    interval,
		pollMaxAttempts: attempts,
		sleep:           sleepContext,
		logger:          logging.NewComponentLogger(logger, "meta"),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TokenValid reports whether the configured access token looks usable:
// non-empty, not a placeholder, and long enough to be a real Graph token.
func (c *Client) TokenValid() bool {
	return TokenLooksValid(c.userToken)
}

// TokenLooksValid applies the shallow token sanity checks without calling out.
func TokenLooksValid(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if strings.Contains(strings.ToUpper(token), "YOUR_") {
		return false
	}
	return len(token) >= 50
}

// ExchangePageToken trades the user access token for the page access token.
// On any failure it falls back to the user token so publishing can still be
// attempted; the Graph API accepts user tokens for most page operations.
func (c *Client) ExchangePageToken(ctx context.Context) {
	c.pageToken = c.userToken
	if c.userToken == "" || c.fbPageID == "" {
		c.logger.Warn("missing access token or page id, skipping page token exchange")
		return
	}

	params := url.Values{
		"fields":       {"access_token"},
		"access_token": {c.userToken},
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/"+c.fbPageID, params, &payload); err != nil {
		c.logger.Warn("page token exchange failed, using user token", logging.Error(err))
		return
	}
	if payload.AccessToken == "" {
		c.logger.Warn("no page access token in response, using user token")
		return
	}
	c.pageToken = payload.AccessToken
	c.logger.Info("page access token acquired")
}

func (c *Client) token() string {
	if c.pageToken != "" {
		return c.pageToken
	}
	return c.userToken
}

// Publish pushes the video at videoURL to one platform target. videoURL must
// be reachable by Meta's servers; local paths will not work.
func (c *Client) Publish(ctx context.Context, platform store.Platform, videoURL, caption string) error {
	switch platform {
	case store.PlatformIGReel:
		return c.publishIGVideo(ctx, "REELS", videoURL, caption)
	case store.PlatformIGStory:
		return c.publishIGVideo(ctx, "STORIES", videoURL, "")
	case store.PlatformFBReel:
		return c.publishFBReel(ctx, videoURL, caption)
	case store.PlatformFBFeed:
		return c.publishFBFeed(ctx, videoURL, caption)
	default:
		return services.Wrap(services.ErrConfiguration, "meta", "publish", fmt.Sprintf("unknown platform %q", platform), nil)
	}
}

// publishIGVideo runs the Instagram container protocol: create a media
// container, poll until processing finishes, then publish the container.
// Stories take no caption; the API has no field for one.
func (c *Client) publishIGVideo(ctx context.Context, mediaType, videoURL, caption string) error {
	params := url.Values{
		"media_type":   {mediaType},
		"video_url":    {videoURL},
		"access_token": {c.token()},
	}
	if caption != "" {
		params.Set("caption", caption)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/"+c.igAccountID+"/media", params, &created); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "create container", "container creation failed", err)
	}
	if created.ID == "" {
		return services.Wrap(services.ErrTransient, "meta", "create container", "no container id in response", nil)
	}
	c.logger.Info("media container created",
		logging.String("media_type", mediaType),
		logging.String("container_id", created.ID))

	if err := c.waitForContainer(ctx, created.ID); err != nil {
		return err
	}

	publishParams := url.Values{
		"creation_id":  {created.ID},
		"access_token": {c.token()},
	}
	var published struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/"+c.igAccountID+"/media_publish", publishParams, &published); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "publish container", "media publish failed", err)
	}
	c.logger.Info("media published", logging.String("media_id", published.ID))
	return nil
}

// waitForContainer polls the container until FINISHED, surfacing ERROR
// statuses and bounding the wait by the configured attempt budget.
func (c *Client) waitForContainer(ctx context.Context, containerID string) error {
	params := url.Values{
		"fields":       {"status_code,status"},
		"access_token": {c.token()},
	}

	for attempt := 1; attempt <= c.pollMaxAttempts; attempt++ {
		var status struct {
			StatusCode string `json:"status_code"`
			Status     string `json:"status"`
		}
		err := c.getJSON(ctx, c.baseURL+"/"+containerID, params, &status)
		if err == nil {
			c.logger.Info("container status",
				logging.String("container_id", containerID),
				logging.String("status", status.StatusCode),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", c.pollMaxAttempts))
			switch status.StatusCode {
			case "FINISHED":
				return nil
			case "ERROR":
				detail := status.Status
				if detail == "" {
					detail = "container processing failed"
				}
				return services.Wrap(services.ErrTransient, "meta", "poll container", detail, nil)
			}
		} else {
			c.logger.Warn("container status check failed", logging.Error(err))
		}

		if attempt == c.pollMaxAttempts {
			break
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return services.Wrap(services.ErrTransient, "meta", "poll container", "poll interrupted", err)
		}
	}

	return services.Wrap(services.ErrTimeout, "meta", "poll container",
		fmt.Sprintf("container processing timeout after %d attempts", c.pollMaxAttempts), nil)
}

// publishFBReel runs the three-phase reel protocol: START allocates a video
// id, the upload host ingests the video by URL, and FINISH publishes it.
func (c *Client) publishFBReel(ctx context.Context, videoURL, caption string) error {
	endpoint := c.baseURL + "/" + c.fbPageID + "/video_reels"

	startParams := url.Values{
		"upload_phase": {"START"},
		"access_token": {c.token()},
	}
	var started struct {
		VideoID string `json:"video_id"`
	}
	if err := c.postJSON(ctx, endpoint, startParams, &started); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "reel start", "upload start failed", err)
	}
	if started.VideoID == "" {
		return services.Wrap(services.ErrTransient, "meta", "reel start", "no video id in response", nil)
	}
	c.logger.Info("reel upload started", logging.String("video_id", started.VideoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadBaseURL+"/"+started.VideoID, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "meta", "reel upload", "build upload request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "OAuth "+c.token())
	req.Header.Set("file_url", videoURL)
	if err := c.do(req, nil); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "reel upload", "video upload failed", err)
	}
	c.logger.Info("reel video uploaded", logging.String("video_id", started.VideoID))

	finishParams := url.Values{
		"upload_phase": {"FINISH"},
		"video_id":     {started.VideoID},
		"video_state":  {"PUBLISHED"},
		"description":  {caption},
		"access_token": {c.token()},
	}
	if err := c.postJSON(ctx, endpoint, finishParams, nil); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "reel finish", "publish failed", err)
	}
	c.logger.Info("reel published", logging.String("video_id", started.VideoID))
	return nil
}

// publishFBFeed posts the video to the page feed in a single call; the Graph
// API pulls the file from videoURL itself.
func (c *Client) publishFBFeed(ctx context.Context, videoURL, caption string) error {
	params := url.Values{
		"file_url":     {videoURL},
		"description":  {caption},
		"access_token": {c.token()},
	}
	var published struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/"+c.fbPageID+"/videos", params, &published); err != nil {
		return services.Wrap(services.ErrTransient, "meta", "feed video", "publish failed", err)
	}
	c.logger.Info("feed video published", logging.String("video_id", published.ID))
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("graph api returned %d: %s", resp.StatusCode, graphErrorDetail(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// graphErrorDetail pulls the error message out of a Graph API error envelope,
// falling back to the raw body.
func graphErrorDetail(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Sprintf("%s (type %s, code %d)", envelope.Error.Message, envelope.Error.Type, envelope.Error.Code)
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 512 {
		trimmed = trimmed[:512]
	}
	return trimmed
}
