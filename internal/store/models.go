package store

import "time"

// Platform identifies one of the four fixed publish targets.
type Platform string

const (
	PlatformIGReel  Platform = "ig_reel"
	PlatformIGStory Platform = "ig_story"
	PlatformFBReel  Platform = "fb_reel"
	PlatformFBFeed  Platform = "fb_feed"
)

// Platforms returns the publish targets in their fixed attempt order.
func Platforms() []Platform {
	return []Platform{PlatformIGReel, PlatformIGStory, PlatformFBReel, PlatformFBFeed}
}

// PlatformCount is the size of the full platform set a post is measured against.
const PlatformCount = 4

// Status records the outcome of one publish attempt for a (post, platform) pair.
type Status string

const (
	StatusPublished Status = "PUBLISHED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
)

// Post is one video-plus-caption unit of work intended for multi-platform
// publication. Identity is the intake folder name.
type Post struct {
	ID           int64
	FolderName   string
	VideoPath    string
	Title        string
	Description  string
	Hashtags     string
	ReelCaption  string
	StoryCaption string
	Duration     float64
	CreatedAt    time.Time
}

// PublishRecord is the stored outcome for a (post, platform) pair. At most
// one exists per pair; retries overwrite it.
type PublishRecord struct {
	PostID       int64
	Platform     Platform
	Status       Status
	PublishedAt  *time.Time
	ErrorMessage string
}

// SchedulerState is the singleton row tracking run history and the daily
// posting counter.
type SchedulerState struct {
	LastRun          *time.Time
	LastPostedFolder string
	PostsToday       int
	TodayDate        string
}
