package store

// Test hooks for clock-dependent scheduler state behavior.
var (
	UpdateSchedulerStateAt = (*Store).updateSchedulerStateAt
	PostsTodayAt           = (*Store).postsTodayAt
)
