package meta

import (
	"context"
	"time"
)

// SetSleep replaces the poll sleep so tests can run without real delays.
func (c *Client) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}

// SetPollBudget overrides the poll interval and attempt cap for tests.
func (c *Client) SetPollBudget(interval time.Duration, attempts int) {
	c.pollInterval = interval
	c.pollMaxAttempts = attempts
}
