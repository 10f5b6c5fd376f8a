package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpdateSchedulerState records a completed run. The daily counter resets to
// one when the stored date differs from the current calendar date, otherwise
// it increments.
func (s *Store) UpdateSchedulerState(ctx context.Context, lastPostedFolder string) error {
	return s.updateSchedulerStateAt(ctx, lastPostedFolder, time.Now())
}

func (s *Store) updateSchedulerStateAt(ctx context.Context, lastPostedFolder string, now time.Time) error {
	today := now.Format(time.DateOnly)

	var storedDate sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT today_date FROM scheduler_state WHERE id = 1`).Scan(&storedDate)
	if err != nil {
		return fmt.Errorf("read scheduler state: %w", err)
	}

	if storedDate.String != today {
		_, err = s.db.ExecContext(
			ctx,
			`UPDATE scheduler_state
             SET last_run = ?, last_posted_folder = ?, posts_today = 1, today_date = ?
             WHERE id = 1`,
			now.UTC().Format(time.RFC3339Nano),
			lastPostedFolder,
			today,
		)
	} else {
		_, err = s.db.ExecContext(
			ctx,
			`UPDATE scheduler_state
             SET last_run = ?, last_posted_folder = ?, posts_today = posts_today + 1
             WHERE id = 1`,
			now.UTC().Format(time.RFC3339Nano),
			lastPostedFolder,
		)
	}
	if err != nil {
		return fmt.Errorf("update scheduler state: %w", err)
	}
	return nil
}

// PostsToday returns the number of posts made on the current calendar day,
// zero when the stored date is not today.
func (s *Store) PostsToday(ctx context.Context) (int, error) {
	return s.postsTodayAt(ctx, time.Now())
}

func (s *Store) postsTodayAt(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT posts_today FROM scheduler_state WHERE id = 1 AND today_date = ?`,
		now.Format(time.DateOnly),
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daily count: %w", err)
	}
	return count, nil
}

// SchedulerState returns the singleton scheduler row.
func (s *Store) SchedulerState(ctx context.Context) (*SchedulerState, error) {
	var (
		lastRunRaw sql.NullString
		folder     sql.NullString
		postsToday sql.NullInt64
		todayDate  sql.NullString
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT last_run, last_posted_folder, posts_today, today_date FROM scheduler_state WHERE id = 1`,
	).Scan(&lastRunRaw, &folder, &postsToday, &todayDate)
	if err != nil {
		return nil, fmt.Errorf("read scheduler state: %w", err)
	}

	state := &SchedulerState{
		LastPostedFolder: folder.String,
		PostsToday:       int(postsToday.Int64),
		TodayDate:        todayDate.String,
	}
	if lastRunRaw.Valid {
		if ts, err := parseTimeString(lastRunRaw.String); err == nil {
			state.LastRun = &ts
		}
	}
	return state, nil
}
