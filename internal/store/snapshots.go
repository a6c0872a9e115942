package store

import (
	"context"
	"fmt"
	"time"

	"github.com/homerun-app/homerun/internal/model"

	"github.com/shopspring/decimal"
)

// RecordSnapshot appends one evaluation result to the history.
func (s *Store) RecordSnapshot(ctx context.Context, snap model.Snapshot) error {
	homeRun := 0
	if snap.HomeRun {
		homeRun = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO snapshots
		(at, week_id, transactions, saved, goal, weekly_target, percent,
		 accumulator, home_runs_left, weeks_goal_hit, home_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.At.UTC().Format(time.RFC3339Nano), snap.WeekID, snap.Transactions,
		snap.Saved.String(), snap.Goal.String(), snap.WeeklyTarget.String(), snap.Percent,
		snap.Accumulator.String(), snap.HomeRunsLeft, snap.WeeksGoalHit, homeRun,
	)
	if err != nil {
		return fmt.Errorf("recording snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (s *Store) RecentSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT at, week_id, transactions, saved, goal,
		weekly_target, percent, accumulator, home_runs_left, weeks_goal_hit, home_run
		FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Snapshot
	for rows.Next() {
		var (
			snap                         model.Snapshot
			at, saved, goal, target, acc string
			homeRun                      int
		)
		if err := rows.Scan(&at, &snap.WeekID, &snap.Transactions, &saved, &goal,
			&target, &snap.Percent, &acc, &snap.HomeRunsLeft, &snap.WeeksGoalHit, &homeRun); err != nil {
			return nil, err
		}
		snap.At, _ = time.Parse(time.RFC3339Nano, at)
		snap.Saved, _ = decimal.NewFromString(saved)
		snap.Goal, _ = decimal.NewFromString(goal)
		snap.WeeklyTarget, _ = decimal.NewFromString(target)
		snap.Accumulator, _ = decimal.NewFromString(acc)
		snap.HomeRun = homeRun != 0
		out = append(out, snap)
	}
	return out, rows.Err()
}

// CountHomeRuns returns how many recorded evaluations hit the weekly target.
func (s *Store) CountHomeRuns(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots WHERE home_run = 1").Scan(&n)
	return n, err
}
