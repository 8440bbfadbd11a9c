// Package progress computes completion counts, percentages, and point
// totals from the completion ledger and a task's active-day schedule.
// Everything here is pure: callers supply the ledger rows and the as-of
// date, and nothing reads a clock or a database.
package progress

import (
	"math"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/schedule"
)

// TaskSummary is one task's performance over a date range.
//
// Excluded days shrink the denominator (they were intentionally not
// attempted), so PercentComplete = completed / (possible - excluded).
// The percentage is not clamped: backdated completions can push it past 100.
type TaskSummary struct {
	TaskID              int64  `json:"task_id"`
	TaskTitle           string `json:"task_title"`
	CompletedCount      int    `json:"completed_count"`
	ExcludedCount       int    `json:"excluded_count"`
	PossibleCompletions int    `json:"possible_completions"`
	PercentComplete     int    `json:"percent_complete"`
	PointsPerCompletion int    `json:"points_per_completion"`
	TotalPoints         int    `json:"total_points"`

	// Money mirrors points for tasks that pay out an allowance instead.
	MoneyPerCompletion float64 `json:"money_per_completion"`
	TotalMoney         float64 `json:"total_money"`
}

// Summarize computes a task's summary over [start, end] from its ledger rows.
// Completions outside the range are ignored.
func Summarize(task model.Task, active schedule.ActiveDays, completions []model.TaskCompletion, start, end dates.Date) TaskSummary {
	summary := TaskSummary{
		TaskID:              task.ID,
		TaskTitle:           task.Title,
		PossibleCompletions: active.CountInRange(start, end),
	}
	if task.Points != nil {
		summary.PointsPerCompletion = *task.Points
	}
	if task.Money != nil {
		summary.MoneyPerCompletion = *task.Money
	}

	for _, c := range completions {
		d, err := dates.Parse(c.CompletedDate)
		if err != nil || d.Before(start) || d.After(end) {
			continue
		}
		switch c.Status {
		case model.StatusCompleted:
			summary.CompletedCount++
		case model.StatusExcluded:
			summary.ExcludedCount++
		}
	}

	adjusted := summary.PossibleCompletions - summary.ExcludedCount
	if adjusted > 0 {
		summary.PercentComplete = roundHalfUp(100 * float64(summary.CompletedCount) / float64(adjusted))
	}
	summary.TotalPoints = summary.PointsPerCompletion * summary.CompletedCount
	summary.TotalMoney = summary.MoneyPerCompletion * float64(summary.CompletedCount)

	return summary
}

// MonthProgress prorates a person's monthly goal by elapsed days and
// returns their percentage against it. ok is false when no goal is set
// (or the goal is zero), meaning no progress should be shown.
func MonthProgress(pointGoal *int, currentMonthPoints int, asOf dates.Date) (int, bool) {
	if pointGoal == nil || *pointGoal == 0 {
		return 0, false
	}

	daysInMonth := dates.LastDayOfMonth(asOf.Year, asOf.Month)
	expected := float64(*pointGoal) * float64(asOf.Day) / float64(daysInMonth)
	if expected == 0 {
		return 0, false
	}

	return roundHalfUp(100 * float64(currentMonthPoints) / expected), true
}

// GoalProgress is the unprorated percentage of points against the full
// monthly goal, used once the evaluated window is fixed.
func GoalProgress(pointGoal *int, totalPoints int) int {
	if pointGoal == nil || *pointGoal == 0 {
		return 0
	}
	return roundHalfUp(100 * float64(totalPoints) / float64(*pointGoal))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
